package handler

import (
	"github.com/arenacore/server/internal/core/event"
	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/net/packet"
)

// BuildSnapshotPacket builds S_SNAPSHOT. The body after the opcode is the
// msgpack-encoded snapshot.
func BuildSnapshotPacket(snap game.Snapshot) ([]byte, error) {
	body, err := snap.Encode()
	if err != nil {
		return nil, err
	}
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_SNAPSHOT)
	w.WriteBytes(body)
	return w.Bytes(), nil
}

// BuildHitPacket builds S_HIT for one resolved collision.
func BuildHitPacket(h event.PlayerHit) []byte {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_HIT)
	w.WriteS(h.Attacker.String())
	w.WriteS(h.Target.String())
	w.WriteD(h.Damage)
	w.WriteD(h.Health)
	return w.Bytes()
}
