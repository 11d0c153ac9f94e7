package handler

import (
	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
)

// HandlePing answers C_PING with the nonce and the current tick.
func HandlePing(sess *net.Session, r *packet.Reader, deps *Deps) {
	nonce := r.ReadDU()
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_PONG)
	w.WriteDU(nonce)
	w.WriteDU(uint32(deps.Game.Stats().Tick))
	sess.Send(w.Bytes())
}
