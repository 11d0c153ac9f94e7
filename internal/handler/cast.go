package handler

import (
	"context"

	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
	"github.com/arenacore/server/internal/vecmath"
)

// HandleCast processes C_CAST: ability S, hasAim C, [aim F F F].
// An empty ability name casts the class ability.
func HandleCast(sess *net.Session, r *packet.Reader, deps *Deps) {
	cp := game.CastParams{Ability: r.ReadS()}
	if r.ReadC() != 0 {
		raw, ok := r.ReadVec3()
		if !ok {
			sendBadRequest(sess, packet.C_OPCODE_CAST, "aim must be finite")
			return
		}
		aim := vecmath.Vec3(raw)
		cp.Aim = &aim
	}
	if r.Short() {
		sendBadRequest(sess, packet.C_OPCODE_CAST, "truncated cast")
		return
	}

	_, err := deps.Game.CastAbility(context.Background(), sess.Identity, cp)
	sendResult(sess, packet.C_OPCODE_CAST, err)
}
