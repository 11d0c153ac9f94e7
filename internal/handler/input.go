package handler

import (
	"context"
	"math"

	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
	"github.com/arenacore/server/internal/world"
	"go.uber.org/zap"
)

// HandleInput processes C_INPUT: flags C, seq DU, yaw F, animation S.
// Only intent travels; the server computes the position.
func HandleInput(sess *net.Session, r *packet.Reader, deps *Deps) {
	flags := r.ReadC()
	seq := r.ReadDU()
	yaw := r.ReadF()
	anim := r.ReadS()
	if r.Short() {
		deps.Log.Debug("輸入封包過短", zap.Uint64("session", sess.ID))
		return
	}
	if math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		deps.Log.Debug("輸入朝向非有限值", zap.Uint64("session", sess.ID))
		sendBadRequest(sess, packet.C_OPCODE_INPUT, "yaw must be finite")
		return
	}

	in := world.InputFromFlags(flags, seq)
	if err := deps.Game.SubmitInput(context.Background(), sess.Identity, in, yaw, anim); err != nil {
		sendResult(sess, packet.C_OPCODE_INPUT, err)
	}
}
