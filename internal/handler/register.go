package handler

import (
	"context"

	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
)

// HandleRegister processes C_REGISTER: username S, class S.
func HandleRegister(sess *net.Session, r *packet.Reader, deps *Deps) {
	username := r.ReadS()
	class := r.ReadS()

	err := deps.Game.Register(context.Background(), sess.Identity, username, class)
	if err == nil {
		sess.SetState(packet.StateInWorld)
		sess.Username = game.CleanName(username)
	}
	sendResult(sess, packet.C_OPCODE_REGISTER, err)
}
