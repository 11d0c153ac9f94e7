package handler

import (
	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
	"go.uber.org/zap"
)

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Game     *game.Service
	Sessions *net.SessionStore
	Config   *config.Config
	Log      *zap.Logger
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	// Handshake phase
	reg.Register(packet.C_OPCODE_HELLO,
		[]packet.SessionState{packet.StateHandshake},
		func(sess any, r *packet.Reader) {
			HandleHello(sess.(*net.Session), r, deps)
		},
	)

	// Connected: identity bound, not yet in the world
	reg.Register(packet.C_OPCODE_REGISTER,
		[]packet.SessionState{packet.StateConnected, packet.StateInWorld},
		func(sess any, r *packet.Reader) {
			HandleRegister(sess.(*net.Session), r, deps)
		},
	)

	// In world
	inWorld := []packet.SessionState{packet.StateInWorld}

	reg.Register(packet.C_OPCODE_INPUT, inWorld,
		func(sess any, r *packet.Reader) {
			HandleInput(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_CAST, inWorld,
		func(sess any, r *packet.Reader) {
			HandleCast(sess.(*net.Session), r, deps)
		},
	)

	// Any live state
	live := []packet.SessionState{packet.StateHandshake, packet.StateConnected, packet.StateInWorld}

	reg.Register(packet.C_OPCODE_PING, live,
		func(sess any, r *packet.Reader) {
			HandlePing(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_QUIT, live,
		func(sess any, r *packet.Reader) {
			HandleQuit(sess.(*net.Session), r, deps)
		},
	)
}
