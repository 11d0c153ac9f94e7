package system

import (
	"context"
	"errors"
	"time"

	coresys "github.com/arenacore/server/internal/core/system"
	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
	"github.com/arenacore/server/internal/sim"
	"go.uber.org/zap"
)

// SessionSource delivers connection changes. *net.Server satisfies it.
type SessionSource interface {
	NewSessions() <-chan *net.Session
	DeadSessions() <-chan uint64
	NotifyDead(sessionID uint64)
}

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	source     SessionSource
	registry   *packet.Registry
	store      *net.SessionStore
	game       *game.Service
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(source SessionSource, registry *packet.Registry, store *net.SessionStore, svc *game.Service, maxPerTick int, log *zap.Logger) *InputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 32
	}
	return &InputSystem{
		source:     source,
		registry:   registry,
		store:      store,
		game:       svc,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	// Accept new sessions
	for {
		select {
		case sess := <-s.source.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	// Process dead sessions
	for {
		select {
		case id := <-s.source.DeadSessions():
			s.store.Remove(id)
		default:
			goto doneDead
		}
	}
doneDead:

	// Drain packets from each session (up to maxPerTick per session)
	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			s.handleDisconnect(sess)
			s.source.NotifyDead(id)
			s.store.Remove(id)
			continue
		}

		for i := 0; i < s.maxPerTick; i++ {
			select {
			case data := <-sess.InQueue:
				if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
					s.log.Debug("封包分派錯誤",
						zap.Uint64("session", sess.ID),
						zap.Error(err),
					)
				}
			default:
				goto nextSession
			}
		}
	nextSession:
	}

	// 提前 flush：讓本階段產生的回應立即進入 OutQueue。
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

// handleDisconnect archives the player bound to a closed session.
func (s *InputSystem) handleDisconnect(sess *net.Session) {
	if sess.Identity.IsZero() {
		return
	}
	// A newer session may already own this identity.
	if cur := s.store.ByIdentity(sess.Identity); cur != nil && cur != sess {
		return
	}
	err := s.game.OnDisconnect(context.Background(), sess.Identity, time.Now())
	if err != nil && !errors.Is(err, sim.ErrNotFound) {
		s.log.Error("斷線處理失敗", zap.Uint64("session", sess.ID), zap.Error(err))
	}
}
