package system

import (
	"time"

	"github.com/arenacore/server/internal/core/event"
	coresys "github.com/arenacore/server/internal/core/system"
	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/handler"
	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
	"go.uber.org/zap"
)

// OutputSystem broadcasts the world snapshot to every in-world session,
// forwards hit notices to attacker and target, then flushes all output.
// Phase 4 (Output).
type OutputSystem struct {
	game  *game.Service
	store *net.SessionStore
	log   *zap.Logger

	hits []event.PlayerHit
}

func NewOutputSystem(svc *game.Service, store *net.SessionStore, bus *event.Bus, log *zap.Logger) *OutputSystem {
	s := &OutputSystem{game: svc, store: store, log: log}
	event.Subscribe(bus, func(h event.PlayerHit) {
		s.hits = append(s.hits, h)
	})
	return s
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	for _, h := range s.hits {
		pkt := handler.BuildHitPacket(h)
		if sess := s.store.ByIdentity(h.Attacker); sess != nil {
			sess.Send(pkt)
		}
		if h.Target != h.Attacker {
			if sess := s.store.ByIdentity(h.Target); sess != nil {
				sess.Send(pkt)
			}
		}
	}
	s.hits = s.hits[:0]

	pkt, err := handler.BuildSnapshotPacket(s.game.Snapshot())
	switch {
	case err != nil:
		s.log.Error("快照編碼失敗", zap.Error(err))
		pkt = nil
	case len(pkt) > net.MaxPayload:
		s.log.Warn("快照超過單一封包上限，略過廣播", zap.Int("len", len(pkt)))
		pkt = nil
	}

	s.store.ForEach(func(sess *net.Session) {
		if pkt != nil && sess.State() == packet.StateInWorld {
			sess.Send(pkt)
		}
		sess.FlushOutput()
	})
}
