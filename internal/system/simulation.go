package system

import (
	"context"
	"time"

	coresys "github.com/arenacore/server/internal/core/system"
	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/sim"
	"go.uber.org/zap"
)

// SimulationSystem advances the world one step. Phase 2 (Update).
type SimulationSystem struct {
	game *game.Service
	now  func() time.Time
	log  *zap.Logger

	last sim.Report
	ran  bool
}

// NewSimulationSystem uses now as the tick clock; nil means time.Now.
func NewSimulationSystem(svc *game.Service, now func() time.Time, log *zap.Logger) *SimulationSystem {
	if now == nil {
		now = time.Now
	}
	return &SimulationSystem{game: svc, now: now, log: log}
}

func (s *SimulationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SimulationSystem) Update(_ time.Duration) {
	s.last, s.ran = s.game.Tick(context.Background(), s.now())
	if s.ran && (len(s.last.Hits) > 0 || len(s.last.Expired) > 0) {
		s.log.Debug("遊戲刻結算",
			zap.Uint64("tick", s.last.Tick),
			zap.Int("hits", len(s.last.Hits)),
			zap.Int("expired", len(s.last.Expired)),
			zap.Int("projectiles", s.last.Projectiles),
		)
	}
}

// Last returns the report of the most recent Update and whether it ran.
func (s *SimulationSystem) Last() (sim.Report, bool) { return s.last, s.ran }
