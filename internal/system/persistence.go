package system

import (
	"context"
	"time"

	coresys "github.com/arenacore/server/internal/core/system"
	"github.com/arenacore/server/internal/game"
	"github.com/arenacore/server/internal/persist"
	"github.com/arenacore/server/internal/world"
	"go.uber.org/zap"
)

// Saver writes one change set atomically. *persist.WorldRepo satisfies it.
type Saver interface {
	Save(ctx context.Context, rows persist.ChangeRows) error
}

// maxPending bounds how many failed change sets are kept for retry.
const maxPending = 64

// PersistenceSystem periodically flushes the world's change journal.
// Failed sets are retried in order before newer ones. Phase 5 (Persist).
type PersistenceSystem struct {
	game      *game.Service
	saver     Saver
	timeout   time.Duration
	log       *zap.Logger
	tickCount int
	interval  int // flush every N ticks

	pending []persist.ChangeRows
	backlog int
}

// NewPersistenceSystem builds the flusher. A nil saver runs memory-only:
// the journal is still drained so it does not grow.
func NewPersistenceSystem(svc *game.Service, saver Saver, intervalTicks int, timeout time.Duration, log *zap.Logger) *PersistenceSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PersistenceSystem{
		game:     svc,
		saver:    saver,
		timeout:  timeout,
		log:      log,
		interval: intervalTicks,
		backlog:  maxPending,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.flush(s.game.DrainChanges())
}

// FinalSave writes every record, plus the deletes journaled since the last
// flush. Called for graceful shutdown.
func (s *PersistenceSystem) FinalSave() error {
	return s.flush(s.game.SnapshotAll())
}

// Pending returns how many change sets wait for a retry.
func (s *PersistenceSystem) Pending() int { return len(s.pending) }

func (s *PersistenceSystem) flush(c world.Changes) error {
	if s.saver == nil {
		return nil
	}
	if !c.Empty() {
		rows, err := persist.ToRows(c)
		if err != nil {
			s.log.Error("變更集轉換失敗", zap.Error(err))
		} else {
			s.pending = append(s.pending, rows)
		}
	}
	if len(s.pending) > s.backlog {
		n := len(s.pending) - s.backlog
		carried := carryDeletes(s.pending[:n], &s.pending[n])
		s.log.Error("存檔佇列已滿，捨棄最舊的變更集",
			zap.Int("dropped", n),
			zap.Int("carried_deletes", carried),
		)
		s.pending = s.pending[n:]
	}

	for len(s.pending) > 0 {
		rows := s.pending[0]
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err := s.saver.Save(ctx, rows)
		cancel()
		if err != nil {
			s.log.Error("世界存檔失敗，稍後重試",
				zap.Int("rows", rows.Count()),
				zap.Int("pending", len(s.pending)),
				zap.Error(err),
			)
			return err
		}
		s.log.Debug("世界存檔完成", zap.Int("rows", rows.Count()))
		s.pending = s.pending[1:]
	}
	return nil
}

// carryDeletes moves the deletes of dropped sets into next, the oldest set
// that is kept. A key whose last action among the dropped sets is an upsert
// is not carried. Save applies deletes before upserts, so a carried delete
// never overrides a newer upsert in next. Returns the number carried.
func carryDeletes(dropped []persist.ChangeRows, next *persist.ChangeRows) int {
	players := map[string]bool{}
	archived := map[string]bool{}
	for _, c := range dropped {
		for _, id := range c.DeletePlayers {
			players[string(id)] = true
		}
		for _, r := range c.UpsertPlayers {
			players[string(r.Identity)] = false
		}
		for _, id := range c.DeleteArchived {
			archived[string(id)] = true
		}
		for _, r := range c.UpsertArchived {
			archived[string(r.Identity)] = false
		}
	}
	n := 0
	next.DeletePlayers, n = appendDeletes(next.DeletePlayers, players, n)
	next.DeleteArchived, n = appendDeletes(next.DeleteArchived, archived, n)
	return n
}

func appendDeletes(dst [][]byte, keys map[string]bool, n int) ([][]byte, int) {
	have := make(map[string]struct{}, len(dst))
	for _, id := range dst {
		have[string(id)] = struct{}{}
	}
	for k, del := range keys {
		if _, dup := have[k]; !del || dup {
			continue
		}
		dst = append(dst, []byte(k))
		n++
	}
	return dst, n
}
