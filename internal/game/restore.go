package game

import (
	"context"
	"fmt"

	"github.com/arenacore/server/internal/world"
	"go.uber.org/zap"
)

// Archive is the durable state read at boot. *persist.WorldRepo satisfies it.
type Archive interface {
	ArchiveActive(ctx context.Context) (int64, error)
	LoadArchived(ctx context.Context) ([]*world.ArchivedPlayer, error)
	MaxProjectileID(ctx context.Context) (uint64, error)
	ClearProjectiles(ctx context.Context) (int64, error)
}

// RestoreStats reports what a boot restore found.
type RestoreStats struct {
	Recovered   int64 // active rows left by an unclean stop
	Archived    int
	Projectiles int64 // stale projectiles dropped
	NextID      uint64
}

// Restore loads the archive into an empty world. Players that were active
// when the previous run stopped come back as archived so they rejoin through
// Register. Projectiles do not survive a restart but their ids stay unique.
func (s *Service) Restore(ctx context.Context, a Archive) (RestoreStats, error) {
	var st RestoreStats
	var err error
	if st.Recovered, err = a.ArchiveActive(ctx); err != nil {
		return st, fmt.Errorf("archive active players: %w", err)
	}
	archived, err := a.LoadArchived(ctx)
	if err != nil {
		return st, fmt.Errorf("load archived players: %w", err)
	}
	maxID, err := a.MaxProjectileID(ctx)
	if err != nil {
		return st, fmt.Errorf("max projectile id: %w", err)
	}
	if st.Projectiles, err = a.ClearProjectiles(ctx); err != nil {
		return st, fmt.Errorf("clear projectiles: %w", err)
	}

	err = s.do(ctx, func(ws *world.State) error {
		for _, ap := range archived {
			ws.RestoreArchived(ap)
		}
		if ws.NextProjectileID <= maxID {
			ws.NextProjectileID = maxID + 1
		}
		st.Archived = ws.ArchivedCount()
		st.NextID = ws.NextProjectileID
		return nil
	})
	if err != nil {
		return st, err
	}
	s.log.Info("world restored",
		zap.Int64("recovered", st.Recovered),
		zap.Int("archived", st.Archived),
		zap.Int64("dropped_projectiles", st.Projectiles),
		zap.Uint64("next_projectile_id", st.NextID),
	)
	return st, nil
}
