package persist

import (
	"context"
	"fmt"

	"github.com/arenacore/server/internal/world"
)

// ArchiveActive moves players left behind by an unclean stop into the
// archive table.
func (r *WorldRepo) ArchiveActive(ctx context.Context) (int64, error) {
	return NewPlayerRepo(r.db).ArchiveActive(ctx)
}

// LoadArchived returns every archived player. A row that cannot be decoded
// fails the load.
func (r *WorldRepo) LoadArchived(ctx context.Context) ([]*world.ArchivedPlayer, error) {
	rows, err := NewArchivedRepo(r.db).LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*world.ArchivedPlayer, 0, len(rows))
	for _, row := range rows {
		a, err := row.ToWorld()
		if err != nil {
			return nil, fmt.Errorf("decode archived player %x: %w", row.Identity, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// MaxProjectileID returns the highest projectile id ever stored.
func (r *WorldRepo) MaxProjectileID(ctx context.Context) (uint64, error) {
	return NewProjectileRepo(r.db).MaxID(ctx)
}

// ClearProjectiles drops projectiles left over from the previous run.
func (r *WorldRepo) ClearProjectiles(ctx context.Context) (int64, error) {
	return NewProjectileRepo(r.db).DeleteAll(ctx)
}
