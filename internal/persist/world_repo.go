package persist

import (
	"context"

	"github.com/arenacore/server/internal/world"
	"github.com/jackc/pgx/v5"
)

// WorldRepo writes a drained change set in one transaction.
type WorldRepo struct {
	db *DB
}

func NewWorldRepo(db *DB) *WorldRepo {
	return &WorldRepo{db: db}
}

// ChangeRows is a world.Changes converted to table rows.
type ChangeRows struct {
	UpsertPlayers      []PlayerRow
	DeletePlayers      [][]byte
	UpsertArchived     []ArchivedRow
	DeleteArchived     [][]byte
	ProjectilesChanged bool
	Projectiles        []ProjectileRow
}

// Count returns the number of row writes the set implies.
func (c *ChangeRows) Count() int {
	n := len(c.UpsertPlayers) + len(c.DeletePlayers) + len(c.UpsertArchived) + len(c.DeleteArchived)
	if c.ProjectilesChanged {
		n += len(c.Projectiles) + 1
	}
	return n
}

// ToRows converts a change set. A player whose last_action cannot be encoded
// fails the whole conversion.
func ToRows(c world.Changes) (ChangeRows, error) {
	var out ChangeRows
	for _, p := range c.UpsertPlayers {
		row, err := PlayerToRow(p)
		if err != nil {
			return ChangeRows{}, err
		}
		out.UpsertPlayers = append(out.UpsertPlayers, row)
	}
	for _, id := range c.DeletePlayers {
		out.DeletePlayers = append(out.DeletePlayers, append([]byte(nil), id[:]...))
	}
	for _, a := range c.UpsertArchived {
		out.UpsertArchived = append(out.UpsertArchived, ArchivedToRow(a))
	}
	for _, id := range c.DeleteArchived {
		out.DeleteArchived = append(out.DeleteArchived, append([]byte(nil), id[:]...))
	}
	if c.ProjectilesChanged {
		out.ProjectilesChanged = true
		out.Projectiles = make([]ProjectileRow, 0, len(c.Projectiles))
		for _, p := range c.Projectiles {
			out.Projectiles = append(out.Projectiles, ProjectileToRow(p))
		}
	}
	return out, nil
}

// Save applies rows. Deletes run before upserts so an identity moving
// between tables within one flush ends up in the right one.
func (r *WorldRepo) Save(ctx context.Context, rows ChangeRows) error {
	return r.db.InTx(ctx, func(tx pgx.Tx) error {
		if err := deleteByIdentity(ctx, tx, "players", rows.DeletePlayers); err != nil {
			return err
		}
		if err := deleteByIdentity(ctx, tx, "archived_players", rows.DeleteArchived); err != nil {
			return err
		}
		if err := upsertPlayers(ctx, tx, rows.UpsertPlayers); err != nil {
			return err
		}
		if err := upsertArchived(ctx, tx, rows.UpsertArchived); err != nil {
			return err
		}
		if rows.ProjectilesChanged {
			if err := replaceProjectiles(ctx, tx, rows.Projectiles); err != nil {
				return err
			}
		}
		return nil
	})
}
