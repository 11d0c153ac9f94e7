package persist

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type ProjectileRepo struct {
	db *DB
}

func NewProjectileRepo(db *DB) *ProjectileRepo {
	return &ProjectileRepo{db: db}
}

var projectileColumns = []string{
	"id", "owner", "ability", "position", "velocity", "orientation",
	"spawn_position", "spawn_time", "speed", "damage", "max_range", "max_lifetime_ms",
}

// MaxID returns the highest stored projectile id, or 0 when the table is empty.
func (r *ProjectileRepo) MaxID(ctx context.Context) (uint64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM projectiles`).Scan(&id)
	if err != nil {
		return 0, wrap("max projectile id", err)
	}
	return uint64(id), nil
}

func (r *ProjectileRepo) LoadAll(ctx context.Context) ([]ProjectileRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, owner, ability, position, velocity, orientation,
		        spawn_position, spawn_time, speed, damage, max_range, max_lifetime_ms
		 FROM projectiles
		 ORDER BY id`,
	)
	if err != nil {
		return nil, wrap("load projectiles", err)
	}
	defer rows.Close()

	var result []ProjectileRow
	for rows.Next() {
		var p ProjectileRow
		if err := rows.Scan(
			&p.ID, &p.Owner, &p.Ability, &p.Position, &p.Velocity, &p.Orientation,
			&p.SpawnPosition, &p.SpawnTime, &p.Speed, &p.Damage, &p.MaxRange, &p.MaxLifetimeMs,
		); err != nil {
			return nil, wrap("scan projectile", err)
		}
		result = append(result, p)
	}
	return result, wrap("load projectiles", rows.Err())
}

// DeleteAll clears the table and returns the number of removed rows.
func (r *ProjectileRepo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM projectiles`)
	if err != nil {
		return 0, wrap("delete projectiles", err)
	}
	return tag.RowsAffected(), nil
}

// replaceProjectiles swaps the stored set for rows with one COPY.
func replaceProjectiles(ctx context.Context, q querier, rows []ProjectileRow) error {
	if _, err := q.Exec(ctx, `DELETE FROM projectiles`); err != nil {
		return wrap("clear projectiles", err)
	}
	if len(rows) == 0 {
		return nil
	}
	_, err := q.CopyFrom(ctx, pgx.Identifier{"projectiles"}, projectileColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			p := rows[i]
			return []any{
				p.ID, p.Owner, p.Ability, p.Position, p.Velocity, p.Orientation,
				p.SpawnPosition, p.SpawnTime, p.Speed, p.Damage, p.MaxRange, p.MaxLifetimeMs,
			}, nil
		}),
	)
	return wrap("copy projectiles", err)
}
