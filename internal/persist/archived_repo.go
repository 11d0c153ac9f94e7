package persist

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type ArchivedRepo struct {
	db *DB
}

func NewArchivedRepo(db *DB) *ArchivedRepo {
	return &ArchivedRepo{db: db}
}

func (r *ArchivedRepo) LoadAll(ctx context.Context) ([]ArchivedRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT identity, username, class, position, rotation,
		        health, max_health, mana, max_mana, last_seen
		 FROM archived_players
		 ORDER BY identity`,
	)
	if err != nil {
		return nil, wrap("load archived players", err)
	}
	defer rows.Close()

	var result []ArchivedRow
	for rows.Next() {
		var a ArchivedRow
		if err := rows.Scan(
			&a.Identity, &a.Username, &a.Class, &a.Position, &a.Rotation,
			&a.Health, &a.MaxHealth, &a.Mana, &a.MaxMana, &a.LastSeen,
		); err != nil {
			return nil, wrap("scan archived player", err)
		}
		result = append(result, a)
	}
	return result, wrap("load archived players", rows.Err())
}

const upsertArchivedSQL = `INSERT INTO archived_players
	(identity, username, class, position, rotation, health, max_health, mana, max_mana, last_seen)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (identity) DO UPDATE SET
	username = EXCLUDED.username, class = EXCLUDED.class,
	position = EXCLUDED.position, rotation = EXCLUDED.rotation,
	health = EXCLUDED.health, max_health = EXCLUDED.max_health,
	mana = EXCLUDED.mana, max_mana = EXCLUDED.max_mana,
	last_seen = EXCLUDED.last_seen`

func upsertArchived(ctx context.Context, q querier, rows []ArchivedRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, a := range rows {
		batch.Queue(upsertArchivedSQL,
			a.Identity, a.Username, a.Class, a.Position, a.Rotation,
			a.Health, a.MaxHealth, a.Mana, a.MaxMana, a.LastSeen,
		)
	}
	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return wrap("upsert archived player", err)
		}
	}
	return nil
}
