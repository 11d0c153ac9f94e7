package persist

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type PlayerRepo struct {
	db *DB
}

func NewPlayerRepo(db *DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

const playerColumns = `identity, username, class, color, position, rotation, vertical_velocity,
	health, max_health, mana, max_mana, last_input_seq, current_animation,
	last_action, spawn_slot, updated_at`

func (r *PlayerRepo) LoadAll(ctx context.Context) ([]PlayerRow, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+playerColumns+` FROM players ORDER BY identity`)
	if err != nil {
		return nil, wrap("load players", err)
	}
	defer rows.Close()

	var result []PlayerRow
	for rows.Next() {
		var p PlayerRow
		if err := rows.Scan(
			&p.Identity, &p.Username, &p.Class, &p.Color, &p.Position, &p.Rotation, &p.VerticalVelocity,
			&p.Health, &p.MaxHealth, &p.Mana, &p.MaxMana, &p.LastInputSeq, &p.CurrentAnimation,
			&p.LastAction, &p.SpawnSlot, &p.UpdatedAt,
		); err != nil {
			return nil, wrap("scan player", err)
		}
		result = append(result, p)
	}
	return result, wrap("load players", rows.Err())
}

const upsertPlayerSQL = `INSERT INTO players (identity, username, class, color, position, rotation,
	vertical_velocity, health, max_health, mana, max_mana, last_input_seq, current_animation,
	last_action, spawn_slot, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now())
ON CONFLICT (identity) DO UPDATE SET
	username = EXCLUDED.username, class = EXCLUDED.class, color = EXCLUDED.color,
	position = EXCLUDED.position, rotation = EXCLUDED.rotation,
	vertical_velocity = EXCLUDED.vertical_velocity,
	health = EXCLUDED.health, max_health = EXCLUDED.max_health,
	mana = EXCLUDED.mana, max_mana = EXCLUDED.max_mana,
	last_input_seq = EXCLUDED.last_input_seq, current_animation = EXCLUDED.current_animation,
	last_action = EXCLUDED.last_action, spawn_slot = EXCLUDED.spawn_slot, updated_at = now()`

func upsertPlayers(ctx context.Context, q querier, rows []PlayerRow) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range rows {
		batch.Queue(upsertPlayerSQL,
			p.Identity, p.Username, p.Class, p.Color, p.Position, p.Rotation, p.VerticalVelocity,
			p.Health, p.MaxHealth, p.Mana, p.MaxMana, p.LastInputSeq, p.CurrentAnimation,
			string(p.LastAction), p.SpawnSlot,
		)
	}
	br := q.SendBatch(ctx, batch)
	defer br.Close()
	for range rows {
		if _, err := br.Exec(); err != nil {
			return wrap("upsert player", err)
		}
	}
	return nil
}

func deleteByIdentity(ctx context.Context, q querier, table string, ids [][]byte) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `DELETE FROM `+pgx.Identifier{table}.Sanitize()+` WHERE identity = ANY($1)`, ids)
	return wrap("delete from "+table, err)
}

// Upsert writes rows outside any surrounding transaction.
func (r *PlayerRepo) Upsert(ctx context.Context, rows []PlayerRow) error {
	return upsertPlayers(ctx, r.db.Pool, rows)
}

// ArchiveActive moves every row of players into archived_players and
// returns how many moved. Run once at boot.
func (r *PlayerRepo) ArchiveActive(ctx context.Context) (int64, error) {
	var moved int64
	err := r.db.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `INSERT INTO archived_players
			(identity, username, class, position, rotation, health, max_health, mana, max_mana, last_seen)
			SELECT identity, username, class, position, rotation, health, max_health, mana, max_mana, updated_at
			FROM players
			ON CONFLICT (identity) DO UPDATE SET
				username = EXCLUDED.username, class = EXCLUDED.class,
				position = EXCLUDED.position, rotation = EXCLUDED.rotation,
				health = EXCLUDED.health, max_health = EXCLUDED.max_health,
				mana = EXCLUDED.mana, max_mana = EXCLUDED.max_mana,
				last_seen = EXCLUDED.last_seen`)
		if err != nil {
			return wrap("archive active players", err)
		}
		moved = tag.RowsAffected()
		if _, err := tx.Exec(ctx, `DELETE FROM players`); err != nil {
			return wrap("clear players", err)
		}
		return nil
	})
	return moved, err
}
