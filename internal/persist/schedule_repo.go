package persist

import (
	"context"
	"time"
)

// ScheduleRepo stores the single tick schedule row.
type ScheduleRepo struct {
	db *DB
}

func NewScheduleRepo(db *DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// Ensure inserts the schedule row when missing and returns the stored
// interval. created reports whether this call inserted it.
func (r *ScheduleRepo) Ensure(ctx context.Context, want time.Duration) (interval time.Duration, created bool, err error) {
	tag, err := r.db.Pool.Exec(ctx,
		`INSERT INTO tick_schedule (id, interval_ms) VALUES (1, $1) ON CONFLICT (id) DO NOTHING`,
		want.Milliseconds(),
	)
	if err != nil {
		return 0, false, wrap("insert tick schedule", err)
	}
	var ms int64
	if err := r.db.Pool.QueryRow(ctx, `SELECT interval_ms FROM tick_schedule WHERE id = 1`).Scan(&ms); err != nil {
		return 0, false, wrap("read tick schedule", err)
	}
	return time.Duration(ms) * time.Millisecond, tag.RowsAffected() == 1, nil
}

// Update stores a new interval.
func (r *ScheduleRepo) Update(ctx context.Context, interval time.Duration) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE tick_schedule SET interval_ms = $1 WHERE id = 1`, interval.Milliseconds())
	return wrap("update tick schedule", err)
}
