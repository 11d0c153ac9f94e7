package game

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ScheduleStore persists the tick interval. *persist.ScheduleRepo satisfies it.
type ScheduleStore interface {
	Ensure(ctx context.Context, want time.Duration) (interval time.Duration, created bool, err error)
	Update(ctx context.Context, interval time.Duration) error
}

// Schedule is the tick cadence the game loop runs at. The service integrates
// every tick with the same interval, see Options.WithSchedule.
type Schedule struct {
	Interval time.Duration
	// Degraded is set when the stored schedule could not be read or written
	// and the configured interval is used without it.
	Degraded bool
}

// BootstrapSchedule makes sure the schedule row exists and holds the
// configured interval. The configured interval always wins: a stored row
// left by an earlier configuration is rewritten. Store failures are logged
// and never fatal; the schedule is then marked degraded.
func BootstrapSchedule(ctx context.Context, st ScheduleStore, want time.Duration, log *zap.Logger) Schedule {
	if st == nil {
		return Schedule{Interval: want, Degraded: true}
	}
	got, created, err := st.Ensure(ctx, want)
	if err != nil {
		log.Error("tick schedule bootstrap failed, using configured rate",
			zap.Duration("interval", want), zap.Error(err))
		return Schedule{Interval: want, Degraded: true}
	}
	switch {
	case created:
		log.Info("tick schedule created", zap.Duration("interval", want))
	case got == want:
		log.Info("tick schedule already present", zap.Duration("interval", got))
	default:
		if err := st.Update(ctx, want); err != nil {
			log.Error("tick schedule update failed, using configured rate",
				zap.Duration("stored", got), zap.Duration("interval", want), zap.Error(err))
			return Schedule{Interval: want, Degraded: true}
		}
		log.Info("tick schedule updated", zap.Duration("stored", got), zap.Duration("interval", want))
	}
	return Schedule{Interval: want}
}
