package system

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order. A tick that takes longer than the budget is
// logged with the slowest system.
type Runner struct {
	systems []System
	sorted  bool
	budget  time.Duration // 0 = no overrun check
	log     *zap.Logger

	ticks    uint64
	overruns uint64
}

// TickStats describes one run of the loop.
type TickStats struct {
	Elapsed     time.Duration
	Overrun     bool
	Slowest     System
	SlowestTook time.Duration // time spent in Slowest
}

func NewRunner(budget time.Duration, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		systems: make([]System, 0, 8),
		budget:  budget,
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) TickStats {
	r.ensureSorted()
	var st TickStats
	start := time.Now()
	for _, s := range r.systems {
		t0 := time.Now()
		s.Update(dt)
		if took := time.Since(t0); took > st.SlowestTook {
			st.Slowest, st.SlowestTook = s, took
		}
	}
	st.Elapsed = time.Since(start)
	r.ticks++

	if r.budget > 0 && st.Elapsed > r.budget {
		st.Overrun = true
		r.overruns++
		r.log.Warn("tick overran budget",
			zap.Duration("elapsed", st.Elapsed),
			zap.Duration("budget", r.budget),
			zap.String("slowest", systemName(st.Slowest)),
			zap.Duration("slowest_took", st.SlowestTook),
			zap.Uint64("overruns", r.overruns),
		)
	}
	return st
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

// Overruns returns how many ticks exceeded the budget, out of all ticks run.
func (r *Runner) Overruns() (overruns, ticks uint64) { return r.overruns, r.ticks }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}

func systemName(s System) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%T@%s", s, s.Phase())
}
