package system

import (
	"fmt"
	"time"
)

// Phase orders systems within one tick.
type Phase int

const (
	PhaseInput      Phase = iota // drain session queues, dispatch packets
	PhasePreUpdate               // deliver last tick's events
	PhaseUpdate                  // advance the world
	PhasePostUpdate              // unused
	PhaseOutput                  // snapshots and notices, flush sessions
	PhasePersist                 // journal flush
	PhaseCleanup                 // unused
)

var phaseNames = [...]string{"input", "pre-update", "update", "post-update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// System is one stage of the game loop.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
