package sim

import (
	"time"

	"github.com/arenacore/server/internal/world"
)

// TryConsume records a use of ability at now if its cooldown has elapsed.
// A rejected attempt leaves p untouched. An ability never used before is
// always available; an elapsed time exactly equal to the cooldown passes.
func TryConsume(p *world.Player, ability string, now time.Time, cooldown time.Duration) error {
	if last, ok := p.LastAction[ability]; ok {
		if elapsed := now.Sub(last); elapsed < cooldown {
			return &CooldownError{Ability: ability, Remaining: cooldown - elapsed}
		}
	}
	if p.LastAction == nil {
		p.LastAction = make(map[string]time.Time, 4)
	}
	p.LastAction[ability] = now
	p.Dirty = true
	return nil
}
