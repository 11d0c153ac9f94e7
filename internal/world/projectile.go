package world

import (
	"time"

	"github.com/arenacore/server/internal/vecmath"
)

// Projectile is a live projectile. It is destroyed on collision or expiry.
type Projectile struct {
	ID      uint64
	Owner   Identity
	Ability string

	Position    vecmath.Vec3
	Velocity    vecmath.Vec3
	Orientation vecmath.Quat

	SpawnPosition vecmath.Vec3
	SpawnTime     time.Time

	Speed  float64
	Damage int32

	// Bounds; zero disables a bound. Whichever is exceeded first expires the
	// projectile.
	MaxRange    float64
	MaxLifetime time.Duration
}

// Age returns the time elapsed since spawn.
func (p *Projectile) Age(now time.Time) time.Duration {
	return now.Sub(p.SpawnTime)
}
