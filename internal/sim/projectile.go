package sim

import (
	"time"

	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

// Spawn builds a projectile fired by owner. The muzzle offset is rotated by
// the owner's yaw; the flight direction is the owner's flat forward unless a
// non-zero aim direction is given. The id is left for the caller to assign.
func Spawn(owner *world.Player, spec AbilitySpec, aim *vecmath.Vec3, now time.Time) world.Projectile {
	forward, right := vecmath.YawBasis(owner.Yaw())
	pos := owner.Position.Add(vecmath.LocalToWorld(spec.MuzzleOffset, forward, right))

	dir := forward
	if aim != nil {
		if a := vecmath.Normalize(*aim, 1e-9); a.LenSqr() > 0 {
			dir = a
		}
	}

	return world.Projectile{
		Owner:         owner.Identity,
		Ability:       spec.Name,
		Position:      pos,
		Velocity:      dir.Mul(spec.Speed),
		Orientation:   vecmath.FromTo(vecmath.ModelForward, dir),
		SpawnPosition: pos,
		SpawnTime:     now,
		Speed:         spec.Speed,
		Damage:        spec.Damage,
		MaxRange:      spec.Range,
		MaxLifetime:   spec.Lifetime,
	}
}

// Advance moves p along its velocity for dt seconds.
func Advance(p *world.Projectile, dt float64) {
	p.Position = p.Position.Add(p.Velocity.Mul(dt))
}

// Expired reports whether either bound of p has been exceeded at now.
func Expired(p *world.Projectile, now time.Time, mode RangeMode) bool {
	age := p.Age(now)
	if p.MaxLifetime > 0 && age > p.MaxLifetime {
		return true
	}
	if p.MaxRange <= 0 {
		return false
	}
	if mode == RangeByDistance {
		return vecmath.DistSq(p.Position, p.SpawnPosition) > p.MaxRange*p.MaxRange
	}
	return age.Seconds()*p.Speed > p.MaxRange
}
