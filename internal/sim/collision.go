package sim

import (
	"math"

	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

// CollisionPolicy decides whether a projectile at projectilePos hits a player
// standing at playerPos.
type CollisionPolicy interface {
	Hits(playerPos, projectilePos vecmath.Vec3) bool
}

// CylinderPolicy treats the player as an upright cylinder rising from its
// feet and the projectile as a sphere. Touching counts as a hit.
type CylinderPolicy struct {
	PlayerRadius     float64
	PlayerHeight     float64
	ProjectileRadius float64
}

func DefaultCylinder() CylinderPolicy {
	return CylinderPolicy{PlayerRadius: 0.5, PlayerHeight: 2.0, ProjectileRadius: 0.2}
}

func (c CylinderPolicy) Hits(playerPos, projectilePos vecmath.Vec3) bool {
	bottom := playerPos[1]
	top := bottom + c.PlayerHeight
	closestY := math.Min(math.Max(projectilePos[1], bottom), top)

	dx := projectilePos[0] - playerPos[0]
	dy := projectilePos[1] - closestY
	dz := projectilePos[2] - playerPos[2]

	r := c.PlayerRadius + c.ProjectileRadius
	return dx*dx+dy*dy+dz*dz <= r*r
}

// Hit records one resolved collision.
type Hit struct {
	ProjectileID uint64
	Ability      string
	Attacker     world.Identity
	Target       world.Identity
	Damage       int32
	Health       int32
}

// ApplyDamage subtracts dmg from the target's health, flooring at zero.
func ApplyDamage(p *world.Player, dmg int32) {
	if dmg < 0 {
		dmg = 0
	}
	if dmg >= p.Health {
		p.Health = 0
		return
	}
	p.Health -= dmg
}

// Collide tests proj against players (already in ascending identity order,
// owner skipped) and applies the first hit. The projectile is queued for
// removal on a hit; it keeps flying otherwise.
func Collide(ws *world.State, proj *world.Projectile, players []*world.Player, policy CollisionPolicy, damage DamageFunc) (Hit, bool) {
	for _, target := range players {
		if target.Identity == proj.Owner {
			continue
		}
		if !policy.Hits(target.Position, proj.Position) {
			continue
		}

		dmg := proj.Damage
		if damage != nil {
			dmg = damage(proj, target)
		}
		ApplyDamage(target, dmg)
		target.IsHit = true
		target.CurrentAnimation = world.AnimDamage
		target.HitTick = ws.Tick
		target.Dirty = true
		ws.QueueRemoval(proj.ID)

		return Hit{
			ProjectileID: proj.ID,
			Ability:      proj.Ability,
			Attacker:     proj.Owner,
			Target:       target.Identity,
			Damage:       dmg,
			Health:       target.Health,
		}, true
	}
	return Hit{}, false
}
