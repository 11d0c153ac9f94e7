package sim

import (
	"time"

	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

// Cast fires spec for the active player id. The cooldown is checked first;
// on rejection nothing changes. On success the projectile gets the next id,
// is added to ws and the caster's casting flag is raised until the next tick.
func Cast(ws *world.State, id world.Identity, spec AbilitySpec, aim *vecmath.Vec3, now time.Time) (world.Projectile, error) {
	p, ok := ws.Player(id)
	if !ok {
		return world.Projectile{}, ErrNotFound
	}
	if err := TryConsume(p, spec.Name, now, spec.Cooldown); err != nil {
		return world.Projectile{}, err
	}

	proj := Spawn(p, spec, aim, now)
	proj.ID = ws.AllocProjectileID()
	stored := proj
	ws.AddProjectile(&stored)

	p.IsCasting = true
	p.CastTick = ws.Tick
	p.Dirty = true
	return proj, nil
}
