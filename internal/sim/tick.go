package sim

import (
	"time"

	"github.com/arenacore/server/internal/world"
)

// Report summarizes one tick.
type Report struct {
	Tick        uint64
	Projectiles int // live projectiles after the tick
	Expired     []uint64
	Hits        []Hit
	Moved       int
}

// Tick advances ws by one fixed step of dt seconds at wall time now.
//
// Projectiles go first: each is advanced, checked against its bounds and
// then swept against the players. Removals are applied once the pass is
// done. Players go second: stale one-tick flags are cleared and anyone
// holding a direction is integrated again with the jump edge suppressed.
func Tick(ws *world.State, now time.Time, dt float64, prm Params) Report {
	ws.Tick++
	ws.LastTickAt = now
	rep := Report{Tick: ws.Tick}

	players := ws.Players()
	projectiles := ws.Projectiles()
	if len(projectiles) > 0 {
		ws.MarkProjectilesChanged()
	}
	for _, proj := range projectiles {
		Advance(proj, dt)
		if Expired(proj, now, prm.RangeMode) {
			ws.QueueRemoval(proj.ID)
			rep.Expired = append(rep.Expired, proj.ID)
			continue
		}
		if hit, ok := Collide(ws, proj, players, prm.Collision, prm.Damage); ok {
			rep.Hits = append(rep.Hits, hit)
		}
	}
	ws.FlushRemovals()
	rep.Projectiles = ws.ProjectileCount()

	for _, p := range players {
		if p.IsCasting && p.CastTick < ws.Tick {
			p.IsCasting = false
			p.Dirty = true
		}
		if p.IsHit && p.HitTick < ws.Tick {
			p.IsHit = false
			p.Dirty = true
		}
		if p.Input.HasMovement() {
			Integrate(p, p.Yaw(), p.Input, dt, p.Input.Jump, prm.Movement)
			p.Dirty = true
			rep.Moved++
		}
	}
	return rep
}
