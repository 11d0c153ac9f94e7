package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

const tickDt = 0.05

func TestCastCooldownAndPulse(t *testing.T) {
	ws := world.NewState()
	lp := defaultLifecycle()
	Register(ws, identity(1), "caster", "mage", lp, t0)

	proj, err := Cast(ws, identity(1), DefaultAbility(), nil, t0)
	if err != nil {
		t.Fatalf("Cast: %v", err)
	}
	if proj.ID != 1 || ws.ProjectileCount() != 1 {
		t.Fatalf("projectile id %d count %d", proj.ID, ws.ProjectileCount())
	}
	caster, _ := ws.Player(identity(1))
	if !caster.IsCasting {
		t.Fatal("casting flag not raised")
	}

	if _, err := Cast(ws, identity(1), DefaultAbility(), nil, t0.Add(100*time.Millisecond)); !errors.Is(err, ErrOnCooldown) {
		t.Fatalf("second cast: got %v, want ErrOnCooldown", err)
	}
	if ws.ProjectileCount() != 1 {
		t.Fatal("rejected cast spawned a projectile")
	}

	Tick(ws, t0.Add(50*time.Millisecond), tickDt, DefaultParams())
	if caster.IsCasting {
		t.Fatal("casting flag must clear on the first tick after the cast")
	}
	if caster.CastTick != 0 || ws.Tick != 1 {
		t.Fatalf("cast tick %d world tick %d", caster.CastTick, ws.Tick)
	}

	if _, err := Cast(ws, identity(9), DefaultAbility(), nil, t0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown caster: got %v", err)
	}
}

func TestTickProjectileHitsTarget(t *testing.T) {
	ws := world.NewState()
	lp := defaultLifecycle()
	shooter, _, _ := Register(ws, identity(1), "shooter", "mage", lp, t0)
	target, _, _ := Register(ws, identity(2), "target", "mage", lp, t0)

	shooter.Position = vecmath.Vec3{0, 0, 0}
	target.Position = vecmath.Vec3{0, 0, -3}

	if _, err := Cast(ws, shooter.Identity, DefaultAbility(), nil, t0); err != nil {
		t.Fatal(err)
	}

	var hits []Hit
	now := t0
	for i := 0; i < 10 && len(hits) == 0; i++ {
		now = now.Add(50 * time.Millisecond)
		rep := Tick(ws, now, tickDt, DefaultParams())
		hits = append(hits, rep.Hits...)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %v, want exactly one", hits)
	}
	if hits[0].Target != target.Identity || hits[0].Attacker != shooter.Identity || hits[0].Health != 80 {
		t.Fatalf("hit = %+v", hits[0])
	}
	if ws.ProjectileCount() != 0 {
		t.Fatal("projectile survived its hit")
	}
	if !target.IsHit {
		t.Fatal("hit flag must be visible right after the hitting tick")
	}

	Tick(ws, now.Add(50*time.Millisecond), tickDt, DefaultParams())
	if target.IsHit {
		t.Fatal("hit flag must clear on the next tick")
	}
}

func TestTickClearsHitFlagIndependentlyOfCast(t *testing.T) {
	ws := world.NewState()
	lp := defaultLifecycle()
	shooter, _, _ := Register(ws, identity(1), "shooter", "mage", lp, t0)
	target, _, _ := Register(ws, identity(2), "target", "mage", lp, t0)

	shooter.Position = vecmath.Vec3{0, 0, 0}
	target.Position = vecmath.Vec3{0, 0, -3}

	if _, err := Cast(ws, shooter.Identity, DefaultAbility(), nil, t0); err != nil {
		t.Fatal(err)
	}
	now := t0
	for i := 0; i < 10 && !target.IsHit; i++ {
		now = now.Add(50 * time.Millisecond)
		Tick(ws, now, tickDt, DefaultParams())
	}
	if !target.IsHit {
		t.Fatal("target never hit")
	}
	hitTick := ws.Tick
	if target.HitTick != hitTick {
		t.Fatalf("hit tick = %d, want %d", target.HitTick, hitTick)
	}

	// The target casts between the hitting tick and the next one.
	if _, err := Cast(ws, target.Identity, DefaultAbility(), nil, now); err != nil {
		t.Fatal(err)
	}
	if !target.IsHit || !target.IsCasting {
		t.Fatal("both flags must be visible before the next tick")
	}
	if target.CastTick != hitTick {
		t.Fatalf("cast tick = %d, want %d", target.CastTick, hitTick)
	}

	Tick(ws, now.Add(50*time.Millisecond), tickDt, DefaultParams())
	if target.IsHit {
		t.Fatal("a later cast must not extend the hit flag")
	}
	if target.IsCasting {
		t.Fatal("casting flag must clear on the next tick")
	}
}

func TestTickExpiredProjectileDoesNotHit(t *testing.T) {
	ws := world.NewState()
	target := &world.Player{Identity: identity(2), Health: 100}
	ws.AddPlayer(target)
	ws.AddProjectile(&world.Projectile{
		ID:        ws.AllocProjectileID(),
		Owner:     identity(1),
		Position:  vecmath.Vec3{0, 1, 0},
		Speed:     20,
		Damage:    20,
		MaxRange:  30,
		SpawnTime: t0,
	})

	rep := Tick(ws, t0.Add(2*time.Second), tickDt, DefaultParams())
	if len(rep.Hits) != 0 || target.Health != 100 {
		t.Fatalf("expired projectile dealt damage: %+v", rep.Hits)
	}
	if len(rep.Expired) != 1 || rep.Projectiles != 0 {
		t.Fatalf("report %+v", rep)
	}
}

func TestTickReintegratesMovingPlayers(t *testing.T) {
	ws := world.NewState()
	walker := &world.Player{Identity: identity(1), Input: world.InputState{Forward: true, Jump: true}}
	idle := &world.Player{Identity: identity(2), Position: vecmath.Vec3{5, 0, 5}}
	ws.AddPlayer(walker)
	ws.AddPlayer(idle)

	rep := Tick(ws, t0, tickDt, DefaultParams())
	if rep.Moved != 1 || rep.Tick != 1 || ws.Tick != 1 {
		t.Fatalf("report %+v", rep)
	}
	if !near(walker.Position[2], -15*tickDt) {
		t.Fatalf("walker z = %v", walker.Position[2])
	}
	if walker.Position[1] != 0 {
		t.Fatal("held jump must not launch during the tick")
	}
	if idle.Position != (vecmath.Vec3{5, 0, 5}) {
		t.Fatal("idle player moved")
	}
}

func TestTickAdvanceBeforeCollision(t *testing.T) {
	ws := world.NewState()
	target := &world.Player{Identity: identity(2), Health: 100, Position: vecmath.Vec3{0, 0, -1}}
	ws.AddPlayer(target)
	// starts out of reach, one step of advance carries it in
	ws.AddProjectile(&world.Projectile{
		ID:        ws.AllocProjectileID(),
		Owner:     identity(1),
		Position:  vecmath.Vec3{0, 1, 0},
		Velocity:  vecmath.Vec3{0, 0, -20},
		Speed:     20,
		Damage:    20,
		SpawnTime: t0,
	})
	rep := Tick(ws, t0.Add(50*time.Millisecond), tickDt, DefaultParams())
	if len(rep.Hits) != 1 {
		t.Fatalf("hits = %v", rep.Hits)
	}
}
