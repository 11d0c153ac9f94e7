package sim

import (
	"math"
	"testing"
	"time"

	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func vecNear(a, b vecmath.Vec3) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

func TestSpawnAtYawZero(t *testing.T) {
	owner := &world.Player{Identity: world.IdentityFromToken("a")}
	proj := Spawn(owner, DefaultAbility(), nil, t0)

	if !vecNear(proj.Position, vecmath.Vec3{0, 1, -1}) {
		t.Fatalf("spawn = %v, want (0,1,-1)", proj.Position)
	}
	if proj.SpawnPosition != proj.Position || !proj.SpawnTime.Equal(t0) {
		t.Fatal("spawn point and time not recorded")
	}
	if !vecNear(proj.Velocity, vecmath.Vec3{0, 0, -20}) {
		t.Fatalf("velocity = %v", proj.Velocity)
	}
	if proj.Owner != owner.Identity || proj.Damage != 20 || proj.MaxRange != 30 {
		t.Fatalf("fields not copied from spec: %+v", proj)
	}
	// model forward already matches the flight direction
	if !vecNear(vecmath.Rotate(proj.Orientation, vecmath.ModelForward), vecmath.Vec3{0, 0, -1}) {
		t.Fatalf("orientation %+v", proj.Orientation)
	}
}

func TestSpawnRotatedAndAimed(t *testing.T) {
	owner := &world.Player{
		Position: vecmath.Vec3{10, 0, 10},
		Rotation: vecmath.Vec3{0, math.Pi / 2, 0},
	}
	proj := Spawn(owner, DefaultAbility(), nil, t0)
	if !vecNear(proj.Position, vecmath.Vec3{9, 1, 10}) {
		t.Fatalf("spawn = %v, want (9,1,10)", proj.Position)
	}
	if !vecNear(proj.Velocity, vecmath.Vec3{-20, 0, 0}) {
		t.Fatalf("velocity = %v", proj.Velocity)
	}

	aim := vecmath.Vec3{0, 3, -4}
	proj = Spawn(owner, DefaultAbility(), &aim, t0)
	if !vecNear(proj.Velocity, vecmath.Vec3{0, 12, -16}) {
		t.Fatalf("aimed velocity = %v", proj.Velocity)
	}
	dir := vecmath.Rotate(proj.Orientation, vecmath.ModelForward)
	if !vecNear(dir, vecmath.Vec3{0, 0.6, -0.8}) {
		t.Fatalf("orientation maps forward to %v", dir)
	}

	zero := vecmath.Vec3{}
	proj = Spawn(owner, DefaultAbility(), &zero, t0)
	if !vecNear(proj.Velocity, vecmath.Vec3{-20, 0, 0}) {
		t.Fatalf("zero aim should be ignored, velocity = %v", proj.Velocity)
	}
}

func TestAdvance(t *testing.T) {
	p := &world.Projectile{Position: vecmath.Vec3{1, 1, 1}, Velocity: vecmath.Vec3{0, 0, -20}}
	Advance(p, 0.05)
	if !vecNear(p.Position, vecmath.Vec3{1, 1, 0}) {
		t.Fatalf("position = %v", p.Position)
	}
}

func TestExpiredByAge(t *testing.T) {
	owner := &world.Player{}
	proj := Spawn(owner, DefaultAbility(), nil, t0)

	for _, d := range []time.Duration{0, time.Second, 1500 * time.Millisecond} {
		if Expired(&proj, t0.Add(d), RangeByAge) {
			t.Fatalf("expired at %v, range 30 at speed 20 needs 1.5s", d)
		}
	}
	if !Expired(&proj, t0.Add(1501*time.Millisecond), RangeByAge) {
		t.Fatal("not expired after 1.501s")
	}
}

func TestExpiredByDistance(t *testing.T) {
	proj := world.Projectile{
		SpawnPosition: vecmath.Vec3{0, 1, 0},
		Position:      vecmath.Vec3{0, 1, -30},
		Speed:         20,
		MaxRange:      30,
		SpawnTime:     t0,
	}
	// age alone would expire it, distance does not
	if Expired(&proj, t0.Add(10*time.Second), RangeByDistance) {
		t.Fatal("exactly at range must not expire")
	}
	proj.Position[2] = -30.01
	if !Expired(&proj, t0, RangeByDistance) {
		t.Fatal("beyond range must expire")
	}
}

func TestExpiredByLifetime(t *testing.T) {
	proj := world.Projectile{Speed: 1, MaxLifetime: 5 * time.Second, SpawnTime: t0}
	if Expired(&proj, t0.Add(5*time.Second), RangeByAge) {
		t.Fatal("exactly at lifetime must not expire")
	}
	if !Expired(&proj, t0.Add(5*time.Second+time.Millisecond), RangeByAge) {
		t.Fatal("past lifetime must expire")
	}

	unbounded := world.Projectile{Speed: 100, SpawnTime: t0}
	if Expired(&unbounded, t0.Add(time.Hour), RangeByAge) {
		t.Fatal("a projectile without bounds never expires")
	}
}

func TestParseRangeMode(t *testing.T) {
	tests := []struct {
		in   string
		want RangeMode
		ok   bool
	}{
		{"", RangeByAge, true},
		{"age", RangeByAge, true},
		{"distance", RangeByDistance, true},
		{"bogus", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseRangeMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseRangeMode(%q) = %q, %v", tt.in, got, ok)
		}
	}
}
