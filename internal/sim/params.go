package sim

import (
	"time"

	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

// MovementParams tunes the locomotion integrator.
type MovementParams struct {
	BaseSpeed        float64
	SprintMultiplier float64
	Gravity          float64
	JumpImpulse      float64
	// JumpTolerance is the height under which a jump may start.
	JumpTolerance float64
}

func DefaultMovement() MovementParams {
	return MovementParams{
		BaseSpeed:        15,
		SprintMultiplier: 1.8,
		Gravity:          -6,
		JumpImpulse:      9,
		JumpTolerance:    0.01,
	}
}

// InputDt is the fixed step applied to every input submission.
const InputDt = 1.0 / 60.0

// AbilitySpec describes one castable projectile ability.
type AbilitySpec struct {
	Name     string
	Speed    float64
	Damage   int32
	Range    float64       // 0 = unbounded
	Lifetime time.Duration // 0 = unbounded
	Cooldown time.Duration
	// MuzzleOffset is (side, up, forward) relative to the caster.
	MuzzleOffset vecmath.Vec3
}

// DefaultAbility is the basic projectile every class can cast.
func DefaultAbility() AbilitySpec {
	return AbilitySpec{
		Name:         "projectile",
		Speed:        20,
		Damage:       20,
		Range:        30,
		Lifetime:     5 * time.Second,
		Cooldown:     800 * time.Millisecond,
		MuzzleOffset: vecmath.Vec3{0, 1, 1},
	}
}

// RangeMode selects how the range bound of a projectile is measured.
type RangeMode string

const (
	// RangeByAge compares age × speed against the range.
	RangeByAge RangeMode = "age"
	// RangeByDistance compares the straight-line distance from the spawn point.
	RangeByDistance RangeMode = "distance"
)

// ParseRangeMode maps a config string onto a RangeMode. Empty means age.
func ParseRangeMode(s string) (RangeMode, bool) {
	switch RangeMode(s) {
	case "", RangeByAge:
		return RangeByAge, true
	case RangeByDistance:
		return RangeByDistance, true
	}
	return "", false
}

// DamageFunc resolves the damage a projectile deals to a target. Nil means
// the projectile's own Damage.
type DamageFunc func(proj *world.Projectile, target *world.Player) int32

// Params bundles everything one tick needs.
type Params struct {
	Movement  MovementParams
	Collision CollisionPolicy
	RangeMode RangeMode
	Damage    DamageFunc
}

func DefaultParams() Params {
	return Params{
		Movement:  DefaultMovement(),
		Collision: DefaultCylinder(),
		RangeMode: RangeByAge,
	}
}
