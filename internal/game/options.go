package game

import (
	"fmt"

	"github.com/arenacore/server/internal/config"
	"github.com/arenacore/server/internal/sim"
	"github.com/arenacore/server/internal/vecmath"
)

// OptionsFromConfig maps the tuning sections of cfg onto service options.
// Tables, script and bus are left for the caller to attach.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	mode, ok := sim.ParseRangeMode(cfg.Projectile.RangeMode)
	if !ok {
		return Options{}, fmt.Errorf("unknown range mode %q", cfg.Projectile.RangeMode)
	}
	policy, ok := sim.ParseSpawnPolicy(cfg.Spawn.Policy)
	if !ok {
		return Options{}, fmt.Errorf("unknown spawn policy %q", cfg.Spawn.Policy)
	}

	mv, pc, col := cfg.Movement, cfg.Projectile, cfg.Collision
	return Options{
		Params: sim.Params{
			Movement: sim.MovementParams{
				BaseSpeed:        mv.BaseSpeed,
				SprintMultiplier: mv.SprintMultiplier,
				Gravity:          mv.Gravity,
				JumpImpulse:      mv.JumpImpulse,
				JumpTolerance:    mv.JumpTolerance,
			},
			Collision: sim.CylinderPolicy{
				PlayerRadius:     col.PlayerRadius,
				PlayerHeight:     col.PlayerHeight,
				ProjectileRadius: col.ProjectileRadius,
			},
			RangeMode: mode,
		},
		Lifecycle: sim.LifecycleParams{
			Spawn: sim.SpawnPlacement{
				Policy:    policy,
				Palette:   cfg.Spawn.Palette,
				Spacing:   cfg.Spawn.Spacing,
				Centering: cfg.Spawn.Centering,
				Height:    cfg.Spawn.Height,
			},
		},
		Fallback: sim.AbilitySpec{
			Name:         sim.DefaultAbility().Name,
			Speed:        pc.Speed,
			Damage:       pc.Damage,
			Range:        pc.Range,
			Lifetime:     pc.Lifetime,
			Cooldown:     pc.Cooldown,
			MuzzleOffset: vecmath.Vec3(pc.MuzzleOffset),
		},
		TickRate: cfg.Network.TickRate,
	}, nil
}

// WithSchedule makes the service integrate with the interval the game loop
// actually ticks at.
func (o Options) WithSchedule(sc Schedule) Options {
	if sc.Interval > 0 {
		o.TickRate = sc.Interval
	}
	return o
}
