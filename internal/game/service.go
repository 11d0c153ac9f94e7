package game

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/arenacore/server/internal/core/event"
	"github.com/arenacore/server/internal/data"
	"github.com/arenacore/server/internal/scripting"
	"github.com/arenacore/server/internal/sim"
	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// DamageScript resolves hit damage. *scripting.Engine satisfies it.
type DamageScript interface {
	CalcAbilityDamage(ctx scripting.AbilityDamageContext) int
}

// Options wires a Service.
type Options struct {
	Params    sim.Params
	Lifecycle sim.LifecycleParams
	// Fallback is cast when no ability table entry matches.
	Fallback  sim.AbilitySpec
	Abilities *data.AbilityTable
	Classes   *data.ClassTable
	Script    DamageScript // optional
	Bus       *event.Bus   // optional
	// TickRate is the fixed step every tick integrates with.
	TickRate time.Duration
}

// Service is the entry point for every world operation. Each call runs as
// one transaction on the store.
type Service struct {
	store     *world.Store
	bus       *event.Bus
	params    sim.Params
	life      sim.LifecycleParams
	fallback  sim.AbilitySpec
	abilities *data.AbilityTable
	classes   *data.ClassTable
	script    DamageScript
	tick      time.Duration
	dt        float64
	log       *zap.Logger
}

func NewService(store *world.Store, opt Options, log *zap.Logger) *Service {
	if opt.TickRate <= 0 {
		opt.TickRate = 50 * time.Millisecond
	}
	if opt.Params.Collision == nil {
		opt.Params.Collision = sim.DefaultCylinder()
	}
	if opt.Fallback.Name == "" {
		opt.Fallback = sim.DefaultAbility()
	}
	if opt.Lifecycle.Classes == nil && opt.Classes != nil {
		opt.Lifecycle.Classes = ClassStats(opt.Classes)
	}
	return &Service{
		store:     store,
		bus:       opt.Bus,
		params:    opt.Params,
		life:      opt.Lifecycle,
		fallback:  opt.Fallback,
		abilities: opt.Abilities,
		classes:   opt.Classes,
		script:    opt.Script,
		tick:      opt.TickRate,
		dt:        opt.TickRate.Seconds(),
		log:       log,
	}
}

func (s *Service) do(ctx context.Context, fn func(*world.State) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Do(fn)
}

// CleanName folds full-width forms, composes to NFC and trims spaces.
func CleanName(name string) string {
	return strings.TrimSpace(width.Fold.String(norm.NFC.String(name)))
}

// Register brings id into the world, restoring an archived record when one
// exists. A second register for an active identity is a logged no-op that
// returns sim.ErrAlreadyActive.
func (s *Service) Register(ctx context.Context, id world.Identity, username, class string) error {
	username, class = CleanName(username), CleanName(class)
	now := time.Now()
	var restored bool
	err := s.do(ctx, func(ws *world.State) error {
		p, r, err := sim.Register(ws, id, username, class, s.life, now)
		if err != nil {
			return err
		}
		username, class, restored = p.Username, p.Class, r
		return nil
	})
	if errors.Is(err, sim.ErrAlreadyActive) {
		s.log.Warn("player already active", zap.String("identity", id.String()))
		return err
	}
	if err != nil {
		return err
	}
	s.log.Info("player registered",
		zap.String("identity", id.String()),
		zap.String("username", username),
		zap.String("class", class),
		zap.Bool("restored", restored),
	)
	emit(s.bus, event.PlayerJoined{Identity: id, Username: username, Restored: restored})
	return nil
}

// OnConnect is invoked when a session binds to id. Registration happens
// separately, on the client's request.
func (s *Service) OnConnect(ctx context.Context, id world.Identity) {
	s.log.Info("client connected", zap.String("identity", id.String()))
}

// OnDisconnect archives the active record of id.
func (s *Service) OnDisconnect(ctx context.Context, id world.Identity, now time.Time) error {
	var archived bool
	err := s.do(ctx, func(ws *world.State) error {
		var err error
		archived, err = sim.Disconnect(ws, id, s.life, now)
		return err
	})
	switch {
	case errors.Is(err, sim.ErrNotFound):
		s.log.Warn("disconnect for unknown identity", zap.String("identity", id.String()))
		return err
	case err != nil:
		return err
	}
	if archived {
		s.log.Info("player archived", zap.String("identity", id.String()))
		emit(s.bus, event.PlayerArchived{Identity: id})
	} else {
		s.log.Warn("disconnect for archived player, last seen refreshed", zap.String("identity", id.String()))
	}
	return nil
}

// SubmitInput stores the latest input and advances the player one input step.
func (s *Service) SubmitInput(ctx context.Context, id world.Identity, in world.InputState, yaw float64, animation string) error {
	if math.IsNaN(yaw) || math.IsInf(yaw, 0) {
		s.log.Warn("non-finite yaw rejected", zap.String("identity", id.String()))
		return sim.ErrInvalidInput
	}
	err := s.do(ctx, func(ws *world.State) error {
		p, ok := ws.Player(id)
		if !ok {
			return sim.ErrNotFound
		}
		sim.ApplyInput(p, in, yaw, animation, s.params.Movement)
		return nil
	})
	if errors.Is(err, sim.ErrNotFound) {
		s.log.Warn("input from inactive player", zap.String("identity", id.String()))
	}
	return err
}

// CastParams selects the ability and an optional aim direction. An empty
// Ability casts the caster's class ability.
type CastParams struct {
	Ability string
	Aim     *vecmath.Vec3
}

// CastAbility fires a projectile for id.
func (s *Service) CastAbility(ctx context.Context, id world.Identity, cp CastParams) (world.Projectile, error) {
	if cp.Aim != nil && !finite(*cp.Aim) {
		s.log.Warn("non-finite aim rejected", zap.String("identity", id.String()))
		return world.Projectile{}, sim.ErrInvalidInput
	}
	now := time.Now()
	var proj world.Projectile
	err := s.do(ctx, func(ws *world.State) error {
		p, ok := ws.Player(id)
		if !ok {
			return sim.ErrNotFound
		}
		spec, err := s.resolveAbility(cp.Ability, p.Class)
		if err != nil {
			return err
		}
		proj, err = sim.Cast(ws, id, spec, cp.Aim, now)
		return err
	})
	if err != nil {
		var cd *sim.CooldownError
		switch {
		case errors.As(err, &cd):
			s.log.Debug("ability on cooldown",
				zap.String("identity", id.String()),
				zap.String("ability", cd.Ability),
				zap.Duration("remaining", cd.Remaining),
			)
		case errors.Is(err, sim.ErrNotFound):
			s.log.Warn("cast from inactive player", zap.String("identity", id.String()))
		case errors.Is(err, sim.ErrUnknownAbility):
			s.log.Warn("unknown ability", zap.String("identity", id.String()), zap.String("ability", cp.Ability))
		}
		return world.Projectile{}, err
	}
	emit(s.bus, event.ProjectileSpawned{ID: proj.ID, Owner: id, Ability: proj.Ability})
	return proj, nil
}

func finite(v vecmath.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func (s *Service) resolveAbility(name, class string) (sim.AbilitySpec, error) {
	if name == "" {
		if c := s.classes.Get(class); c != nil && c.Ability != "" {
			name = c.Ability
		} else {
			return s.fallback, nil
		}
	}
	if a := s.abilities.Get(name); a != nil {
		return AbilitySpec(a), nil
	}
	if name == s.fallback.Name {
		return s.fallback, nil
	}
	return sim.AbilitySpec{}, sim.ErrUnknownAbility
}

// Tick advances the world to now. A now that is not after the previous tick
// is skipped and reported with ok=false.
func (s *Service) Tick(ctx context.Context, now time.Time) (rep sim.Report, ok bool) {
	err := s.do(ctx, func(ws *world.State) error {
		if !ws.LastTickAt.IsZero() && !now.After(ws.LastTickAt) {
			return nil
		}
		prm := s.params
		if s.script != nil {
			prm.Damage = s.scriptDamage(ws)
		}
		rep = sim.Tick(ws, now, s.dt, prm)
		ok = true
		return nil
	})
	if err != nil {
		return sim.Report{}, false
	}
	if !ok {
		s.log.Debug("tick skipped, time did not advance", zap.Time("now", now))
		return rep, false
	}
	for _, id := range rep.Expired {
		emit(s.bus, event.ProjectileExpired{ID: id})
	}
	for _, h := range rep.Hits {
		emit(s.bus, event.PlayerHit{
			ProjectileID: h.ProjectileID,
			Ability:      h.Ability,
			Attacker:     h.Attacker,
			Target:       h.Target,
			Damage:       h.Damage,
			Health:       h.Health,
		})
	}
	return rep, true
}

func (s *Service) scriptDamage(ws *world.State) sim.DamageFunc {
	return func(proj *world.Projectile, target *world.Player) int32 {
		ctx := scripting.AbilityDamageContext{
			Ability:         proj.Ability,
			BaseDamage:      int(proj.Damage),
			Distance:        proj.Position.Sub(proj.SpawnPosition).Len(),
			TargetHealth:    int(target.Health),
			TargetMaxHealth: int(target.MaxHealth),
			TargetClass:     target.Class,
		}
		if owner, ok := ws.Player(proj.Owner); ok {
			ctx.AttackerHealth = int(owner.Health)
		}
		return int32(s.script.CalcAbilityDamage(ctx))
	}
}

// DrainChanges returns everything modified since the previous drain.
func (s *Service) DrainChanges() world.Changes {
	var c world.Changes
	s.store.Do(func(ws *world.State) error {
		c = ws.DrainChanges()
		return nil
	})
	return c
}

// SnapshotAll returns every record regardless of the journal.
func (s *Service) SnapshotAll() world.Changes {
	var c world.Changes
	s.store.Do(func(ws *world.State) error {
		c = ws.SnapshotAll()
		return nil
	})
	return c
}

// TickInterval is the fixed step every tick integrates with.
func (s *Service) TickInterval() time.Duration { return s.tick }

// Stats reports the current population.
type Stats struct {
	Tick        uint64
	Players     int
	Archived    int
	Projectiles int
}

func (s *Service) Stats() Stats {
	var st Stats
	s.store.Do(func(ws *world.State) error {
		st = Stats{
			Tick:        ws.Tick,
			Players:     ws.PlayerCount(),
			Archived:    ws.ArchivedCount(),
			Projectiles: ws.ProjectileCount(),
		}
		return nil
	})
	return st
}

func emit[T any](b *event.Bus, ev T) {
	if b != nil {
		event.Emit(b, ev)
	}
}

// AbilitySpec converts a table entry.
func AbilitySpec(a *data.AbilityInfo) sim.AbilitySpec {
	return sim.AbilitySpec{
		Name:         a.Name,
		Speed:        a.Speed,
		Damage:       a.Damage,
		Range:        a.Range,
		Lifetime:     a.Lifetime,
		Cooldown:     a.Cooldown,
		MuzzleOffset: vecmath.Vec3(a.MuzzleOffset),
	}
}

// ClassStats converts the class table into lifecycle defaults.
func ClassStats(t *data.ClassTable) map[string]sim.ClassStats {
	out := make(map[string]sim.ClassStats, t.Count())
	t.Each(func(c *data.ClassInfo) {
		out[c.Name] = sim.ClassStats{MaxHealth: c.MaxHealth, MaxMana: c.MaxMana}
	})
	return out
}
