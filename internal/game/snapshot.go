package game

import (
	"fmt"

	"github.com/arenacore/server/internal/world"
	"github.com/vmihailenco/msgpack/v5"
)

// PlayerView is the public part of an active player.
type PlayerView struct {
	Identity     string     `msgpack:"id"`
	Username     string     `msgpack:"name"`
	Class        string     `msgpack:"class"`
	Color        string     `msgpack:"color"`
	Position     [3]float64 `msgpack:"pos"`
	Rotation     [3]float64 `msgpack:"rot"`
	Health       int32      `msgpack:"hp"`
	MaxHealth    int32      `msgpack:"max_hp"`
	Mana         int32      `msgpack:"mp"`
	MaxMana      int32      `msgpack:"max_mp"`
	Animation    string     `msgpack:"anim"`
	IsMoving     bool       `msgpack:"moving"`
	IsRunning    bool       `msgpack:"running"`
	IsAttacking  bool       `msgpack:"attacking"`
	IsCasting    bool       `msgpack:"casting"`
	IsHit        bool       `msgpack:"hit"`
	LastInputSeq uint32     `msgpack:"seq"`
}

// ProjectileView is the public part of a live projectile.
type ProjectileView struct {
	ID          uint64     `msgpack:"id"`
	Owner       string     `msgpack:"owner"`
	Ability     string     `msgpack:"ability"`
	Position    [3]float64 `msgpack:"pos"`
	Velocity    [3]float64 `msgpack:"vel"`
	Orientation [4]float64 `msgpack:"rot"` // w, x, y, z
}

// Snapshot is the world as broadcast after a tick.
type Snapshot struct {
	Tick        uint64           `msgpack:"tick"`
	Players     []PlayerView     `msgpack:"players"`
	Projectiles []ProjectileView `msgpack:"projectiles"`
}

// Snapshot captures the current world.
func (s *Service) Snapshot() Snapshot {
	var snap Snapshot
	s.store.Do(func(ws *world.State) error {
		snap = buildSnapshot(ws)
		return nil
	})
	return snap
}

func buildSnapshot(ws *world.State) Snapshot {
	players := ws.Players()
	projectiles := ws.Projectiles()
	snap := Snapshot{
		Tick:        ws.Tick,
		Players:     make([]PlayerView, 0, len(players)),
		Projectiles: make([]ProjectileView, 0, len(projectiles)),
	}
	for _, p := range players {
		snap.Players = append(snap.Players, PlayerView{
			Identity:     p.Identity.String(),
			Username:     p.Username,
			Class:        p.Class,
			Color:        p.Color,
			Position:     p.Position,
			Rotation:     p.Rotation,
			Health:       p.Health,
			MaxHealth:    p.MaxHealth,
			Mana:         p.Mana,
			MaxMana:      p.MaxMana,
			Animation:    p.CurrentAnimation,
			IsMoving:     p.IsMoving,
			IsRunning:    p.IsRunning,
			IsAttacking:  p.IsAttacking,
			IsCasting:    p.IsCasting,
			IsHit:        p.IsHit,
			LastInputSeq: p.LastInputSeq,
		})
	}
	for _, pr := range projectiles {
		o := pr.Orientation
		snap.Projectiles = append(snap.Projectiles, ProjectileView{
			ID:          pr.ID,
			Owner:       pr.Owner.String(),
			Ability:     pr.Ability,
			Position:    pr.Position,
			Velocity:    pr.Velocity,
			Orientation: [4]float64{o.W, o.V[0], o.V[1], o.V[2]},
		})
	}
	return snap
}

// Encode serializes the snapshot as msgpack.
func (snap Snapshot) Encode() ([]byte, error) {
	b, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

// DecodeSnapshot is the inverse of Encode.
func DecodeSnapshot(b []byte) (Snapshot, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(b, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
