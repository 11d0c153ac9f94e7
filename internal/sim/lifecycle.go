package sim

import (
	"time"

	"github.com/arenacore/server/internal/world"
)

// ClassStats are the starting pools of a character class.
type ClassStats struct {
	MaxHealth int32
	MaxMana   int32
}

// DefaultClassStats apply to any class missing from the class table.
var DefaultClassStats = ClassStats{MaxHealth: 100, MaxMana: 100}

// LifecycleParams configures join placement and class defaults.
type LifecycleParams struct {
	Spawn   SpawnPlacement
	Classes map[string]ClassStats
}

func (lp LifecycleParams) classStats(class string) ClassStats {
	if cs, ok := lp.Classes[class]; ok {
		return cs
	}
	return DefaultClassStats
}

// Register brings id into the world. An archived record is restored (its
// username, class, rotation and pools win over the arguments); otherwise a
// fresh player is created. restored tells which path was taken.
func Register(ws *world.State, id world.Identity, username, class string, lp LifecycleParams, now time.Time) (p *world.Player, restored bool, err error) {
	if _, ok := ws.Player(id); ok {
		return nil, false, ErrAlreadyActive
	}

	slot, pos, color := lp.Spawn.Place(ws)
	p = &world.Player{
		Identity:         id,
		Username:         username,
		Class:            class,
		Color:            color,
		Position:         pos,
		CurrentAnimation: world.AnimIdle,
		SpawnSlot:        slot,
		LastAction:       make(map[string]time.Time, 4),
	}

	if a, ok := ws.Archived(id); ok {
		p.Username = a.Username
		p.Class = a.Class
		p.Rotation = a.Rotation
		p.Health, p.MaxHealth = a.Health, a.MaxHealth
		p.Mana, p.MaxMana = a.Mana, a.MaxMana
		ws.RemoveArchived(id)
		restored = true
	} else {
		cs := lp.classStats(class)
		p.Health, p.MaxHealth = cs.MaxHealth, cs.MaxHealth
		p.Mana, p.MaxMana = cs.MaxMana, cs.MaxMana
	}

	ws.AddPlayer(p)
	return p, restored, nil
}

// Disconnect archives the active record of id. An identity that is only
// archived gets its LastSeen refreshed. archived reports whether an active
// record was moved.
func Disconnect(ws *world.State, id world.Identity, lp LifecycleParams, now time.Time) (archived bool, err error) {
	if p, ok := ws.RemovePlayer(id); ok {
		ws.PutArchived(p.Archive(now))
		lp.Spawn.Release(ws, p.SpawnSlot)
		return true, nil
	}
	if a, ok := ws.Archived(id); ok {
		a.LastSeen = now
		ws.TouchArchived(id)
		return false, nil
	}
	return false, ErrNotFound
}
