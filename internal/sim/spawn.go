package sim

import (
	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

// SpawnPolicy selects how the spawn index of a joining player is chosen.
type SpawnPolicy string

const (
	// SpawnByPopulation uses the number of active players before the join.
	// Two players may end up on the same spot after a disconnect.
	SpawnByPopulation SpawnPolicy = "population"
	// SpawnBySlot draws from a free-list pool, released on disconnect, so
	// live players never share a spot.
	SpawnBySlot SpawnPolicy = "slots"
)

// ParseSpawnPolicy maps a config string onto a SpawnPolicy. Empty means population.
func ParseSpawnPolicy(s string) (SpawnPolicy, bool) {
	switch SpawnPolicy(s) {
	case "", SpawnByPopulation:
		return SpawnByPopulation, true
	case SpawnBySlot:
		return SpawnBySlot, true
	}
	return "", false
}

// SpawnPlacement lays joining players out on a line along X.
type SpawnPlacement struct {
	Policy    SpawnPolicy
	Palette   []string
	Spacing   float64
	Centering float64
	Height    float64
}

func DefaultSpawn() SpawnPlacement {
	return SpawnPlacement{
		Policy:    SpawnByPopulation,
		Palette:   []string{"cyan", "magenta", "yellow", "lightgreen", "white", "orange"},
		Spacing:   5,
		Centering: 2.5,
		Height:    1,
	}
}

// Place picks the spawn index for a player about to join ws, and derives the
// spawn position and color from it. Call before inserting the player.
func (sp SpawnPlacement) Place(ws *world.State) (index int, pos vecmath.Vec3, color string) {
	if sp.Policy == SpawnBySlot {
		index = ws.Slots.Acquire()
	} else {
		index = ws.PlayerCount()
	}
	pos = vecmath.Vec3{float64(index)*sp.Spacing - sp.Centering, sp.Height, 0}
	color = "white"
	if len(sp.Palette) > 0 {
		color = sp.Palette[index%len(sp.Palette)]
	}
	return index, pos, color
}

// Release gives back the spawn index of a leaving player.
func (sp SpawnPlacement) Release(ws *world.State, index int) {
	if sp.Policy == SpawnBySlot {
		ws.Slots.Release(index)
	}
}
