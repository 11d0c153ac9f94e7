package persist

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/arenacore/server/internal/vecmath"
	"github.com/arenacore/server/internal/world"
)

// PlayerRow mirrors one row of the players table.
type PlayerRow struct {
	Identity         []byte
	Username         string
	Class            string
	Color            string
	Position         []float64
	Rotation         []float64
	VerticalVelocity float64
	Health           int32
	MaxHealth        int32
	Mana             int32
	MaxMana          int32
	LastInputSeq     int64
	CurrentAnimation string
	LastAction       []byte // JSON object: ability -> unix milliseconds
	SpawnSlot        int32
	UpdatedAt        time.Time
}

// ArchivedRow mirrors one row of the archived_players table.
type ArchivedRow struct {
	Identity  []byte
	Username  string
	Class     string
	Position  []float64
	Rotation  []float64
	Health    int32
	MaxHealth int32
	Mana      int32
	MaxMana   int32
	LastSeen  time.Time
}

// ProjectileRow mirrors one row of the projectiles table.
type ProjectileRow struct {
	ID            int64
	Owner         []byte
	Ability       string
	Position      []float64
	Velocity      []float64
	Orientation   []float64 // w, x, y, z
	SpawnPosition []float64
	SpawnTime     time.Time
	Speed         float64
	Damage        int32
	MaxRange      float64
	MaxLifetimeMs int64
}

func vecToArray(v vecmath.Vec3) []float64 { return []float64{v[0], v[1], v[2]} }

func arrayToVec(a []float64) (vecmath.Vec3, error) {
	var v vecmath.Vec3
	if len(a) != 3 {
		return v, fmt.Errorf("want 3 components, got %d", len(a))
	}
	copy(v[:], a)
	return v, nil
}

func identityFromBytes(b []byte) (world.Identity, error) {
	var id world.Identity
	if len(b) != len(id) {
		return id, fmt.Errorf("identity: want %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// PlayerToRow converts an active player for storage.
func PlayerToRow(p *world.Player) (PlayerRow, error) {
	la := make(map[string]int64, len(p.LastAction))
	for k, v := range p.LastAction {
		la[k] = v.UnixMilli()
	}
	raw, err := json.Marshal(la)
	if err != nil {
		return PlayerRow{}, fmt.Errorf("marshal last_action: %w", err)
	}
	return PlayerRow{
		Identity:         append([]byte(nil), p.Identity[:]...),
		Username:         p.Username,
		Class:            p.Class,
		Color:            p.Color,
		Position:         vecToArray(p.Position),
		Rotation:         vecToArray(p.Rotation),
		VerticalVelocity: p.VerticalVelocity,
		Health:           p.Health,
		MaxHealth:        p.MaxHealth,
		Mana:             p.Mana,
		MaxMana:          p.MaxMana,
		LastInputSeq:     int64(p.LastInputSeq),
		CurrentAnimation: p.CurrentAnimation,
		LastAction:       raw,
		SpawnSlot:        int32(p.SpawnSlot),
	}, nil
}

// ToArchived turns a leftover active row into an archived record. Active
// rows only survive a restart when the server stopped without archiving.
func (r PlayerRow) ToArchived() (*world.ArchivedPlayer, error) {
	id, err := identityFromBytes(r.Identity)
	if err != nil {
		return nil, err
	}
	pos, err := arrayToVec(r.Position)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	rot, err := arrayToVec(r.Rotation)
	if err != nil {
		return nil, fmt.Errorf("rotation: %w", err)
	}
	return &world.ArchivedPlayer{
		Identity:  id,
		Username:  r.Username,
		Class:     r.Class,
		Position:  pos,
		Rotation:  rot,
		Health:    r.Health,
		MaxHealth: r.MaxHealth,
		Mana:      r.Mana,
		MaxMana:   r.MaxMana,
		LastSeen:  r.UpdatedAt,
	}, nil
}

// LastActionTimes decodes the last_action column.
func (r PlayerRow) LastActionTimes() (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	if len(r.LastAction) == 0 {
		return out, nil
	}
	var la map[string]int64
	if err := json.Unmarshal(r.LastAction, &la); err != nil {
		return nil, fmt.Errorf("unmarshal last_action: %w", err)
	}
	for k, ms := range la {
		out[k] = time.UnixMilli(ms)
	}
	return out, nil
}

func ArchivedToRow(a *world.ArchivedPlayer) ArchivedRow {
	return ArchivedRow{
		Identity:  append([]byte(nil), a.Identity[:]...),
		Username:  a.Username,
		Class:     a.Class,
		Position:  vecToArray(a.Position),
		Rotation:  vecToArray(a.Rotation),
		Health:    a.Health,
		MaxHealth: a.MaxHealth,
		Mana:      a.Mana,
		MaxMana:   a.MaxMana,
		LastSeen:  a.LastSeen,
	}
}

func (r ArchivedRow) ToWorld() (*world.ArchivedPlayer, error) {
	id, err := identityFromBytes(r.Identity)
	if err != nil {
		return nil, err
	}
	pos, err := arrayToVec(r.Position)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	rot, err := arrayToVec(r.Rotation)
	if err != nil {
		return nil, fmt.Errorf("rotation: %w", err)
	}
	return &world.ArchivedPlayer{
		Identity:  id,
		Username:  r.Username,
		Class:     r.Class,
		Position:  pos,
		Rotation:  rot,
		Health:    r.Health,
		MaxHealth: r.MaxHealth,
		Mana:      r.Mana,
		MaxMana:   r.MaxMana,
		LastSeen:  r.LastSeen,
	}, nil
}

func ProjectileToRow(p *world.Projectile) ProjectileRow {
	return ProjectileRow{
		ID:            int64(p.ID),
		Owner:         append([]byte(nil), p.Owner[:]...),
		Ability:       p.Ability,
		Position:      vecToArray(p.Position),
		Velocity:      vecToArray(p.Velocity),
		Orientation:   []float64{p.Orientation.W, p.Orientation.V[0], p.Orientation.V[1], p.Orientation.V[2]},
		SpawnPosition: vecToArray(p.SpawnPosition),
		SpawnTime:     p.SpawnTime,
		Speed:         p.Speed,
		Damage:        p.Damage,
		MaxRange:      p.MaxRange,
		MaxLifetimeMs: p.MaxLifetime.Milliseconds(),
	}
}

func (r ProjectileRow) ToWorld() (*world.Projectile, error) {
	owner, err := identityFromBytes(r.Owner)
	if err != nil {
		return nil, err
	}
	pos, err := arrayToVec(r.Position)
	if err != nil {
		return nil, fmt.Errorf("position: %w", err)
	}
	vel, err := arrayToVec(r.Velocity)
	if err != nil {
		return nil, fmt.Errorf("velocity: %w", err)
	}
	spawn, err := arrayToVec(r.SpawnPosition)
	if err != nil {
		return nil, fmt.Errorf("spawn_position: %w", err)
	}
	if len(r.Orientation) != 4 {
		return nil, fmt.Errorf("orientation: want 4 components, got %d", len(r.Orientation))
	}
	return &world.Projectile{
		ID:            uint64(r.ID),
		Owner:         owner,
		Ability:       r.Ability,
		Position:      pos,
		Velocity:      vel,
		Orientation:   vecmath.Quat{W: r.Orientation[0], V: vecmath.Vec3{r.Orientation[1], r.Orientation[2], r.Orientation[3]}},
		SpawnPosition: spawn,
		SpawnTime:     r.SpawnTime,
		Speed:         r.Speed,
		Damage:        r.Damage,
		MaxRange:      r.MaxRange,
		MaxLifetime:   time.Duration(r.MaxLifetimeMs) * time.Millisecond,
	}, nil
}
