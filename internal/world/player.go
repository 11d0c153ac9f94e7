package world

import (
	"time"

	"github.com/arenacore/server/internal/vecmath"
)

// Animation names the server sets on its own. Everything else is a client hint.
const (
	AnimIdle   = "idle"
	AnimDamage = "damage"
)

// InputState is the last input snapshot received from a client.
type InputState struct {
	Forward   bool   `msgpack:"f"`
	Backward  bool   `msgpack:"b"`
	Left      bool   `msgpack:"l"`
	Right     bool   `msgpack:"r"`
	Sprint    bool   `msgpack:"s"`
	Jump      bool   `msgpack:"j"`
	Attack    bool   `msgpack:"a"`
	CastSpell bool   `msgpack:"c"`
	Sequence  uint32 `msgpack:"q"`
}

// HasMovement reports whether any directional flag is held.
func (in InputState) HasMovement() bool {
	return in.Forward || in.Backward || in.Left || in.Right
}

// Input flag bits as sent on the wire.
const (
	InputForward byte = 1 << iota
	InputBackward
	InputLeft
	InputRight
	InputSprint
	InputJump
	InputAttack
	InputCastSpell
)

// InputFromFlags unpacks a wire flag byte.
func InputFromFlags(flags byte, seq uint32) InputState {
	return InputState{
		Forward:   flags&InputForward != 0,
		Backward:  flags&InputBackward != 0,
		Left:      flags&InputLeft != 0,
		Right:     flags&InputRight != 0,
		Sprint:    flags&InputSprint != 0,
		Jump:      flags&InputJump != 0,
		Attack:    flags&InputAttack != 0,
		CastSpell: flags&InputCastSpell != 0,
		Sequence:  seq,
	}
}

// Flags packs the input back into a wire flag byte.
func (in InputState) Flags() byte {
	var f byte
	set := func(on bool, bit byte) {
		if on {
			f |= bit
		}
	}
	set(in.Forward, InputForward)
	set(in.Backward, InputBackward)
	set(in.Left, InputLeft)
	set(in.Right, InputRight)
	set(in.Sprint, InputSprint)
	set(in.Jump, InputJump)
	set(in.Attack, InputAttack)
	set(in.CastSpell, InputCastSpell)
	return f
}

// Player is the authoritative record of one connected identity.
// Owned by State; only mutated inside Store.Do.
type Player struct {
	Identity Identity
	Username string
	Class    string
	Color    string

	Position         vecmath.Vec3
	Rotation         vecmath.Vec3 // Rotation.Y is yaw
	VerticalVelocity float64

	Health    int32
	MaxHealth int32
	Mana      int32
	MaxMana   int32

	Input        InputState
	LastInputSeq uint32

	CurrentAnimation string
	IsMoving         bool
	IsRunning        bool
	IsAttacking      bool
	IsCasting        bool // one-tick flag
	IsHit            bool // one-tick flag
	// CastTick and HitTick hold the tick each flag was raised in. A flag
	// is cleared by the first tick past its own.
	CastTick         uint64
	HitTick          uint64

	// LastAction holds the last successful use per cooldown-gated ability.
	LastAction map[string]time.Time

	SpawnSlot int

	// Dirty marks the record for the next persistence flush.
	Dirty bool
}

// Yaw returns the stored yaw in radians.
func (p *Player) Yaw() float64 { return p.Rotation[1] }

// Grounded reports whether the player stands on the ground plane.
func (p *Player) Grounded() bool { return p.Position[1] <= 0 }

// Clone returns a deep copy.
func (p *Player) Clone() *Player {
	c := *p
	if p.LastAction != nil {
		c.LastAction = make(map[string]time.Time, len(p.LastAction))
		for k, v := range p.LastAction {
			c.LastAction[k] = v
		}
	}
	return &c
}

// Archive copies the persistent fields into an archived record.
func (p *Player) Archive(now time.Time) *ArchivedPlayer {
	return &ArchivedPlayer{
		Identity:  p.Identity,
		Username:  p.Username,
		Class:     p.Class,
		Position:  p.Position,
		Rotation:  p.Rotation,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Mana:      p.Mana,
		MaxMana:   p.MaxMana,
		LastSeen:  now,
	}
}

// ArchivedPlayer is the persisted snapshot of a disconnected player.
type ArchivedPlayer struct {
	Identity  Identity
	Username  string
	Class     string
	Position  vecmath.Vec3
	Rotation  vecmath.Vec3
	Health    int32
	MaxHealth int32
	Mana      int32
	MaxMana   int32
	LastSeen  time.Time
}
