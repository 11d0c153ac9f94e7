package event

import "github.com/arenacore/server/internal/world"

// PlayerJoined is emitted after a successful register.
type PlayerJoined struct {
	Identity world.Identity
	Username string
	Restored bool
}

// PlayerArchived is emitted when a disconnect moves an active player to the archive.
type PlayerArchived struct {
	Identity world.Identity
}

// ProjectileSpawned is emitted after a successful cast.
type ProjectileSpawned struct {
	ID      uint64
	Owner   world.Identity
	Ability string
}

// ProjectileExpired is emitted when a projectile exceeds its range or lifetime.
type ProjectileExpired struct {
	ID uint64
}

// PlayerHit is emitted for every resolved projectile collision.
type PlayerHit struct {
	ProjectileID uint64
	Ability      string
	Attacker     world.Identity
	Target       world.Identity
	Damage       int32
	Health       int32
}
