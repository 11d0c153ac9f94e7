package sim

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound: the identity has no active (or archived, where relevant) record.
	ErrNotFound = errors.New("player not found")
	// ErrAlreadyActive: register called for an identity that is already in the world.
	ErrAlreadyActive = errors.New("player already active")
	// ErrOnCooldown: the ability was used less than its cooldown ago.
	ErrOnCooldown = errors.New("ability on cooldown")
	// ErrUnknownAbility: the ability name is not in the ability table.
	ErrUnknownAbility = errors.New("unknown ability")
	// ErrInvalidInput: a client-supplied angle or vector is NaN or infinite.
	ErrInvalidInput = errors.New("invalid input")
)

// CooldownError carries the remaining wait. errors.Is(err, ErrOnCooldown) holds.
type CooldownError struct {
	Ability   string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown for %s", e.Ability, e.Remaining)
}

func (e *CooldownError) Unwrap() error { return ErrOnCooldown }
