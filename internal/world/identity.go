package world

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Identity is the opaque key of one actor. It is stable for a given auth
// token, so a reconnecting client maps back onto the same records.
type Identity [32]byte

// IdentityFromToken derives an identity from a client auth token.
func IdentityFromToken(token string) Identity {
	return Identity(blake2b.Sum256([]byte(token)))
}

// NewToken returns a fresh random auth token for an anonymous client.
func NewToken() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ParseIdentity parses the hex form produced by String.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("parse identity: %w", err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("parse identity: want %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (id Identity) String() string { return hex.EncodeToString(id[:]) }

// Short returns the first 8 hex characters, for logs.
func (id Identity) Short() string { return hex.EncodeToString(id[:4]) }

func (id Identity) IsZero() bool { return id == Identity{} }

// Less orders identities bytewise. Sweeps iterate players in this order.
func (id Identity) Less(other Identity) bool {
	return bytes.Compare(id[:], other[:]) < 0
}
