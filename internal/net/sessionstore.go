package net

import (
	"sort"

	"github.com/arenacore/server/internal/world"
)

// SessionStore indexes live sessions by ID and by bound identity.
// Game loop only.
type SessionStore struct {
	byID       map[uint64]*Session
	byIdentity map[world.Identity]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		byID:       make(map[uint64]*Session),
		byIdentity: make(map[world.Identity]*Session),
	}
}

func (s *SessionStore) Add(sess *Session) {
	s.byID[sess.ID] = sess
}

// Remove drops the session and its identity binding, if it still owns it.
func (s *SessionStore) Remove(id uint64) {
	sess, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	if !sess.Identity.IsZero() && s.byIdentity[sess.Identity] == sess {
		delete(s.byIdentity, sess.Identity)
	}
}

func (s *SessionStore) Get(id uint64) *Session {
	return s.byID[id]
}

// ByIdentity returns the session bound to id, or nil.
func (s *SessionStore) ByIdentity(id world.Identity) *Session {
	return s.byIdentity[id]
}

// Bind attaches an identity to a session. It fails when another live
// session already holds the identity.
func (s *SessionStore) Bind(sess *Session, id world.Identity) bool {
	if cur, ok := s.byIdentity[id]; ok && cur != sess && !cur.IsClosed() {
		return false
	}
	sess.Identity = id
	s.byIdentity[id] = sess
	return true
}

// Raw exposes the ID map for loops that remove while iterating.
func (s *SessionStore) Raw() map[uint64]*Session {
	return s.byID
}

// ForEach visits sessions in ascending ID order.
func (s *SessionStore) ForEach(fn func(*Session)) {
	ids := make([]uint64, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fn(s.byID[id])
	}
}

func (s *SessionStore) Count() int { return len(s.byID) }
