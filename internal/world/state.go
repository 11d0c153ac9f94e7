package world

import (
	"sort"
	"time"
)

// State is the whole authoritative world: active players, archived players,
// live projectiles and the tick schedule. It is not safe for concurrent use;
// go through Store.Do.
type State struct {
	players     map[Identity]*Player
	archived    map[Identity]*ArchivedPlayer
	projectiles map[uint64]*Projectile

	// NextProjectileID is the id the next spawned projectile receives.
	NextProjectileID uint64

	// Tick counts completed ticks. LastTickAt is the time of the last one.
	Tick       uint64
	LastTickAt time.Time

	Slots *SlotPool

	removeQueue []uint64

	// change journal, drained by the persistence flush
	deletedPlayers     map[Identity]struct{}
	touchedArchived    map[Identity]struct{}
	deletedArchived    map[Identity]struct{}
	projectilesChanged bool
}

func NewState() *State {
	return &State{
		players:          make(map[Identity]*Player, 64),
		archived:         make(map[Identity]*ArchivedPlayer, 64),
		projectiles:      make(map[uint64]*Projectile, 128),
		NextProjectileID: 1,
		Slots:            NewSlotPool(),
		removeQueue:      make([]uint64, 0, 32),
		deletedPlayers:   make(map[Identity]struct{}),
		touchedArchived:  make(map[Identity]struct{}),
		deletedArchived:  make(map[Identity]struct{}),
	}
}

// ---------- players ----------

func (s *State) Player(id Identity) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// AddPlayer inserts or replaces the active record.
func (s *State) AddPlayer(p *Player) {
	p.Dirty = true
	s.players[p.Identity] = p
	delete(s.deletedPlayers, p.Identity)
}

// RemovePlayer drops the active record, if any.
func (s *State) RemovePlayer(id Identity) (*Player, bool) {
	p, ok := s.players[id]
	if !ok {
		return nil, false
	}
	delete(s.players, id)
	s.deletedPlayers[id] = struct{}{}
	return p, true
}

func (s *State) PlayerCount() int { return len(s.players) }

// Players returns the active players in ascending identity order.
func (s *State) Players() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identity.Less(out[j].Identity) })
	return out
}

// ---------- archived ----------

func (s *State) Archived(id Identity) (*ArchivedPlayer, bool) {
	a, ok := s.archived[id]
	return a, ok
}

func (s *State) PutArchived(a *ArchivedPlayer) {
	s.archived[a.Identity] = a
	s.touchedArchived[a.Identity] = struct{}{}
	delete(s.deletedArchived, a.Identity)
}

func (s *State) RemoveArchived(id Identity) (*ArchivedPlayer, bool) {
	a, ok := s.archived[id]
	if !ok {
		return nil, false
	}
	delete(s.archived, id)
	delete(s.touchedArchived, id)
	s.deletedArchived[id] = struct{}{}
	return a, true
}

// RestoreArchived inserts a record loaded from storage without journaling it.
func (s *State) RestoreArchived(a *ArchivedPlayer) {
	s.archived[a.Identity] = a
}

// TouchArchived marks an archived record as modified in place.
func (s *State) TouchArchived(id Identity) {
	if _, ok := s.archived[id]; ok {
		s.touchedArchived[id] = struct{}{}
	}
}

func (s *State) ArchivedCount() int { return len(s.archived) }

// ---------- projectiles ----------

// AllocProjectileID returns a fresh, never reused projectile id.
func (s *State) AllocProjectileID() uint64 {
	id := s.NextProjectileID
	s.NextProjectileID++
	return id
}

func (s *State) AddProjectile(p *Projectile) {
	s.projectiles[p.ID] = p
	s.projectilesChanged = true
}

func (s *State) Projectile(id uint64) (*Projectile, bool) {
	p, ok := s.projectiles[id]
	return p, ok
}

func (s *State) ProjectileCount() int { return len(s.projectiles) }

// Projectiles returns the live projectiles in ascending id order.
func (s *State) Projectiles() []*Projectile {
	out := make([]*Projectile, 0, len(s.projectiles))
	for _, p := range s.projectiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MarkProjectilesChanged flags the projectile table for the next flush.
func (s *State) MarkProjectilesChanged() { s.projectilesChanged = true }

// QueueRemoval marks a projectile for removal at the end of the current pass.
// Queueing the same id twice is harmless.
func (s *State) QueueRemoval(id uint64) {
	s.removeQueue = append(s.removeQueue, id)
}

// FlushRemovals deletes every queued projectile and returns the ids that
// were actually removed.
func (s *State) FlushRemovals() []uint64 {
	if len(s.removeQueue) == 0 {
		return nil
	}
	removed := make([]uint64, 0, len(s.removeQueue))
	for _, id := range s.removeQueue {
		if _, ok := s.projectiles[id]; !ok {
			continue
		}
		delete(s.projectiles, id)
		removed = append(removed, id)
	}
	s.removeQueue = s.removeQueue[:0]
	if len(removed) > 0 {
		s.projectilesChanged = true
	}
	return removed
}

// ClearProjectiles drops every live projectile.
func (s *State) ClearProjectiles() int {
	n := len(s.projectiles)
	s.projectiles = make(map[uint64]*Projectile, 128)
	s.removeQueue = s.removeQueue[:0]
	s.projectilesChanged = true
	return n
}
