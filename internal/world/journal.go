package world

import "sort"

// Changes is the set of records modified since the last drain. Every record
// is a copy, so it may be written to storage without holding the world lock.
type Changes struct {
	UpsertPlayers  []*Player
	DeletePlayers  []Identity
	UpsertArchived []*ArchivedPlayer
	DeleteArchived []Identity

	// Projectiles is the complete live set when ProjectilesChanged is true.
	ProjectilesChanged bool
	Projectiles        []*Projectile
}

func (c *Changes) Empty() bool {
	return len(c.UpsertPlayers) == 0 && len(c.DeletePlayers) == 0 &&
		len(c.UpsertArchived) == 0 && len(c.DeleteArchived) == 0 &&
		!c.ProjectilesChanged
}

// DrainChanges collects and resets the change journal.
func (s *State) DrainChanges() Changes {
	var c Changes
	for _, p := range s.Players() {
		if !p.Dirty {
			continue
		}
		p.Dirty = false
		c.UpsertPlayers = append(c.UpsertPlayers, p.Clone())
	}
	c.DeletePlayers = sortedIDs(s.deletedPlayers)
	for _, id := range sortedIDs(s.touchedArchived) {
		a := *s.archived[id]
		c.UpsertArchived = append(c.UpsertArchived, &a)
	}
	c.DeleteArchived = sortedIDs(s.deletedArchived)
	if s.projectilesChanged {
		c.ProjectilesChanged = true
		c.Projectiles = cloneProjectiles(s.Projectiles())
	}

	clear(s.deletedPlayers)
	clear(s.touchedArchived)
	clear(s.deletedArchived)
	s.projectilesChanged = false
	return c
}

// SnapshotAll returns every record regardless of the journal, and resets it.
// Used for the final save at shutdown.
func (s *State) SnapshotAll() Changes {
	c := s.DrainChanges()
	c.UpsertPlayers = c.UpsertPlayers[:0]
	for _, p := range s.Players() {
		c.UpsertPlayers = append(c.UpsertPlayers, p.Clone())
	}
	c.UpsertArchived = c.UpsertArchived[:0]
	for _, id := range sortedIDs(s.archived) {
		a := *s.archived[id]
		c.UpsertArchived = append(c.UpsertArchived, &a)
	}
	c.ProjectilesChanged = true
	c.Projectiles = cloneProjectiles(s.Projectiles())
	return c
}

func cloneProjectiles(in []*Projectile) []*Projectile {
	out := make([]*Projectile, len(in))
	for i, p := range in {
		cp := *p
		out[i] = &cp
	}
	return out
}

func sortedIDs[V any](m map[Identity]V) []Identity {
	if len(m) == 0 {
		return nil
	}
	out := make([]Identity, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
