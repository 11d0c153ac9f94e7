package world

import "sync"

// Store owns the State and serializes every access to it. Handlers, the tick
// and the persistence flush each run their work inside Do, so a transition is
// never observed half-applied.
type Store struct {
	mu    sync.Mutex
	state *State
}

func NewStore(s *State) *Store {
	if s == nil {
		s = NewState()
	}
	return &Store{state: s}
}

// Do runs fn with exclusive access to the state and returns its error.
// fn must not retain the *State or any record beyond its own return.
func (st *Store) Do(fn func(*State) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return fn(st.state)
}
