// Package oauthstate implements the CSRF state parameter shared by all
// federated login flows.
package oauthstate

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

const stateTTL = 10 * time.Minute

// Store issues single-use state parameters with an expiry. It is the only
// mutable in-process auth state in the service; everything else lives in
// the database.
type Store struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

// NewStore creates an empty state store.
func NewStore() *Store {
	return &Store{
		states: make(map[string]time.Time),
		now:    time.Now,
	}
}

// Issue generates a cryptographically random state, records it with a TTL,
// and returns it.
func (s *Store) Issue() string {
	buf := make([]byte, 32)
	rand.Read(buf)
	state := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state] = s.now().Add(stateTTL)
	s.evictExpiredLocked()

	return state
}

// Consume validates a state parameter and removes it so it cannot be
// replayed. Returns false for unknown or expired states.
func (s *Store) Consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.states[state]
	if !ok {
		return false
	}

	delete(s.states, state)

	return s.now().Before(expiry)
}

func (s *Store) evictExpiredLocked() {
	now := s.now()
	for state, expiry := range s.states {
		if now.After(expiry) {
			delete(s.states, state)
		}
	}
}
