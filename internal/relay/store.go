// Package relay implements the local development token relay: a tiny
// in-memory mailbox that hands a browser-obtained challenge token to another
// local process exactly once.
package relay

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a stored token stays retrievable.
const DefaultTTL = 5 * time.Minute

type entry struct {
	token    string
	storedAt time.Time
}

// Store is a TTL-bounded one-shot token store. Expired entries are swept
// lazily on each Store call, so an idle process holds stale entries only
// until the next write.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Store saves token and returns the id to retrieve it with.
func (s *Store) Store(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked()
	id := uuid.NewString()
	s.entries[id] = entry{token: token, storedAt: s.now()}
	return id
}

// Retrieve returns the token stored under id and deletes it. The second
// return is false when id is unknown, already consumed, or expired.
func (s *Store) Retrieve(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return "", false
	}
	delete(s.entries, id)
	if s.now().Sub(e.storedAt) >= s.ttl {
		return "", false
	}
	return e.token, true
}

// Peek reports whether a live token exists under id without consuming it.
func (s *Store) Peek(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	return ok && s.now().Sub(e.storedAt) < s.ttl
}

// Len returns the number of entries currently held, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) sweepLocked() {
	cutoff := s.now().Add(-s.ttl)
	for id, e := range s.entries {
		if e.storedAt.Before(cutoff) || e.storedAt.Equal(cutoff) {
			delete(s.entries, id)
		}
	}
}
