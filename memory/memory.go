// Package memory keeps the last few exchanges of each client in process.
// Nothing survives a restart.
package memory

import (
	"sync"
	"time"
)

// DefaultLimit is how many exchanges are kept per client.
const DefaultLimit = 20

// Exchange is one user message and the reply it got.
type Exchange struct {
	User string    `json:"user"`
	AI   string    `json:"ai"`
	At   time.Time `json:"at"`
}

type Store struct {
	mu    sync.RWMutex
	limit int
	logs  map[string][]Exchange
	now   func() time.Time
}

func New(limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		limit: limit,
		logs:  make(map[string][]Exchange),
		now:   time.Now,
	}
}

// Save appends an exchange, dropping the oldest beyond the limit.
func (s *Store) Save(clientID, user, ai string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := append(s.logs[clientID], Exchange{User: user, AI: ai, At: s.now()})
	if over := len(log) - s.limit; over > 0 {
		// copy so the dropped prefix can be collected
		log = append([]Exchange(nil), log[over:]...)
	}
	s.logs[clientID] = log
}

// Load returns up to n most recent exchanges, oldest first. n <= 0 means all.
func (s *Store) Load(clientID string, n int) []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[clientID]
	if n > 0 && len(log) > n {
		log = log[len(log)-n:]
	}
	out := make([]Exchange, len(log))
	copy(out, log)
	return out
}

func (s *Store) Forget(clientID string) {
	s.mu.Lock()
	delete(s.logs, clientID)
	s.mu.Unlock()
}

// Clients is the number of clients with any history.
func (s *Store) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}
