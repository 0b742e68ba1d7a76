package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store.  It is safe for concurrent use.
// Expired entries are dropped lazily on access, which is enough for its
// intended dev and test usage.
type MemoryStore struct {
	mu  sync.RWMutex
	m   map[string]memoryEntry
	ttl time.Duration
	now func() time.Time // injectable for expiry tests
}

type memoryEntry struct {
	sess      Session
	expiresAt time.Time
}

// NewMemoryStore returns a MemoryStore whose sessions idle out after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		m:   make(map[string]memoryEntry),
		ttl: ttl,
		now: time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, token string) (Session, bool, error) {
	_ = ctx
	s.mu.RLock()
	e, ok := s.m[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false, nil
	}
	if s.now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.m, token)
		s.mu.Unlock()
		return Session{}, false, nil
	}
	return e.sess, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, token string, sess Session) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[token] = memoryEntry{sess: sess, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Destroy(ctx context.Context, token string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, token)
	return nil
}
