package dialogue

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Used when DATABASE_URL is
// not set and by tests; follows the same revision discipline as postgres.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Create(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.Revision == 0 {
		sess.Revision = 1
	}
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[sess.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Revision != sess.Revision {
		return ErrRevisionConflict
	}
	sess.Revision++
	sess.UpdatedAt = time.Now().UTC()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
