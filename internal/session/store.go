package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired refresh sessions.
var ErrSessionNotFound = errors.New("token not found or expired")

// Store keeps refresh sessions keyed by token id (jti).
type Store interface {
	Save(ctx context.Context, jti, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, jti string) (string, error)
	Revoke(ctx context.Context, userID, jti string) error
	RevokeUser(ctx context.Context, userID string) error
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore is a process-local Store used when no Redis URL is configured.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

// NewMemoryStore creates an empty in-process session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, jti, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[jti] = memorySession{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, jti string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[jti]
	if !ok {
		return "", ErrSessionNotFound
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, jti)
		return "", ErrSessionNotFound
	}
	return sess.userID, nil
}

func (s *MemoryStore) Revoke(_ context.Context, _ string, jti string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, jti)
	return nil
}

func (s *MemoryStore) RevokeUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for jti, sess := range s.sessions {
		if sess.userID == userID {
			delete(s.sessions, jti)
		}
	}
	return nil
}
