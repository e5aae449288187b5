package repository

import (
	"context"
	"sync"
	"time"
)

type memoryStateStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryStateStore() StateStore {
	return &memoryStateStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (s *memoryStateStore) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.revoked[revokedTokenPrefix+jti] = s.now().Add(ttl)
	return nil
}

func (s *memoryStateStore) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[revokedTokenPrefix+jti]
	if !ok {
		return false, nil
	}
	if !s.now().Before(until) {
		delete(s.revoked, revokedTokenPrefix+jti)
		return false, nil
	}
	return true, nil
}

func (s *memoryStateStore) Ping(context.Context) error { return nil }

// sweep drops expired entries; callers hold mu.
func (s *memoryStateStore) sweep() {
	now := s.now()
	for key, until := range s.revoked {
		if !now.Before(until) {
			delete(s.revoked, key)
		}
	}
}
