package repositories

import (
	"context"
	"sync"
	"time"
)

type MemoryTokenStore struct {
	mu   sync.Mutex
	used map[string]time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{used: make(map[string]time.Time)}
}

func (s *MemoryTokenStore) Consume(_ context.Context, id string, until time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.used[id]; ok {
		return false, nil
	}
	s.used[id] = until
	return true, nil
}

func (s *MemoryTokenStore) Purge(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for id, until := range s.used {
		if until.Before(now) {
			delete(s.used, id)
			purged++
		}
	}
	return purged, nil
}
