package store

import (
	"context"
	"sync"

	"github.com/i474232898/weather-mirror/internal/weather"
)

// MemoryStore is a concurrency-safe single-slot snapshot store. It does not
// survive a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	snap weather.RawSnapshot
	set  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Put replaces the stored snapshot. The body is copied so later writes to the
// caller's slice cannot reach the slot.
func (s *MemoryStore) Put(_ context.Context, snap weather.RawSnapshot) error {
	if snap.Empty() {
		return ErrEmptySnapshot
	}
	snap.Body = append([]byte(nil), snap.Body...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	s.set = true
	return nil
}

// Get returns the stored snapshot or weather.ErrCacheMiss.
func (s *MemoryStore) Get(_ context.Context) (weather.RawSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return weather.RawSnapshot{}, weather.ErrCacheMiss
	}
	snap := s.snap
	snap.Body = append([]byte(nil), s.snap.Body...)
	return snap, nil
}
