package profile

import (
	"context"
	"encoding/json"
	"sync"
)

// InMemoryStore is a simple in-process store for local/dev use.
type InMemoryStore struct {
	mu   sync.RWMutex
	blob []byte
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Load(_ context.Context) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.blob) == 0 {
		return Snapshot{}, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(s.blob, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *InMemoryStore) Save(_ context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = data
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
