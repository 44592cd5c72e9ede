package storage

import (
	"context"
	"sync"
)

// MemoryRepository holds the encoded envelope in memory. It is the default
// backend and the one tests use; it goes through the same encode/decode
// path as the durable backends.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string][]byte)}
}

// Save implements Repository.
func (r *MemoryRepository) Save(_ context.Context, s State) error {
	payload, err := encodeState(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[StateKey] = payload
	return nil
}

// Load implements Repository.
func (r *MemoryRepository) Load(_ context.Context) (State, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, found := r.items[StateKey]
	if !found {
		return State{}, false, nil
	}
	s, ok := decodeState(payload)
	if !ok {
		return State{}, false, nil
	}
	return s, true, nil
}

func (r *MemoryRepository) Close() error { return nil }

// Corrupt overwrites the stored payload with garbage. Test hook for the
// fail-soft load path.
func (r *MemoryRepository) Corrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[StateKey] = []byte("{not json")
}
