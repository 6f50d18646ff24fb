package storage

import (
	"context"
	"sync"
)

type memoryRepo struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemory returns a process-local Repository.
func NewMemory() Repository {
	return &memoryRepo{values: make(map[string][]byte)}
}

func (r *memoryRepo) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	v, ok := r.values[key]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (r *memoryRepo) Set(_ context.Context, key string, value []byte) error {
	clone := make([]byte, len(value))
	copy(clone, value)
	r.mu.Lock()
	r.values[key] = clone
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Ping(context.Context) error {
	return nil
}
