package cart

import (
	"context"
	"sync"
)

type memoryBackend struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

// NewMemoryBackend keeps cart slots in process memory. Used when no Redis
// is configured; slots do not survive a restart.
func NewMemoryBackend() Backend {
	return &memoryBackend{slots: make(map[string][]byte)}
}

func (b *memoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	raw, ok := b.slots[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (b *memoryBackend) Set(_ context.Context, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slots[key] = append([]byte(nil), value...)
	return nil
}

func (b *memoryBackend) Del(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.slots, key)
	return nil
}
