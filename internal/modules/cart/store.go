package cart

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

// KeyPrefix namespaces persisted carts; the session id is appended.
const KeyPrefix = "peptide_cart"

// ErrNotFound is returned by a Backend when the key holds no value.
var ErrNotFound = errors.New("cart slot not found")

// Backend is a durable key-value slot store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// PersistentStore mirrors one cart into a Backend slot. None of its
// methods fail: errors are logged and the in-memory cart stays
// authoritative.
type PersistentStore struct {
	backend Backend
	key     string
	log     *zap.Logger
}

// NewPersistentStore binds a store to the slot of one cart session.
func NewPersistentStore(backend Backend, sessionID string, log *zap.Logger) *PersistentStore {
	return &PersistentStore{backend: backend, key: KeyPrefix + ":" + sessionID, log: log}
}

// Load returns the persisted cart, or an empty one if the slot is missing,
// unreadable or does not parse.
func (s *PersistentStore) Load(ctx context.Context) []LineItem {
	raw, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("load cart failed", zap.String("key", s.key), zap.Error(err))
		}
		return []LineItem{}
	}
	var items []LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("discarding unreadable cart", zap.String("key", s.key), zap.Error(err))
		return []LineItem{}
	}
	valid := items[:0]
	for _, it := range items {
		if it.Product.ID == "" || it.Quantity < 1 {
			continue
		}
		valid = append(valid, it)
	}
	return valid
}

// Save writes the whole collection.
func (s *PersistentStore) Save(ctx context.Context, items []LineItem) {
	if items == nil {
		items = []LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		s.log.Error("encode cart failed", zap.String("key", s.key), zap.Error(err))
		return
	}
	if err := s.backend.Set(ctx, s.key, raw); err != nil {
		s.log.Warn("save cart failed", zap.String("key", s.key), zap.Error(err))
	}
}

// Clear removes the slot.
func (s *PersistentStore) Clear(ctx context.Context) {
	if err := s.backend.Del(ctx, s.key); err != nil {
		s.log.Warn("clear cart failed", zap.String("key", s.key), zap.Error(err))
	}
}
