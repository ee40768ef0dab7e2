package session

import (
	"context"
	"sync"
)

// Storage is a string-keyed store of persisted entries. GetItem returns
// found == false, and no error, for an entry that does not exist.
type Storage interface {
	GetItem(ctx context.Context, name string) (value []byte, found bool, err error)
	SetItem(ctx context.Context, name string, value []byte) error
	RemoveItem(ctx context.Context, name string) error
}

type memoryStorage struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemoryStorage returns a Storage that keeps its entries in process memory.
func NewMemoryStorage() Storage {
	return &memoryStorage{
		items: map[string][]byte{},
	}
}

func (m *memoryStorage) GetItem(
	_ context.Context,
	name string,
) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.items[name]
	if !ok {
		return nil, false, nil
	}
	return copyBytes(value), true, nil
}

func (m *memoryStorage) SetItem(
	_ context.Context,
	name string,
	value []byte,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[name] = copyBytes(value)
	return nil
}

func (m *memoryStorage) RemoveItem(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
	return nil
}

func copyBytes(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

type scopedStorage struct {
	storage Storage
	scope   string
}

// Scoped returns a Storage whose entries live in the provided Storage with
// names prefixed by scope. It is used to give every browser session its own
// namespace within shared storage.
func Scoped(storage Storage, scope string) Storage {
	return &scopedStorage{
		storage: storage,
		scope:   scope,
	}
}

func (s *scopedStorage) GetItem(
	ctx context.Context,
	name string,
) ([]byte, bool, error) {
	return s.storage.GetItem(ctx, s.scopedName(name))
}

func (s *scopedStorage) SetItem(
	ctx context.Context,
	name string,
	value []byte,
) error {
	return s.storage.SetItem(ctx, s.scopedName(name), value)
}

func (s *scopedStorage) RemoveItem(ctx context.Context, name string) error {
	return s.storage.RemoveItem(ctx, s.scopedName(name))
}

func (s *scopedStorage) scopedName(name string) string {
	return s.scope + "/" + name
}
