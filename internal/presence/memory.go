package presence

import (
	"context"
	"sync"
)

// MemoryRegistry is the in-process registry used when no redis address
// is configured, and by tests. Same contract as RedisRegistry.
type MemoryRegistry struct {
	mu      sync.RWMutex
	handles map[string]string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{handles: make(map[string]string)}
}

func (m *MemoryRegistry) Mark(ctx context.Context, user, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles[user] = handle
	return nil
}

func (m *MemoryRegistry) Unmark(ctx context.Context, user, handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handles[user] == handle {
		delete(m.handles, user)
	}
	return nil
}

func (m *MemoryRegistry) Lookup(ctx context.Context, user string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	handle, ok := m.handles[user]
	return handle, ok, nil
}

func (m *MemoryRegistry) Online(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]string, 0, len(m.handles))
	for user := range m.handles {
		users = append(users, user)
	}
	return users, nil
}
