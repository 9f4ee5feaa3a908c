package settings

import (
	"context"
	"fmt"
	"os/user"
	"sync"
)

// User identifies whose settings are read or written.
type User string

// CurrentUser returns the uid of the user running the process.
func CurrentUser() (User, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to resolve current user: %w", err)
	}
	return User(u.Uid), nil
}

// Store is a per-user integer settings provider.
type Store interface {
	// GetInt returns the stored value for name, or def if it was never set.
	GetInt(ctx context.Context, u User, name string, def int) (int, error)
	PutInt(ctx context.Context, u User, name string, value int) error
	Close() error
}

type memoryKey struct {
	user User
	name string
}

// MemoryStore keeps settings in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[memoryKey]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[memoryKey]int)}
}

func (m *MemoryStore) GetInt(ctx context.Context, u User, name string, def int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.values[memoryKey{u, name}]; ok {
		return v, nil
	}
	return def, nil
}

func (m *MemoryStore) PutInt(ctx context.Context, u User, name string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[memoryKey{u, name}] = value
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
