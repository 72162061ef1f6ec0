package account

import (
	"context"
	"sync"
)

// MemoryStore keeps the account in memory only. Used by tests and by
// the headless runner when no database path is given.
type MemoryStore struct {
	mu    sync.Mutex
	acct  Account
	saved bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.saved {
		return Defaults(), nil
	}
	return m.acct, nil
}

func (m *MemoryStore) Save(ctx context.Context, a Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acct = a
	m.saved = true
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Saved reports whether Save has been called at least once.
func (m *MemoryStore) Saved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved
}
