package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryLease struct {
	token   string
	expires time.Time
}

// MemoryLock is a process-local Locker used when Redis is not configured
// and in tests.
type MemoryLock struct {
	mu    sync.Mutex
	held  map[string]memoryLease
	clock func() time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{
		held:  make(map[string]memoryLease),
		clock: time.Now,
	}
}

func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if lease, ok := m.held[key]; ok && now.Before(lease.expires) {
		return "", false, nil
	}
	token := uuid.NewString()
	m.held[key] = memoryLease{token: token, expires: now.Add(ttl)}
	return token, true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lease, ok := m.held[key]; ok && lease.token == token {
		delete(m.held, key)
	}
	return nil
}
