package backupcode

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[uuid.UUID][]Code
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[uuid.UUID][]Code)}
}

func (m *MemoryStore) Replace(_ context.Context, userID uuid.UUID, codes []Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]Code, 0, len(codes))
	for _, c := range m.codes[userID] {
		if c.Used {
			kept = append(kept, c)
		}
	}
	m.codes[userID] = append(kept, codes...)
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, userID uuid.UUID, hash string, usedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	codes := m.codes[userID]
	for i := range codes {
		if codes[i].Hash == hash && !codes[i].Used {
			t := usedAt
			codes[i].Used = true
			codes[i].UsedAt = &t
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStore) CountUnused(_ context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range m.codes[userID] {
		if !c.Used {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteAll(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.codes, userID)
	return nil
}

// List returns a copy of all codes of the user, used and unused.
func (m *MemoryStore) List(userID uuid.UUID) []Code {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Code(nil), m.codes[userID]...)
}
