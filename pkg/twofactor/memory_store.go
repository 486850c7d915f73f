package twofactor

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryUserStore implements UserStore in process memory.
type MemoryUserStore struct {
	mu     sync.Mutex
	states map[uuid.UUID]*State
}

// NewMemoryUserStore creates an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{states: make(map[uuid.UUID]*State)}
}

func (m *MemoryUserStore) GetState(_ context.Context, userID uuid.UUID) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[userID]
	if !ok {
		return &State{UserID: userID}, nil
	}
	return cloneState(st), nil
}

func (m *MemoryUserStore) MarkPending(_ context.Context, userID uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.row(userID)
	if st.Enabled || st.CascadePending {
		return false, nil
	}
	st.PendingSince = &at
	return true, nil
}

func (m *MemoryUserStore) Enable(_ context.Context, userID uuid.UUID, sealedSecret []byte, at time.Time, step int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.row(userID)
	if st.Enabled || st.PendingSince == nil {
		return false, nil
	}
	st.Secret = slices.Clone(sealedSecret)
	st.Enabled = true
	st.SetupAt = &at
	st.PendingSince = nil
	st.LastAcceptedStep = step
	return true, nil
}

func (m *MemoryUserStore) Disable(_ context.Context, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.row(userID)
	if !st.Enabled {
		return false, nil
	}
	clear(st.Secret)
	st.Secret = nil
	st.Enabled = false
	st.SetupAt = nil
	st.PendingSince = nil
	st.LastAcceptedStep = 0
	st.CascadePending = true
	return true, nil
}

func (m *MemoryUserStore) AdvanceStep(_ context.Context, userID uuid.UUID, step int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.row(userID)
	if !st.Enabled || step <= st.LastAcceptedStep {
		return false, nil
	}
	st.LastAcceptedStep = step
	return true, nil
}

func (m *MemoryUserStore) ClearCascade(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if st, ok := m.states[userID]; ok {
		st.CascadePending = false
	}
	return nil
}

func (m *MemoryUserStore) ListCascadePending(_ context.Context, limit int) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []uuid.UUID
	for id, st := range m.states {
		if limit > 0 && len(out) >= limit {
			break
		}
		if st.CascadePending && st.Status() == StatusDisabled {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *MemoryUserStore) row(userID uuid.UUID) *State {
	st, ok := m.states[userID]
	if !ok {
		st = &State{UserID: userID}
		m.states[userID] = st
	}
	return st
}

func cloneState(st *State) *State {
	c := *st
	c.Secret = slices.Clone(st.Secret)
	if st.SetupAt != nil {
		t := *st.SetupAt
		c.SetupAt = &t
	}
	if st.PendingSince != nil {
		t := *st.PendingSince
		c.PendingSince = &t
	}
	return &c
}
