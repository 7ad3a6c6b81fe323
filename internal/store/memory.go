package store

import (
	"sort"
	"sync"
)

// #region memory-store

// Memory is a map-backed Repository. Safe for concurrent use; the default
// backend for tests and single-process runs.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]UserState
	concepts map[string]ConceptParams
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		users:    map[string]UserState{},
		concepts: map[string]ConceptParams{},
	}
}

// GetUser implements Repository.
func (m *Memory) GetUser(userID string) (UserState, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return UserState{}, false, nil
	}
	return u.Clone(), true, nil
}

// PutUser implements Repository.
func (m *Memory) PutUser(state UserState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[state.UserID] = state.Clone()
	return nil
}

// GetConcept implements Repository.
func (m *Memory) GetConcept(conceptID string) (ConceptParams, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.concepts[conceptID]
	return p, ok, nil
}

// PutConcept implements Repository.
func (m *Memory) PutConcept(params ConceptParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.concepts[params.ConceptID] = params
	return nil
}

// Users implements Repository. Results are sorted by user id for
// deterministic snapshots.
func (m *Memory) Users() ([]UserState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UserState, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// Concepts implements Repository.
func (m *Memory) Concepts() ([]ConceptParams, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ConceptParams, 0, len(m.concepts))
	for _, p := range m.concepts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConceptID < out[j].ConceptID })
	return out, nil
}

// #endregion memory-store
