package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mindspace-health/mindspace-core/internal/catalog"
)

type memoryStore struct {
	mu        sync.RWMutex
	tests     map[int]catalog.TestDefinition
	responses []StoredResponse
	accounts  map[string]Account
}

// NewInMemoryStore returns a volatile Store for tests and quick dev
// runs without a database file.
func NewInMemoryStore() Store {
	return &memoryStore{
		tests:    map[int]catalog.TestDefinition{},
		accounts: map[string]Account{},
	}
}

func (m *memoryStore) PutTest(_ context.Context, def catalog.TestDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[def.ID] = def
	return nil
}

func (m *memoryStore) GetTest(_ context.Context, id int) (catalog.TestDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.tests[id]
	if !ok {
		return catalog.TestDefinition{}, ErrTestNotFound
	}
	return def, nil
}

func (m *memoryStore) ListTests(_ context.Context, offset, limit int) ([]catalog.TestSummary, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]int, 0, len(m.tests))
	for id := range m.tests {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := []catalog.TestSummary{}
	for i, id := range ids {
		if i < offset || len(out) >= limit {
			continue
		}
		def := m.tests[id]
		out = append(out, catalog.TestSummary{
			ID:           def.ID,
			Title:        def.Title,
			Description:  def.Description,
			TargetUser:   def.TargetUser,
			TestCategory: def.TestCategory,
		})
	}
	return out, len(ids), nil
}

func (m *memoryStore) SaveResponse(_ context.Context, r StoredResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	m.responses = append(m.responses, r)
	return nil
}

func (m *memoryStore) LatestResponse(_ context.Context, testID int, studentID, parentID *int) (StoredResponse, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.responses) - 1; i >= 0; i-- {
		r := m.responses[i]
		if r.TestID != testID {
			continue
		}
		if studentID != nil && (r.StudentID == nil || *r.StudentID != *studentID) {
			continue
		}
		if parentID != nil && (r.ParentID == nil || *r.ParentID != *parentID) {
			continue
		}
		return r, true, nil
	}
	return StoredResponse{}, false, nil
}

func (m *memoryStore) PutAccount(_ context.Context, a Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[strings.ToLower(a.Email)] = a
	return nil
}

func (m *memoryStore) GetAccountByEmail(_ context.Context, email string) (Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}
