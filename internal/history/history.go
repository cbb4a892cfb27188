// Package history keeps the durable, role-partitioned record of past
// test attempts on the device.
package history

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/mindspace-health/mindspace-core/internal/kvstore"
	"github.com/mindspace-health/mindspace-core/internal/scoring"
)

const keyPrefix = "testHistory_"

// TestAttemptRecord is one finished attempt. Created at submission
// time, never mutated afterwards.
type TestAttemptRecord struct {
	TestID     int    `json:"testId"`
	TestName   string `json:"testName"`
	TotalScore int    `json:"totalScore"`
	Result     string `json:"result"`
	Timestamp  string `json:"timestamp"`
}

// RoleSource resolves the acting role. Satisfied by identity.Provider.
type RoleSource interface {
	Role(ctx context.Context) string
}

// Store partitions records by role so two principals sharing a device
// never see each other's history. Every operation degrades rather than
// fails: no role or malformed stored JSON means empty history, and
// storage errors are logged, never propagated.
type Store struct {
	kv    kvstore.Store
	roles RoleSource

	// Serializes the read-modify-write cycle so two concurrent appends
	// within this process cannot lose an update.
	mu sync.Mutex
}

func NewStore(kv kvstore.Store, roles RoleSource) *Store {
	return &Store{kv: kv, roles: roles}
}

func (s *Store) key(ctx context.Context) (string, bool) {
	role := s.roles.Role(ctx)
	if role == "" {
		return "", false
	}
	return keyPrefix + role, true
}

func (s *Store) load(ctx context.Context, key string) []TestAttemptRecord {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		log.Printf("history: read %s: %v", key, err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}
	var recs []TestAttemptRecord
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		log.Printf("history: malformed data under %s, treating as empty: %v", key, err)
		return nil
	}
	return recs
}

func (s *Store) save(ctx context.Context, key string, recs []TestAttemptRecord) {
	buf, err := json.Marshal(recs)
	if err != nil {
		log.Printf("history: encode %s: %v", key, err)
		return
	}
	if err := s.kv.Set(ctx, key, string(buf)); err != nil {
		log.Printf("history: write %s: %v", key, err)
	}
}

// Append adds one record to the acting role's history. With no
// resolvable role the record is dropped with a log line; the caller's
// flow is never interrupted.
func (s *Store) Append(ctx context.Context, rec TestAttemptRecord) {
	key, ok := s.key(ctx)
	if !ok {
		log.Printf("history: no role resolved, attempt for test %d not saved", rec.TestID)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := append(s.load(ctx, key), rec)
	s.save(ctx, key, recs)
}

// List returns the acting role's records in append order. Empty on no
// role, absent key, or malformed data.
func (s *Store) List(ctx context.Context) []TestAttemptRecord {
	key, ok := s.key(ctx)
	if !ok {
		return nil
	}
	return s.load(ctx, key)
}

// RemoveAt deletes the record at index, preserving the order of the
// rest. Out-of-bounds indexes are logged no-ops.
func (s *Store) RemoveAt(ctx context.Context, index int) {
	key, ok := s.key(ctx)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	recs := s.load(ctx, key)
	if index < 0 || index >= len(recs) {
		log.Printf("history: remove index %d out of range [0,%d)", index, len(recs))
		return
	}
	recs = append(recs[:index], recs[index+1:]...)
	s.save(ctx, key, recs)
}

// Clear deletes the acting role's entire history.
func (s *Store) Clear(ctx context.Context) {
	key, ok := s.key(ctx)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Remove(ctx, key); err != nil {
		log.Printf("history: clear %s: %v", key, err)
	}
}

// Export returns the history minus attempts that never resolved to a
// defined result, for sharing with a psychologist.
func (s *Store) Export(ctx context.Context) []TestAttemptRecord {
	recs := s.List(ctx)
	out := make([]TestAttemptRecord, 0, len(recs))
	for _, r := range recs {
		if r.Result == scoring.ResultUndefined {
			continue
		}
		out = append(out, r)
	}
	return out
}
