package history

import (
	"context"
	"reflect"
	"testing"

	"github.com/mindspace-health/mindspace-core/internal/kvstore"
)

type stubRoles struct{ role string }

func (s *stubRoles) Role(context.Context) string { return s.role }

func rec(testID int, result string) TestAttemptRecord {
	return TestAttemptRecord{
		TestID:     testID,
		TestName:   "Stress Check",
		TotalScore: 9,
		Result:     result,
		Timestamp:  "2026-08-30 10:00:00",
	}
}

func newTestStore(role string) (*Store, kvstore.Store, *stubRoles) {
	kv := kvstore.NewInMemoryStore()
	rs := &stubRoles{role: role}
	return NewStore(kv, rs), kv, rs
}

func TestAppendListRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore("student")

	s.Append(ctx, rec(1, "High"))
	s.Append(ctx, rec(2, "Low"))

	got := s.List(ctx)
	if len(got) != 2 {
		t.Fatalf("List returned %d records, want 2", len(got))
	}
	if got[1].TestID != 2 {
		t.Fatalf("last record testId = %d, want 2", got[1].TestID)
	}
	if !reflect.DeepEqual(got[0], rec(1, "High")) {
		t.Fatalf("first record = %+v", got[0])
	}
}

func TestRolePartition(t *testing.T) {
	ctx := context.Background()
	s, _, rs := newTestStore("student")

	s.Append(ctx, rec(1, "High"))

	rs.role = "parent"
	if got := s.List(ctx); len(got) != 0 {
		t.Fatalf("parent sees %d student records, want 0", len(got))
	}
	s.Append(ctx, rec(7, "Low"))

	rs.role = "student"
	got := s.List(ctx)
	if len(got) != 1 || got[0].TestID != 1 {
		t.Fatalf("student history = %+v, want only test 1", got)
	}
}

func TestNoRoleDegradesToNoop(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestStore("")

	s.Append(ctx, rec(1, "High"))
	if got := s.List(ctx); len(got) != 0 {
		t.Fatalf("List with no role = %+v, want empty", got)
	}
	// nothing must have been written under any key
	if _, ok, _ := kv.Get(ctx, "testHistory_"); ok {
		t.Fatal("record was written despite missing role")
	}
}

func TestMalformedStorageDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	s, kv, _ := newTestStore("student")

	if err := kv.Set(ctx, "testHistory_student", "{not json!"); err != nil {
		t.Fatal(err)
	}
	if got := s.List(ctx); len(got) != 0 {
		t.Fatalf("List over garbage = %+v, want empty", got)
	}

	// append over garbage starts a fresh sequence
	s.Append(ctx, rec(3, "Mid"))
	got := s.List(ctx)
	if len(got) != 1 || got[0].TestID != 3 {
		t.Fatalf("history after append over garbage = %+v", got)
	}
}

func TestRemoveAtBounds(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore("student")
	for i := 1; i <= 3; i++ {
		s.Append(ctx, rec(i, "Low"))
	}

	s.RemoveAt(ctx, -1)
	s.RemoveAt(ctx, 3)
	if got := s.List(ctx); len(got) != 3 {
		t.Fatalf("out-of-bounds remove changed history: %d records", len(got))
	}

	s.RemoveAt(ctx, 1)
	got := s.List(ctx)
	if len(got) != 2 || got[0].TestID != 1 || got[1].TestID != 3 {
		t.Fatalf("history after RemoveAt(1) = %+v, want tests 1 and 3", got)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore("parent")
	s.Append(ctx, rec(1, "High"))

	s.Clear(ctx)
	if got := s.List(ctx); len(got) != 0 {
		t.Fatalf("List after Clear = %+v, want empty", got)
	}
}

func TestExportFiltersUndefined(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore("student")
	s.Append(ctx, rec(1, "High"))
	s.Append(ctx, rec(2, "Undefined"))
	s.Append(ctx, rec(3, "Low"))

	got := s.Export(ctx)
	if len(got) != 2 || got[0].TestID != 1 || got[1].TestID != 3 {
		t.Fatalf("Export = %+v, want tests 1 and 3", got)
	}
}
