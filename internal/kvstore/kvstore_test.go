package kvstore

import (
	"context"
	"path/filepath"
	"testing"
)

func roundTrip(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get missing = (ok=%v, err=%v), want absent without error", ok, err)
	}
	if err := s.Set(ctx, "testHistory_student", `[{"testId":1}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := s.Get(ctx, "testHistory_student")
	if err != nil || !ok || v != `[{"testId":1}]` {
		t.Fatalf("Get = (%q, %v, %v)", v, ok, err)
	}

	// overwrite
	if err := s.Set(ctx, "testHistory_student", `[]`); err != nil {
		t.Fatal(err)
	}
	if v, _, _ := s.Get(ctx, "testHistory_student"); v != `[]` {
		t.Fatalf("after overwrite = %q, want []", v)
	}

	if err := s.Remove(ctx, "testHistory_student"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "testHistory_student"); ok {
		t.Fatal("key survived Remove")
	}
	// removing again is not an error
	if err := s.Remove(ctx, "testHistory_student"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	roundTrip(t, NewInMemoryStore())
}

func TestFSStore(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, s)
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "kv.db")
	s, err := NewSQLiteStore(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	roundTrip(t, s)
}

func TestFSStoreEscapesKeys(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Set(ctx, "odd/key name", "v"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(ctx, "odd/key name")
	if err != nil || !ok || v != "v" {
		t.Fatalf("Get = (%q, %v, %v)", v, ok, err)
	}
}
