// Package server is the reference MindSpace API: the REST surface the
// client core talks to, backed by SQLite or Postgres.
package server

import (
	"context"
	"errors"

	"github.com/mindspace-health/mindspace-core/internal/catalog"
)

var (
	ErrTestNotFound    = errors.New("test not found")
	ErrAccountNotFound = errors.New("account not found")
)

// StoredResponse is one accepted submission.
type StoredResponse struct {
	ID         string
	TestID     int
	StudentID  *int
	ParentID   *int
	TotalScore int
	RankResult string
	Items      []catalog.TestResponseItem
	CreatedAt  int64
}

// Account is a login principal. Exactly one of StudentID/ParentID is
// set for submitting roles; psychologists carry neither.
type Account struct {
	ID        string
	Email     string
	PassHash  string
	Role      string
	StudentID *int
	ParentID  *int
}

type Store interface {
	PutTest(ctx context.Context, def catalog.TestDefinition) error
	GetTest(ctx context.Context, id int) (catalog.TestDefinition, error)
	ListTests(ctx context.Context, offset, limit int) ([]catalog.TestSummary, int, error)

	SaveResponse(ctx context.Context, r StoredResponse) error
	// LatestResponse returns the most recent submission for a test,
	// optionally narrowed to one principal (nil ids mean any).
	LatestResponse(ctx context.Context, testID int, studentID, parentID *int) (StoredResponse, bool, error)

	PutAccount(ctx context.Context, a Account) error
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
}
