// Package resultview assembles the result screen's view model from
// local history and the remote per-question breakdown.
package resultview

import (
	"context"
	"errors"
	"log"

	"github.com/mindspace-health/mindspace-core/internal/catalog"
	"github.com/mindspace-health/mindspace-core/internal/history"
)

// ErrNoAttempt means the acting role has no recorded attempt for the
// requested test.
var ErrNoAttempt = errors.New("no attempt recorded for this test")

// Detailer fetches the remote per-question breakdown.
type Detailer interface {
	GetResponseDetails(ctx context.Context, testID int) ([]catalog.TestResponseDetail, error)
}

// Attempts lists the acting role's history. Satisfied by *history.Store.
type Attempts interface {
	List(ctx context.Context) []history.TestAttemptRecord
}

// View is what the result screen renders.
type View struct {
	TestID          int
	TestName        string
	TotalScore      int
	Result          string
	Timestamp       string
	ResponseDetails []catalog.TestResponseDetail
}

type Adapter struct {
	attempts Attempts
	details  Detailer
}

func NewAdapter(attempts Attempts, details Detailer) *Adapter {
	return &Adapter{attempts: attempts, details: details}
}

// Build returns the most recent attempt for testID enriched with the
// remote breakdown. History is append-ordered, so the last match is
// the latest retake. The detail fetch is display-only: when it fails
// the view still carries the score and result, with empty details.
func (a *Adapter) Build(ctx context.Context, testID int) (*View, error) {
	var rec *history.TestAttemptRecord
	for _, r := range a.attempts.List(ctx) {
		if r.TestID == testID {
			r := r
			rec = &r
		}
	}
	if rec == nil {
		return nil, ErrNoAttempt
	}
	v := &View{
		TestID:     rec.TestID,
		TestName:   rec.TestName,
		TotalScore: rec.TotalScore,
		Result:     rec.Result,
		Timestamp:  rec.Timestamp,
	}
	details, err := a.details.GetResponseDetails(ctx, testID)
	if err != nil {
		log.Printf("resultview: detail fetch for test %d failed, showing score only: %v", testID, err)
		return v, nil
	}
	v.ResponseDetails = details
	return v, nil
}
