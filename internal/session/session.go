// Package session drives one test attempt from definition load through
// answering, validation, scoring, submission and the final result.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mindspace-health/mindspace-core/internal/catalog"
	"github.com/mindspace-health/mindspace-core/internal/history"
	"github.com/mindspace-health/mindspace-core/internal/kvstore"
	"github.com/mindspace-health/mindspace-core/internal/scoring"
)

// KeySelectedAnswers is the transient local-store key mirroring the
// in-progress answer map. Owned by the active session; safe to
// overwrite unconditionally.
const KeySelectedAnswers = "selectedAnswers"

type State string

const (
	StateLoading    State = "loading"
	StateAnswering  State = "answering"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

var (
	ErrIncompleteAnswers = errors.New("answer all questions before submitting")
	ErrNotAuthenticated  = errors.New("no student or parent id found, please re-login")
	ErrAlreadyStarted    = errors.New("session already started")
	ErrSubmitInFlight    = errors.New("a submission is in flight")
	ErrWrongState        = errors.New("operation not allowed in current state")
)

// Catalog is the remote API surface the session needs.
type Catalog interface {
	GetTestDefinition(ctx context.Context, testID int) (*catalog.TestDefinition, error)
	SubmitTestResponse(ctx context.Context, payload catalog.SubmitTestResponse) error
}

// Identity resolves the acting principal at submission time.
type Identity interface {
	PrincipalIDs(ctx context.Context) (studentID, parentID *int)
}

// Recorder receives the attempt record on successful submission.
// Satisfied by *history.Store.
type Recorder interface {
	Append(ctx context.Context, rec history.TestAttemptRecord)
}

// Selection is the per-question answer kept by the session and
// mirrored to the local store for crash resume.
type Selection struct {
	OptionID int `json:"optionId"`
	Score    int `json:"score"`
}

// Session is a single test attempt. Methods are safe for the
// interleaved, callback-driven access a UI produces; a held lock also
// enforces the one-submission-in-flight rule.
type Session struct {
	id       uuid.UUID
	testID   int
	testName string

	api      Catalog
	identity Identity
	recorder Recorder
	kv       kvstore.Store
	now      func() time.Time

	mu          sync.Mutex
	state       State
	def         *catalog.TestDefinition
	answers     map[int]Selection
	failMsg     string
	resubmit    bool // answers survive a failed submit; Submit may run again
	totalScore  int
	rankedLabel string
}

func New(testID int, testName string, api Catalog, id Identity, rec Recorder, kv kvstore.Store) *Session {
	return &Session{
		id:       uuid.New(),
		testID:   testID,
		testName: testName,
		api:      api,
		identity: id,
		recorder: rec,
		kv:       kv,
		now:      time.Now,
		state:    StateLoading,
		answers:  map[int]Selection{},
	}
}

func (s *Session) ID() uuid.UUID { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// FailureMessage returns the user-facing message of a Failed session.
func (s *Session) FailureMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failMsg
}

func (s *Session) Definition() *catalog.TestDefinition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.def
}

// Start fetches the definition and enters Answering. A fetch failure
// is terminal for the session; the user re-enters the screen to retry.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading || s.def != nil {
		if s.state == StateSubmitting {
			return ErrSubmitInFlight
		}
		return ErrAlreadyStarted
	}
	def, err := s.api.GetTestDefinition(ctx, s.testID)
	if err != nil {
		s.state = StateFailed
		s.failMsg = fmt.Sprintf("could not load test: %v", err)
		return err
	}
	if s.testName == "" {
		s.testName = def.Title
	}
	s.def = def
	s.state = StateAnswering
	return nil
}

// SelectOption records the answer for one question, last write wins.
// The score attached to the selection comes from the definition's
// option source, never from the caller. The full answer map is
// mirrored to the local store best-effort.
func (s *Session) SelectOption(ctx context.Context, questionID, optionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnswering {
		return ErrWrongState
	}
	q, ok := s.question(questionID)
	if !ok {
		return fmt.Errorf("unknown question %d", questionID)
	}
	var sel *Selection
	for _, opt := range s.def.OptionsFor(q) {
		if opt.ID == optionID {
			sel = &Selection{OptionID: opt.ID, Score: opt.Score}
			break
		}
	}
	if sel == nil {
		return fmt.Errorf("unknown option %d for question %d", optionID, questionID)
	}
	s.answers[questionID] = *sel
	s.mirrorAnswers(ctx)
	return nil
}

// Resume restores a previously mirrored answer map, dropping entries
// that no longer match the definition and recomputing scores from it.
// Malformed mirror data degrades to an empty restore.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnswering {
		return ErrWrongState
	}
	raw, ok, err := s.kv.Get(ctx, KeySelectedAnswers)
	if err != nil || !ok {
		return err
	}
	var stored map[int]Selection
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Printf("session %s: malformed %s, starting clean: %v", s.id, KeySelectedAnswers, err)
		return nil
	}
	for qid, sel := range stored {
		q, ok := s.question(qid)
		if !ok {
			continue
		}
		for _, opt := range s.def.OptionsFor(q) {
			if opt.ID == sel.OptionID {
				s.answers[qid] = Selection{OptionID: opt.ID, Score: opt.Score}
				break
			}
		}
	}
	return nil
}

// Answers returns a copy of the current selections.
func (s *Session) Answers() map[int]Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]Selection, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Submit validates completeness, scores the attempt, and sends it
// upstream. Incomplete answers keep the session in Answering with
// selections intact. A missing principal or an HTTP failure moves the
// session to Failed but keeps the answers, so Submit may be called
// again after the user re-authenticates or retries.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateAnswering:
	case StateFailed:
		if !s.resubmit {
			return ErrWrongState
		}
	default:
		return ErrWrongState
	}

	// Validating: exactly one selection per question, no extras.
	// SelectOption rejects unknown questions, so a count match means
	// set equality.
	if len(s.answers) != len(s.def.Questions) {
		s.state = StateAnswering
		return ErrIncompleteAnswers
	}

	s.state = StateSubmitting

	scoreAnswers := make(map[int]scoring.Selection, len(s.answers))
	for qid, sel := range s.answers {
		scoreAnswers[qid] = scoring.Selection{OptionID: sel.OptionID, Score: sel.Score}
	}
	total, result := scoring.Score(s.def, scoreAnswers)

	studentID, parentID := s.identity.PrincipalIDs(ctx)
	if studentID == nil && parentID == nil {
		s.state = StateFailed
		s.resubmit = true
		s.failMsg = ErrNotAuthenticated.Error()
		return ErrNotAuthenticated
	}

	payload := catalog.SubmitTestResponse{
		TestID:              s.testID,
		TotalScore:          total,
		TestScoreRankResult: result,
		StudentID:           studentID,
		ParentID:            parentID,
		TestResponseItems:   s.responseItems(),
	}
	if err := s.api.SubmitTestResponse(ctx, payload); err != nil {
		s.state = StateFailed
		s.resubmit = true
		s.failMsg = fmt.Sprintf("failed to submit test: %v", err)
		return err
	}

	s.recorder.Append(ctx, history.TestAttemptRecord{
		TestID:     s.testID,
		TestName:   s.testName,
		TotalScore: total,
		Result:     result,
		Timestamp:  s.now().Format("2006-01-02 15:04:05"),
	})
	if err := s.kv.Remove(ctx, KeySelectedAnswers); err != nil {
		log.Printf("session %s: clear %s: %v", s.id, KeySelectedAnswers, err)
	}
	s.totalScore = total
	s.rankedLabel = result
	s.state = StateCompleted
	return nil
}

// Result is valid once the session is Completed.
func (s *Session) Result() (totalScore int, result string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCompleted {
		return 0, "", false
	}
	return s.totalScore, s.rankedLabel, true
}

func (s *Session) question(id int) (catalog.Question, bool) {
	for _, q := range s.def.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return catalog.Question{}, false
}

// responseItems echoes every question with the chosen answer's display
// text and score, in definition order.
func (s *Session) responseItems() []catalog.TestResponseItem {
	items := make([]catalog.TestResponseItem, 0, len(s.def.Questions))
	for _, q := range s.def.Questions {
		sel := s.answers[q.ID]
		text := ""
		for _, opt := range s.def.OptionsFor(q) {
			if opt.ID == sel.OptionID {
				text = opt.DisplayedText
				break
			}
		}
		items = append(items, catalog.TestResponseItem{
			QuestionContent: q.Content,
			Score:           sel.Score,
			AnswerText:      text,
		})
	}
	return items
}

func (s *Session) mirrorAnswers(ctx context.Context) {
	buf, err := json.Marshal(s.answers)
	if err != nil {
		log.Printf("session %s: encode answers: %v", s.id, err)
		return
	}
	if err := s.kv.Set(ctx, KeySelectedAnswers, string(buf)); err != nil {
		log.Printf("session %s: mirror answers: %v", s.id, err)
	}
}
