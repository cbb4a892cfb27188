// Package catalog holds the wire types of the MindSpace test API and
// an HTTP client over them.
package catalog

import "strings"

// CategoryPsychological is the one category scored on-device. Every
// other category is a survey scored, if at all, server-side.
const CategoryPsychological = "Psychological"

type TestCategory struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// QuestionOption is a selectable answer. Score is meaningful only on
// the shared psychology scale options.
type QuestionOption struct {
	ID            int    `json:"id"`
	DisplayedText string `json:"displayedText"`
	Score         int    `json:"score,omitempty"`
}

type Question struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	// Present only on non-psychological tests.
	QuestionOptions []QuestionOption `json:"questionOptions,omitempty"`
}

// ScoreRank maps an inclusive score interval to a result label.
// Definition order is significant: the first matching rank wins.
type ScoreRank struct {
	MinScore int    `json:"minScore"`
	MaxScore int    `json:"maxScore"`
	Result   string `json:"result"`
}

type TestDefinition struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	TargetUser   string       `json:"targetUser,omitempty"`
	TestCategory TestCategory `json:"testCategory"`
	Questions    []Question   `json:"questions"`
	// Shared Likert-style scale, present only when the category is
	// psychological.
	PsychologyTestOptions []QuestionOption `json:"psychologyTestOptions,omitempty"`
	TestScoreRanks        []ScoreRank      `json:"testScoreRanks,omitempty"`
}

func (d *TestDefinition) Psychological() bool {
	return strings.TrimSpace(d.TestCategory.Name) == CategoryPsychological
}

// OptionsFor returns the option source for a question: the shared
// psychology scale when the test is psychological, the question's own
// options otherwise.
func (d *TestDefinition) OptionsFor(q Question) []QuestionOption {
	if d.Psychological() {
		return d.PsychologyTestOptions
	}
	return q.QuestionOptions
}

// TestSummary is the listing shape returned by GET /tests.
type TestSummary struct {
	ID           int          `json:"id"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	TargetUser   string       `json:"targetUser,omitempty"`
	TestCategory TestCategory `json:"testCategory"`
}

// TestResponseDetail is the per-question breakdown fetched after
// submission. Display-only; never authoritative for scoring.
type TestResponseDetail struct {
	ID              int    `json:"id,omitempty"`
	QuestionContent string `json:"questionContent"`
	AnswerText      string `json:"answerText"`
	Score           int    `json:"score"`
}

type TestResponseItem struct {
	QuestionContent string `json:"questionContent"`
	Score           int    `json:"score"`
	AnswerText      string `json:"answerText"`
}

// SubmitTestResponse is the POST /test-responses payload. Exactly one
// of StudentID/ParentID is set.
type SubmitTestResponse struct {
	TestID              int                `json:"testId" validate:"required"`
	TotalScore          int                `json:"totalScore" validate:"gte=0"`
	TestScoreRankResult string             `json:"testScoreRankResult" validate:"required"`
	StudentID           *int               `json:"studentId"`
	ParentID            *int               `json:"parentId"`
	TestResponseItems   []TestResponseItem `json:"testResponseItems" validate:"min=1,dive"`
}
