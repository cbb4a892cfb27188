// Package scoring computes a test attempt's total score and result
// label from the definition's server-declared scoring rules.
package scoring

import "github.com/mindspace-health/mindspace-core/internal/catalog"

// ResultUndefined is the canonical sentinel when a psychological total
// falls outside every declared score rank.
const ResultUndefined = "Undefined"

// ResultSurveyCompleted marks non-psychological categories, which are
// not scored on-device.
const ResultSurveyCompleted = "Survey Completed"

// Selection is one chosen option for one question. Score carries the
// shared-scale score on psychological tests and is zero otherwise.
type Selection struct {
	OptionID int
	Score    int
}

// Score maps a complete answer set to {totalScore, result}. Pure and
// deterministic. The caller guarantees completeness: exactly one
// selection per question in def. Incomplete input is a contract
// violation, not a runtime condition, and is not detected here.
func Score(def *catalog.TestDefinition, answers map[int]Selection) (int, string) {
	if !def.Psychological() {
		return 0, ResultSurveyCompleted
	}
	total := 0
	for _, q := range def.Questions {
		total += answers[q.ID].Score
	}
	// First matching rank wins; definition order is significant.
	for _, rank := range def.TestScoreRanks {
		if total >= rank.MinScore && total <= rank.MaxScore {
			return total, rank.Result
		}
	}
	return total, ResultUndefined
}
