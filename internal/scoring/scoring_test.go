package scoring

import (
	"testing"

	"github.com/mindspace-health/mindspace-core/internal/catalog"
)

func psychDef(ranks []catalog.ScoreRank) *catalog.TestDefinition {
	return &catalog.TestDefinition{
		ID:           1,
		Title:        "Stress Check",
		TestCategory: catalog.TestCategory{Name: catalog.CategoryPsychological},
		Questions: []catalog.Question{
			{ID: 11, Content: "q1"},
			{ID: 12, Content: "q2"},
			{ID: 13, Content: "q3"},
		},
		PsychologyTestOptions: []catalog.QuestionOption{
			{ID: 1, DisplayedText: "a", Score: 1},
			{ID: 2, DisplayedText: "b", Score: 2},
			{ID: 3, DisplayedText: "c", Score: 3},
			{ID: 4, DisplayedText: "d", Score: 4},
		},
		TestScoreRanks: ranks,
	}
}

func answers(scores ...int) map[int]Selection {
	out := map[int]Selection{}
	ids := []int{11, 12, 13}
	for i, s := range scores {
		out[ids[i]] = Selection{OptionID: s, Score: s}
	}
	return out
}

func TestScorePsychologicalRanks(t *testing.T) {
	ranks := []catalog.ScoreRank{
		{MinScore: 0, MaxScore: 4, Result: "Low"},
		{MinScore: 5, MaxScore: 8, Result: "Mid"},
		{MinScore: 9, MaxScore: 12, Result: "High"},
	}
	cases := []struct {
		name       string
		scores     []int
		wantTotal  int
		wantResult string
	}{
		{"all min", []int{1, 1, 1}, 3, "Low"},
		{"mid band", []int{2, 3, 2}, 7, "Mid"},
		{"example scenario", []int{3, 3, 3}, 9, "High"},
		{"all max", []int{4, 4, 4}, 12, "High"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			total, result := Score(psychDef(ranks), answers(c.scores...))
			if total != c.wantTotal || result != c.wantResult {
				t.Fatalf("Score = (%d, %q), want (%d, %q)", total, result, c.wantTotal, c.wantResult)
			}
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	def := psychDef([]catalog.ScoreRank{{MinScore: 0, MaxScore: 12, Result: "Any"}})
	ans := answers(2, 3, 4)
	t1, r1 := Score(def, ans)
	for i := 0; i < 5; i++ {
		t2, r2 := Score(def, ans)
		if t1 != t2 || r1 != r2 {
			t.Fatalf("run %d: Score = (%d, %q), first run gave (%d, %q)", i, t2, r2, t1, r1)
		}
	}
}

func TestScoreOverlappingRanksFirstMatchWins(t *testing.T) {
	ranks := []catalog.ScoreRank{
		{MinScore: 0, MaxScore: 10, Result: "Low"},
		{MinScore: 5, MaxScore: 15, Result: "Mid"},
	}
	total, result := Score(psychDef(ranks), answers(3, 3, 1))
	if total != 7 || result != "Low" {
		t.Fatalf("Score = (%d, %q), want (7, %q)", total, result, "Low")
	}
}

func TestScoreUndefinedFallback(t *testing.T) {
	cases := []struct {
		name  string
		ranks []catalog.ScoreRank
	}{
		{"no matching rank", []catalog.ScoreRank{{MinScore: 100, MaxScore: 200, Result: "Unreachable"}}},
		{"empty ranks", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			total, result := Score(psychDef(c.ranks), answers(4, 4, 4))
			if total != 12 || result != ResultUndefined {
				t.Fatalf("Score = (%d, %q), want (12, %q)", total, result, ResultUndefined)
			}
		})
	}
}

func TestScoreNonPsychologicalPlaceholder(t *testing.T) {
	def := &catalog.TestDefinition{
		TestCategory: catalog.TestCategory{Name: "Periodic"},
		Questions:    []catalog.Question{{ID: 21}, {ID: 22}},
		TestScoreRanks: []catalog.ScoreRank{
			{MinScore: 0, MaxScore: 100, Result: "IgnoredAnyway"},
		},
	}
	ans := map[int]Selection{
		21: {OptionID: 211, Score: 5},
		22: {OptionID: 222, Score: 9},
	}
	total, result := Score(def, ans)
	if total != 0 || result != ResultSurveyCompleted {
		t.Fatalf("Score = (%d, %q), want (0, %q)", total, result, ResultSurveyCompleted)
	}
}
