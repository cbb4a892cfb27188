package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindspace-health/mindspace-core/internal/catalog"
	"github.com/mindspace-health/mindspace-core/internal/roles"
)

func intp(n int) *int { return &n }

// SeedDemo loads a small catalog and three demo accounts so a fresh
// server is immediately usable from the CLI. Idempotent.
func SeedDemo(ctx context.Context, store Store) error {
	scale := []catalog.QuestionOption{
		{ID: 1, DisplayedText: "Rarely", Score: 1},
		{ID: 2, DisplayedText: "Sometimes", Score: 2},
		{ID: 3, DisplayedText: "Often", Score: 3},
		{ID: 4, DisplayedText: "Nearly every day", Score: 4},
	}
	tests := []catalog.TestDefinition{
		{
			ID:           1,
			Title:        "Stress Check",
			Description:  "A short self-assessment of recent stress levels.",
			TargetUser:   roles.Student,
			TestCategory: catalog.TestCategory{ID: 1, Name: catalog.CategoryPsychological},
			Questions: []catalog.Question{
				{ID: 11, Content: "I have trouble falling asleep."},
				{ID: 12, Content: "I feel overwhelmed by schoolwork."},
				{ID: 13, Content: "I find it hard to relax."},
			},
			PsychologyTestOptions: scale,
			TestScoreRanks: []catalog.ScoreRank{
				{MinScore: 0, MaxScore: 4, Result: "Low"},
				{MinScore: 5, MaxScore: 8, Result: "Mid"},
				{MinScore: 9, MaxScore: 12, Result: "High"},
			},
		},
		{
			ID:           2,
			Title:        "Weekly Wellbeing Survey",
			Description:  "Periodic check-in, reviewed by your psychologist.",
			TargetUser:   roles.Parent,
			TestCategory: catalog.TestCategory{ID: 2, Name: "Periodic"},
			Questions: []catalog.Question{
				{ID: 21, Content: "How was your child's mood this week?", QuestionOptions: []catalog.QuestionOption{
					{ID: 211, DisplayedText: "Mostly positive"},
					{ID: 212, DisplayedText: "Mixed"},
					{ID: 213, DisplayedText: "Mostly negative"},
				}},
				{ID: 22, Content: "Any changes in sleep or appetite?", QuestionOptions: []catalog.QuestionOption{
					{ID: 221, DisplayedText: "No changes"},
					{ID: 222, DisplayedText: "Some changes"},
					{ID: 223, DisplayedText: "Significant changes"},
				}},
			},
		},
	}
	for _, t := range tests {
		if err := store.PutTest(ctx, t); err != nil {
			return fmt.Errorf("seed test %d: %w", t.ID, err)
		}
	}

	accounts := []struct {
		email, password, role string
		studentID, parentID   *int
	}{
		{"student@mindspace.dev", "student123", roles.Student, intp(1001), nil},
		{"parent@mindspace.dev", "parent123", roles.Parent, nil, intp(2001)},
		{"psych@mindspace.dev", "psych123", roles.Psychologist, nil, nil},
	}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		acct := Account{
			ID:        uuid.NewString(),
			Email:     a.email,
			PassHash:  string(hash),
			Role:      a.role,
			StudentID: a.studentID,
			ParentID:  a.parentID,
		}
		if err := store.PutAccount(ctx, acct); err != nil {
			return fmt.Errorf("seed account %s: %w", a.email, err)
		}
	}
	return nil
}
