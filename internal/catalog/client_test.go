package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListTestsFiltersRoleAndCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tests" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("pageSize"); got != "10" {
			t.Fatalf("pageSize = %s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"count": 3,
			"data": []TestSummary{
				{ID: 1, Title: "Stress Check", TargetUser: "Student", TestCategory: TestCategory{Name: "Psychological"}},
				{ID: 2, Title: "Parent Survey", TargetUser: "parent", TestCategory: TestCategory{Name: "Periodic"}},
				{ID: 3, Title: "Mood Diary", TargetUser: " student ", TestCategory: TestCategory{Name: "Periodic"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	got, count, err := c.ListTests(context.Background(), 1, 10, "student", "")
	if err != nil {
		t.Fatalf("ListTests: %v", err)
	}
	if count != 3 {
		t.Fatalf("count = %d, want 3", count)
	}
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("filtered = %+v, want tests 1 and 3", got)
	}

	got, _, err = c.ListTests(context.Background(), 1, 10, "student", "Psychological")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("category filtered = %+v, want only test 1", got)
	}
}

func TestGetTestDefinition(t *testing.T) {
	def := TestDefinition{
		ID:           1,
		Title:        "Stress Check",
		TestCategory: TestCategory{Name: CategoryPsychological},
		Questions:    []Question{{ID: 11, Content: "q1"}},
		PsychologyTestOptions: []QuestionOption{
			{ID: 1, DisplayedText: "Rarely", Score: 1},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/tests/1" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(def)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	got, err := c.GetTestDefinition(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetTestDefinition: %v", err)
	}
	if !got.Psychological() || len(got.Questions) != 1 {
		t.Fatalf("definition = %+v", got)
	}

	if _, err := c.GetTestDefinition(context.Background(), 99); err == nil {
		t.Fatal("missing test did not error")
	}
}

func TestGetTestDefinitionRejectsNoQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(TestDefinition{ID: 5, Title: "Empty"})
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, nil).GetTestDefinition(context.Background(), 5); err == nil {
		t.Fatal("definition without questions accepted")
	}
}

func TestSubmitCarriesTokenAndStatusError(t *testing.T) {
	var gotAuth string
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("missing principal"))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, func(context.Context) string { return "tok123" })
	student := 1001
	payload := SubmitTestResponse{
		TestID:              1,
		TotalScore:          9,
		TestScoreRankResult: "High",
		StudentID:           &student,
		TestResponseItems:   []TestResponseItem{{QuestionContent: "q1", Score: 3, AnswerText: "Often"}},
	}

	err := c.SubmitTestResponse(context.Background(), payload)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want StatusError", err)
	}
	if se.Status != http.StatusBadRequest || se.Body != "missing principal" {
		t.Fatalf("StatusError = %+v", se)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("Authorization = %q", gotAuth)
	}

	fail = false
	if err := c.SubmitTestResponse(context.Background(), payload); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

func TestGetResponseDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("testId"); got != "1" {
			t.Fatalf("testId = %s", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []TestResponseDetail{{QuestionContent: "q1", AnswerText: "Often", Score: 3}},
		})
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, nil).GetResponseDetails(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetResponseDetails: %v", err)
	}
	if len(got) != 1 || got[0].Score != 3 {
		t.Fatalf("details = %+v", got)
	}
}
