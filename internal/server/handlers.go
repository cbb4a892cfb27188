package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mindspace-health/mindspace-core/internal/auth"
	"github.com/mindspace-health/mindspace-core/internal/catalog"
	"github.com/mindspace-health/mindspace-core/internal/roles"
)

var validate = validator.New()

// POST /auth/login  { "email": "...", "password": "..." }
func LoginHandler(a *auth.Service, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		acct, err := store.GetAccountByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(acct.PassHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.Issue(acct.ID, acct.Role, acct.StudentID, acct.ParentID)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": tok})
	}
}

// GET /api/v1/tests?pageIndex=1&pageSize=10
func ListTestsHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageIndex := parseIntDefault(r.URL.Query().Get("pageIndex"), 1)
		pageSize := parseIntDefault(r.URL.Query().Get("pageSize"), 10)
		if pageIndex < 1 {
			pageIndex = 1
		}
		if pageSize < 1 || pageSize > 100 {
			pageSize = 10
		}
		data, count, err := store.ListTests(r.Context(), (pageIndex-1)*pageSize, pageSize)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "count": count})
	}
}

// GET /api/v1/tests/{testID}
func GetTestHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "testID"))
		if err != nil {
			http.Error(w, "bad test id", http.StatusBadRequest)
			return
		}
		def, err := store.GetTest(r.Context(), id)
		if errors.Is(err, ErrTestNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(def)
	}
}

// POST /api/v1/test-responses
func SubmitResponseHandler(store Store, events *EventLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := auth.RoleFromContext(r.Context())
		if !roles.Can(role, "test-response:submit") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		var req catalog.SubmitTestResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if (req.StudentID == nil) == (req.ParentID == nil) {
			http.Error(w, "exactly one of studentId and parentId is required", http.StatusBadRequest)
			return
		}
		if _, err := store.GetTest(r.Context(), req.TestID); err != nil {
			if errors.Is(err, ErrTestNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resp := StoredResponse{
			ID:         uuid.NewString(),
			TestID:     req.TestID,
			StudentID:  req.StudentID,
			ParentID:   req.ParentID,
			TotalScore: req.TotalScore,
			RankResult: req.TestScoreRankResult,
			Items:      req.TestResponseItems,
			CreatedAt:  time.Now().Unix(),
		}
		if err := store.SaveResponse(r.Context(), resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		buf, _ := json.Marshal(req)
		if err := events.Append(r.Context(), Event{
			Type:     EventTypeResponseSubmitted,
			Key:      resp.ID,
			DataJSON: string(buf),
		}); err != nil {
			// Audit trail failure must not reject an accepted submission.
			log.Printf("eventlog: append %s: %v", resp.ID, err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": resp.ID})
	}
}

// GET /api/v1/test-responses?testId=...
// Roles with view-own see their latest submission for the test; a
// psychologist (view-all) sees the latest from anyone.
func ResponseDetailsHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testID, err := strconv.Atoi(r.URL.Query().Get("testId"))
		if err != nil {
			http.Error(w, "testId required", http.StatusBadRequest)
			return
		}
		role := auth.RoleFromContext(r.Context())
		var studentID, parentID *int
		if !roles.Can(role, "test-response:view-all") {
			claims := auth.ClaimsFromContext(r.Context())
			if claims == nil || (claims.StudentID == nil && claims.ParentID == nil) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			studentID, parentID = claims.StudentID, claims.ParentID
		}
		resp, ok, err := store.LatestResponse(r.Context(), testID, studentID, parentID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		details := []catalog.TestResponseDetail{}
		if ok {
			for i, item := range resp.Items {
				details = append(details, catalog.TestResponseDetail{
					ID:              i + 1,
					QuestionContent: item.QuestionContent,
					AnswerText:      item.AnswerText,
					Score:           item.Score,
				})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": details})
	}
}

// NewRouter assembles the API with the standard middleware stack.
func NewRouter(authSvc *auth.Service, store Store, events *EventLog, corsOrigins []string) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", LoginHandler(authSvc, store))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Route("/api/v1", func(ar chi.Router) {
			ar.Get("/tests", ListTestsHandler(store))
			ar.Get("/tests/{testID}", GetTestHandler(store))
			ar.Post("/test-responses", SubmitResponseHandler(store, events))
			ar.Get("/test-responses", ResponseDetailsHandler(store))
		})
	})
	return r
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
