package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/mindspace-health/mindspace-core/internal/catalog"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutTest(ctx context.Context, def catalog.TestDefinition) error {
	qj, err := json.Marshal(def.Questions)
	if err != nil {
		return err
	}
	oj, err := json.Marshal(def.PsychologyTestOptions)
	if err != nil {
		return err
	}
	rj, err := json.Marshal(def.TestScoreRanks)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tests (id,title,description,target_user,category,questions_json,psych_options_json,score_ranks_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
		  target_user=EXCLUDED.target_user, category=EXCLUDED.category,
		  questions_json=EXCLUDED.questions_json, psych_options_json=EXCLUDED.psych_options_json,
		  score_ranks_json=EXCLUDED.score_ranks_json`,
		def.ID, def.Title, def.Description, def.TargetUser, def.TestCategory.Name,
		string(qj), string(oj), string(rj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id int) (catalog.TestDefinition, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,description,target_user,category,questions_json,psych_options_json,score_ranks_json FROM tests WHERE id=$1`, id)
	var def catalog.TestDefinition
	var qj, oj, rj string
	err := row.Scan(&def.ID, &def.Title, &def.Description, &def.TargetUser, &def.TestCategory.Name, &qj, &oj, &rj)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.TestDefinition{}, ErrTestNotFound
	}
	if err != nil {
		return catalog.TestDefinition{}, err
	}
	if err := json.Unmarshal([]byte(qj), &def.Questions); err != nil {
		return catalog.TestDefinition{}, err
	}
	if err := json.Unmarshal([]byte(oj), &def.PsychologyTestOptions); err != nil {
		return catalog.TestDefinition{}, err
	}
	if err := json.Unmarshal([]byte(rj), &def.TestScoreRanks); err != nil {
		return catalog.TestDefinition{}, err
	}
	return def, nil
}

func (s *SQLStore) ListTests(ctx context.Context, offset, limit int) ([]catalog.TestSummary, int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tests`).Scan(&count); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,description,target_user,category FROM tests ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []catalog.TestSummary{}
	for rows.Next() {
		var t catalog.TestSummary
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.TargetUser, &t.TestCategory.Name); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, count, rows.Err()
}

func (s *SQLStore) SaveResponse(ctx context.Context, r StoredResponse) error {
	ij, err := json.Marshal(r.Items)
	if err != nil {
		return err
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO test_responses (id,test_id,student_id,parent_id,total_score,rank_result,items_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		r.ID, r.TestID, r.StudentID, r.ParentID, r.TotalScore, r.RankResult, string(ij), r.CreatedAt)
	return err
}

func (s *SQLStore) LatestResponse(ctx context.Context, testID int, studentID, parentID *int) (StoredResponse, bool, error) {
	q := `SELECT id,test_id,student_id,parent_id,total_score,rank_result,items_json,created_at
		FROM test_responses WHERE test_id=$1`
	args := []any{testID}
	switch {
	case studentID != nil:
		q += ` AND student_id=$2`
		args = append(args, *studentID)
	case parentID != nil:
		q += ` AND parent_id=$2`
		args = append(args, *parentID)
	}
	q += ` ORDER BY created_at DESC, id DESC LIMIT 1`

	row := s.db.QueryRowContext(ctx, q, args...)
	var r StoredResponse
	var ij string
	err := row.Scan(&r.ID, &r.TestID, &r.StudentID, &r.ParentID, &r.TotalScore, &r.RankResult, &ij, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredResponse{}, false, nil
	}
	if err != nil {
		return StoredResponse{}, false, err
	}
	if err := json.Unmarshal([]byte(ij), &r.Items); err != nil {
		r.Items = nil
	}
	return r, true, nil
}

func (s *SQLStore) PutAccount(ctx context.Context, a Account) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO accounts (id,email,pass_hash,role,student_id,parent_id,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (email) DO UPDATE SET pass_hash=EXCLUDED.pass_hash, role=EXCLUDED.role,
		  student_id=EXCLUDED.student_id, parent_id=EXCLUDED.parent_id`,
		a.ID, a.Email, a.PassHash, a.Role, a.StudentID, a.ParentID, time.Now().Unix())
	return err
}

func (s *SQLStore) GetAccountByEmail(ctx context.Context, email string) (Account, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,email,pass_hash,role,student_id,parent_id FROM accounts WHERE email=$1`, email)
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.PassHash, &a.Role, &a.StudentID, &a.ParentID)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}
