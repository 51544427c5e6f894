package gabarito

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutTemplate(ctx context.Context, t *Template) error {
	aj, err := json.Marshal(t.Alphabet)
	if err != nil {
		return err
	}
	kj, err := json.Marshal(t.AnswerKey)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO templates (id,title,description,question_count,alphabet_json,answer_key_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID, t.Title, t.Description, t.QuestionCount, string(aj), string(kj), t.CreatedAt)
	return err
}

func (s *SQLStore) GetTemplate(ctx context.Context, id string) (*Template, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,description,question_count,alphabet_json,answer_key_json,created_at
		FROM templates WHERE id=$1`, id)
	t, err := scanTemplate(row)
	if err != nil {
		return nil, err
	}
	t.Results, err = s.loadResults(ctx, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *SQLStore) ListTemplates(ctx context.Context, opts ListOpts) ([]TemplateSummary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.title, t.question_count, t.created_at,
			(SELECT COUNT(*) FROM results r WHERE r.template_id = t.id)
		FROM templates t
		WHERE ($1 = '' OR t.title LIKE '%' || $1 || '%')
		ORDER BY t.created_at DESC, t.id
		LIMIT $2 OFFSET $3`, opts.Q, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []TemplateSummary{}
	for rows.Next() {
		var ts TemplateSummary
		if err := rows.Scan(&ts.ID, &ts.Title, &ts.QuestionCount, &ts.CreatedAt, &ts.ResultCount); err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *SQLStore) AppendResult(ctx context.Context, templateID string, r Result) (*Template, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// re-read the question count inside the transaction; appends for one
	// template serialize on the results table insert
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT question_count FROM templates WHERE id=$1`, templateID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if len(r.Answers) != count {
		return nil, &MalformedSubmissionError{Got: len(r.Answers), Want: count}
	}

	ansJSON, err := json.Marshal(r.Answers)
	if err != nil {
		return nil, err
	}
	outJSON, err := json.Marshal(r.Outcomes)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO results
		(id,template_id,student_name,student_registration,student_section,answers_json,outcomes_json,score,total,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		r.ID, templateID, r.Student.Name, r.Student.Registration, r.Student.Section,
		string(ansJSON), string(outJSON), r.Score, r.Total, r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetTemplate(ctx, templateID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (*Template, error) {
	var t Template
	var ajson, kjson string
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.QuestionCount, &ajson, &kjson, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(ajson), &t.Alphabet); err != nil {
		return nil, fmt.Errorf("alphabet: %w", err)
	}
	if err := json.Unmarshal([]byte(kjson), &t.AnswerKey); err != nil {
		return nil, fmt.Errorf("answer key: %w", err)
	}
	return &t, nil
}

// loadResults returns the history newest-first: rows are ordered by the seq
// column, so insertion order is the append order regardless of timestamps.
func (s *SQLStore) loadResults(ctx context.Context, templateID string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,student_name,student_registration,student_section,answers_json,outcomes_json,score,total,created_at
		FROM results WHERE template_id=$1 ORDER BY seq DESC`, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Result{}
	for rows.Next() {
		var r Result
		var ansJSON, outJSON string
		if err := rows.Scan(&r.ID, &r.Student.Name, &r.Student.Registration, &r.Student.Section,
			&ansJSON, &outJSON, &r.Score, &r.Total, &r.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ansJSON), &r.Answers); err != nil {
			return nil, fmt.Errorf("answers: %w", err)
		}
		if err := json.Unmarshal([]byte(outJSON), &r.Outcomes); err != nil {
			return nil, fmt.Errorf("outcomes: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
