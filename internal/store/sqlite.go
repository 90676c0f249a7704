// internal/store/sqlite.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	_ "modernc.org/sqlite"

	"github.com/examtrainer/backend/internal/domain/question"
	"github.com/examtrainer/backend/internal/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS questions (
    id TEXT PRIMARY KEY,
    text TEXT NOT NULL UNIQUE,
    options TEXT NOT NULL,
    correct INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS progress (
    username TEXT PRIMARY KEY,
    answers TEXT NOT NULL,
    shuffled_options TEXT NOT NULL,
    current_index INTEGER NOT NULL,
    mode TEXT NOT NULL
);
`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ============================================================================
// Questions
// ============================================================================

func (s *SQLiteStore) ListQuestions(ctx context.Context) ([]question.Question, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, text, options, correct FROM questions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []question.Question
	for rows.Next() {
		var q question.Question
		var optionsJSON string
		if err := rows.Scan(&q.ID, &q.Text, &optionsJSON, &q.Correct); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(optionsJSON), &q.Options); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// AddQuestion inserts q; a question whose text already exists in the bank
// returns ErrDuplicate.
func (s *SQLiteStore) AddQuestion(ctx context.Context, q *question.Question) error {
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO questions (id, text, options, correct) VALUES (?, ?, ?, ?)",
		q.ID, q.Text, string(optionsJSON), q.Correct,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

// ImportQuestions inserts each question in order, counting and skipping
// duplicates instead of failing the batch.
func (s *SQLiteStore) ImportQuestions(ctx context.Context, questions []*question.Question) (ImportSummary, error) {
	var summary ImportSummary
	for _, q := range questions {
		err := s.AddQuestion(ctx, q)
		switch {
		case errors.Is(err, ErrDuplicate):
			summary.Duplicates++
		case err != nil:
			return summary, err
		default:
			summary.Added++
		}
	}

	total, err := s.CountQuestions(ctx)
	if err != nil {
		return summary, err
	}
	summary.Total = total
	return summary, nil
}

func (s *SQLiteStore) CountQuestions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM questions").Scan(&n)
	return n, err
}

// ============================================================================
// Progress
// ============================================================================

func (s *SQLiteStore) GetProgress(ctx context.Context, username string) (session.Progress, error) {
	p := session.EmptyProgress()
	var answersJSON, shuffledJSON string

	err := s.db.QueryRowContext(ctx,
		"SELECT answers, shuffled_options, current_index, mode FROM progress WHERE username = ?",
		username,
	).Scan(&answersJSON, &shuffledJSON, &p.CurrentIndex, &p.Mode)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal([]byte(answersJSON), &p.Answers); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(shuffledJSON), &p.ShuffledOptions); err != nil {
		return p, err
	}
	return p, nil
}

// SaveProgress upserts the user's progress. Two devices writing the same
// user race on last-write-wins; that is the accepted model here.
func (s *SQLiteStore) SaveProgress(ctx context.Context, username string, p session.Progress) error {
	answersJSON, err := json.Marshal(p.Answers)
	if err != nil {
		return err
	}
	shuffledJSON, err := json.Marshal(p.ShuffledOptions)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress (username, answers, shuffled_options, current_index, mode)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			answers = excluded.answers,
			shuffled_options = excluded.shuffled_options,
			current_index = excluded.current_index,
			mode = excluded.mode
	`, username, string(answersJSON), string(shuffledJSON), p.CurrentIndex, string(p.Mode))
	return err
}

// DeleteProgress removes the user's progress. Deleting progress that was
// never created is a no-op, so session reset stays idempotent.
func (s *SQLiteStore) DeleteProgress(ctx context.Context, username string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM progress WHERE username = ?", username)
	return err
}
