package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// SubmissionRepository answers the one question quiz management asks of
// the judge's submission table.
type SubmissionRepository interface {
	ExistsForQuiz(ctx context.Context, quizID string) (bool, error)
}

type sqlSubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &sqlSubmissionRepository{db: db}
}

func (r *sqlSubmissionRepository) ExistsForQuiz(ctx context.Context, quizID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (SELECT 1 FROM submissions WHERE quiz_id = $1 LIMIT 1) s`, quizID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlSubmissionRepository.ExistsForQuiz: %w", err)
	}
	return n > 0, nil
}
