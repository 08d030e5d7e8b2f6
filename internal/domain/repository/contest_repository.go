package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tle_quiz/internal/common"
	"tle_quiz/internal/domain/model"
)

// ContestRepository reads contests owned by the contest subsystem.
type ContestRepository interface {
	FindByID(ctx context.Context, id string) (*model.Contest, error)
}

type sqlContestRepository struct {
	db *sql.DB
}

func NewContestRepository(db *sql.DB) ContestRepository {
	return &sqlContestRepository{db: db}
}

func (r *sqlContestRepository) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	query := `SELECT id, title, rule_type, created_by, start_time, end_time, visible, real_time_rank
	          FROM contests WHERE id = $1`
	c := &model.Contest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.RuleType, &c.CreatedBy, &c.StartTime, &c.EndTime, &c.Visible, &c.RealTimeRank,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlContestRepository.FindByID: %w", err)
	}
	return c, nil
}
