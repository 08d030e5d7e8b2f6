package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"tle_quiz/internal/common"
	"tle_quiz/internal/domain/model"
)

// ProfileRepository reads the per-user quiz status blobs kept by the judge.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error)
}

type sqlProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &sqlProfileRepository{db: db}
}

func (r *sqlProfileRepository) FindByUserID(ctx context.Context, userID string) (*model.UserProfile, error) {
	var acm, oi []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT acm_quizs_status, oi_quizs_status FROM user_profiles WHERE user_id = $1`, userID).Scan(&acm, &oi)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlProfileRepository.FindByUserID: %w", err)
	}

	p := &model.UserProfile{UserID: userID}
	if len(acm) > 0 {
		if err := json.Unmarshal(acm, &p.ACMQuizzesStatus); err != nil {
			return nil, fmt.Errorf("sqlProfileRepository.FindByUserID acm status: %w", err)
		}
	}
	if len(oi) > 0 {
		if err := json.Unmarshal(oi, &p.OIQuizzesStatus); err != nil {
			return nil, fmt.Errorf("sqlProfileRepository.FindByUserID oi status: %w", err)
		}
	}
	return p, nil
}
