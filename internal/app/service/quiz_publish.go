package service

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"tle_quiz/internal/common"
	"tle_quiz/internal/common/security"
	"tle_quiz/internal/domain/model"
	"tle_quiz/internal/platform/database"

	log "github.com/sirupsen/logrus"
)

// MakePublic copies a contest quiz into the global pool under a new display
// id. The copy starts hidden and the source is flagged so it is only
// published once.
func (s *ContestQuizService) MakePublic(ctx context.Context, p *security.Principal, req MakePublicRequest) (*model.Quiz, error) {
	if err := common.ValidateInput(&req); err != nil {
		return nil, err
	}
	exists, err := s.quizRepo.DisplayIDExists(ctx, nil, req.DisplayID, nil, "")
	if err != nil {
		return nil, common.Errorf("failed to check display id: %w", err)
	}
	if exists {
		return nil, common.Conflict(msgDuplicatePublicID)
	}

	src, err := s.quizRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, notFoundAs(err, msgQuizNotFound)
	}
	if !src.InContest() || src.IsPublic {
		return nil, common.Invalid(msgAlreadyPublic)
	}
	contest, err := s.contestRepo.FindByID(ctx, *src.ContestID)
	if err != nil {
		return nil, notFoundAs(err, msgQuizNotFound)
	}
	if !p.IsContestAdmin(contest.CreatedBy) {
		return nil, common.NotFound(msgQuizNotFound)
	}

	clone := src.Clone(req.DisplayID, nil)
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		src.IsPublic = true
		if err := s.quizRepo.Update(ctx, tx, src); err != nil {
			return err
		}
		if err := s.quizRepo.Create(ctx, tx, clone); err != nil {
			if errors.Is(err, common.ErrConflict) {
				return common.Conflict(msgDuplicatePublicID)
			}
			return err
		}
		return s.quizRepo.SetTags(ctx, tx, clone.ID, clone.Tags)
	})
	if err != nil {
		return nil, common.Errorf("failed to make quiz public: %w", err)
	}

	log.WithFields(log.Fields{"source_id": src.ID, "quiz_id": clone.ID, "display_id": clone.DisplayID}).Info("Contest quiz made public")
	return clone, nil
}

// AddFromPublic copies a global quiz into a contest that has not ended yet.
// The copy is visible to contestants straight away.
func (s *ContestQuizService) AddFromPublic(ctx context.Context, p *security.Principal, req AddFromPublicRequest) (*model.Quiz, error) {
	if err := common.ValidateInput(&req); err != nil {
		return nil, err
	}
	contest, err := s.contestRepo.FindByID(ctx, req.ContestID)
	if err != nil {
		return nil, notFoundAs(err, msgContestOrQuizGone)
	}
	src, err := s.quizRepo.FindByID(ctx, req.QuizID)
	if err != nil {
		return nil, notFoundAs(err, msgContestOrQuizGone)
	}
	if src.InContest() || !p.IsContestAdmin(contest.CreatedBy) {
		return nil, common.NotFound(msgContestOrQuizGone)
	}

	if contest.Status(time.Now()) == model.ContestEnded {
		return nil, common.Conflict(msgContestEnded)
	}
	exists, err := s.quizRepo.DisplayIDExists(ctx, nil, req.DisplayID, &contest.ID, "")
	if err != nil {
		return nil, common.Errorf("failed to check display id: %w", err)
	}
	if exists {
		return nil, common.Conflict(msgDuplicateContestID)
	}

	clone := src.Clone(req.DisplayID, &contest.ID)
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.quizRepo.Create(ctx, tx, clone); err != nil {
			if errors.Is(err, common.ErrConflict) {
				return common.Conflict(msgDuplicateContestID)
			}
			return err
		}
		return s.quizRepo.SetTags(ctx, tx, clone.ID, clone.Tags)
	})
	if err != nil {
		return nil, common.Errorf("failed to add quiz to contest: %w", err)
	}

	log.WithFields(log.Fields{"source_id": src.ID, "quiz_id": clone.ID, "contest_id": contest.ID}).Info("Public quiz added to contest")
	return clone, nil
}
