package service

import (
	"context"
	"database/sql"
	"strings"
	"tle_quiz/internal/common"
	"tle_quiz/internal/common/security"
	"tle_quiz/internal/domain/model"
	"tle_quiz/internal/domain/repository"
	"tle_quiz/internal/platform/database"

	log "github.com/sirupsen/logrus"
)

// QuizService manages global quizzes (those outside any contest) on behalf
// of admins holding quiz permission.
type QuizService struct {
	quizRepo repository.QuizRepository
	db       *sql.DB // For transactions
}

func NewQuizService(quizRepo repository.QuizRepository, db *sql.DB) *QuizService {
	return &QuizService{quizRepo: quizRepo, db: db}
}

type ListQuizzesParams struct {
	RuleType string
	Keyword  string
	Limit    int
	Offset   int
}

func (s *QuizService) Create(ctx context.Context, p *security.Principal, in QuizInput) (*model.Quiz, error) {
	if err := in.validate(&in); err != nil {
		return nil, err
	}
	exists, err := s.quizRepo.DisplayIDExists(ctx, nil, in.DisplayID, nil, "")
	if err != nil {
		return nil, common.Errorf("failed to check display id: %w", err)
	}
	if exists {
		return nil, common.Conflict(msgDisplayIDExists)
	}

	q := newQuiz(p.UserID, nil)
	in.apply(q)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.quizRepo.Create(ctx, tx, q); err != nil {
			return err
		}
		return s.quizRepo.SetTags(ctx, tx, q.ID, in.Tags)
	})
	if err != nil {
		return nil, common.Errorf("failed to create quiz: %w", err)
	}

	log.WithFields(log.Fields{"quiz_id": q.ID, "display_id": q.DisplayID, "user_id": p.UserID}).Info("Quiz created")
	return s.quizRepo.FindByID(ctx, q.ID)
}

func (s *QuizService) Get(ctx context.Context, p *security.Principal, id string) (*model.Quiz, error) {
	q, err := s.quizRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgQuizNotFound)
	}
	if err := ensureQuizAccess(p, q); err != nil {
		return nil, err
	}
	return q, nil
}

// List returns global quizzes, newest first. Callers without the "manage
// all" capability only see their own.
func (s *QuizService) List(ctx context.Context, p *security.Principal, params ListQuizzesParams) (*common.Page[model.Quiz], error) {
	f := repository.QuizFilter{
		Keyword: strings.TrimSpace(params.Keyword),
		Limit:   params.Limit,
		Offset:  params.Offset,
	}
	if params.RuleType != "" {
		rule := model.RuleType(params.RuleType)
		if !rule.Valid() {
			return nil, common.Invalid(msgInvalidRuleType)
		}
		f.RuleType = rule
	}
	if !p.CanManageAllQuizzes() {
		f.CreatedBy = p.UserID
	}

	quizzes, total, err := s.quizRepo.List(ctx, f)
	if err != nil {
		return nil, common.Errorf("failed to list quizzes: %w", err)
	}
	return &common.Page[model.Quiz]{Results: quizzes, Total: total}, nil
}

func (s *QuizService) Update(ctx context.Context, p *security.Principal, req EditQuizRequest) (*model.Quiz, error) {
	if err := req.validate(&req); err != nil {
		return nil, err
	}
	q, err := s.quizRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, notFoundAs(err, msgQuizNotFound)
	}
	if err := ensureQuizAccess(p, q); err != nil {
		return nil, err
	}

	exists, err := s.quizRepo.DisplayIDExists(ctx, nil, req.DisplayID, q.ContestID, q.ID)
	if err != nil {
		return nil, common.Errorf("failed to check display id: %w", err)
	}
	if exists {
		return nil, common.Conflict(msgDisplayIDExists)
	}

	req.apply(q)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.quizRepo.Update(ctx, tx, q); err != nil {
			return err
		}
		return s.quizRepo.SetTags(ctx, tx, q.ID, req.Tags)
	})
	if err != nil {
		return nil, common.Errorf("failed to update quiz: %w", notFoundAs(err, msgQuizNotFound))
	}

	log.WithFields(log.Fields{"quiz_id": q.ID, "user_id": p.UserID}).Info("Quiz updated")
	return s.quizRepo.FindByID(ctx, q.ID)
}

func (s *QuizService) Delete(ctx context.Context, p *security.Principal, id string) error {
	if id == "" {
		return common.Invalid(msgIDRequired)
	}
	q, err := s.quizRepo.FindByID(ctx, id)
	if err != nil {
		return notFoundAs(err, msgQuizNotFound)
	}
	if q.InContest() {
		return common.NotFound(msgQuizNotFound)
	}
	if err := ensureQuizAccess(p, q); err != nil {
		return err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.quizRepo.Delete(ctx, tx, q.ID)
	})
	if err != nil {
		return common.Errorf("failed to delete quiz: %w", notFoundAs(err, msgQuizNotFound))
	}
	log.WithFields(log.Fields{"quiz_id": q.ID, "user_id": p.UserID}).Info("Quiz deleted")
	return nil
}
