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

// ContestQuizService manages quizzes owned by a contest, plus the copies
// between a contest and the global pool.
type ContestQuizService struct {
	quizRepo       repository.QuizRepository
	contestRepo    repository.ContestRepository
	submissionRepo repository.SubmissionRepository
	db             *sql.DB
}

func NewContestQuizService(
	quizRepo repository.QuizRepository,
	contestRepo repository.ContestRepository,
	submissionRepo repository.SubmissionRepository,
	db *sql.DB,
) *ContestQuizService {
	return &ContestQuizService{
		quizRepo:       quizRepo,
		contestRepo:    contestRepo,
		submissionRepo: submissionRepo,
		db:             db,
	}
}

type ListContestQuizzesParams struct {
	ContestID string
	Keyword   string
	Limit     int
	Offset    int
}

// ownedContest loads the contest and checks the caller administers it.
func (s *ContestQuizService) ownedContest(ctx context.Context, p *security.Principal, contestID string) (*model.Contest, error) {
	c, err := s.contestRepo.FindByID(ctx, contestID)
	if err != nil {
		return nil, notFoundAs(err, msgContestNotFound)
	}
	if err := ensureContestAccess(p, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContestQuizService) Create(ctx context.Context, p *security.Principal, req CreateContestQuizRequest) (*model.Quiz, error) {
	if err := req.validate(&req); err != nil {
		return nil, err
	}
	contest, err := s.ownedContest(ctx, p, req.ContestID)
	if err != nil {
		return nil, err
	}
	if req.RuleType != contest.RuleType {
		return nil, common.Invalid(msgRuleTypeMismatch)
	}

	exists, err := s.quizRepo.DisplayIDExists(ctx, nil, req.DisplayID, &contest.ID, "")
	if err != nil {
		return nil, common.Errorf("failed to check display id: %w", err)
	}
	if exists {
		return nil, common.Conflict(msgDisplayIDExists)
	}

	q := newQuiz(p.UserID, &contest.ID)
	req.apply(q)
	if err := q.Validate(); err != nil {
		return nil, err
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.quizRepo.Create(ctx, tx, q); err != nil {
			return err
		}
		return s.quizRepo.SetTags(ctx, tx, q.ID, req.Tags)
	})
	if err != nil {
		return nil, common.Errorf("failed to create contest quiz: %w", err)
	}

	log.WithFields(log.Fields{"quiz_id": q.ID, "contest_id": contest.ID, "display_id": q.DisplayID}).Info("Contest quiz created")
	return s.quizRepo.FindByID(ctx, q.ID)
}

func (s *ContestQuizService) Get(ctx context.Context, p *security.Principal, id string) (*model.Quiz, error) {
	q, err := s.quizRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, msgQuizNotFound)
	}
	if !q.InContest() {
		return nil, common.NotFound(msgQuizNotFound)
	}
	if _, err := s.ownedContest(ctx, p, *q.ContestID); err != nil {
		return nil, err
	}
	return q, nil
}

// List filters by title only; contest quizzes are looked up by display id
// through Get.
func (s *ContestQuizService) List(ctx context.Context, p *security.Principal, params ListContestQuizzesParams) (*common.Page[model.Quiz], error) {
	if params.ContestID == "" {
		return nil, common.Invalid(msgContestIDRequired)
	}
	contest, err := s.ownedContest(ctx, p, params.ContestID)
	if err != nil {
		return nil, err
	}

	quizzes, total, err := s.quizRepo.List(ctx, repository.QuizFilter{
		ContestID: &contest.ID,
		Keyword:   strings.TrimSpace(params.Keyword),
		TitleOnly: true,
		Limit:     params.Limit,
		Offset:    params.Offset,
	})
	if err != nil {
		return nil, common.Errorf("failed to list contest quizzes: %w", err)
	}
	return &common.Page[model.Quiz]{Results: quizzes, Total: total}, nil
}

func (s *ContestQuizService) Update(ctx context.Context, p *security.Principal, req EditContestQuizRequest) (*model.Quiz, error) {
	if err := req.validate(&req); err != nil {
		return nil, err
	}
	contest, err := s.ownedContest(ctx, p, req.ContestID)
	if err != nil {
		return nil, err
	}
	if req.RuleType != contest.RuleType {
		return nil, common.Invalid(msgRuleTypeMismatch)
	}

	q, err := s.quizRepo.FindByID(ctx, req.ID)
	if err != nil {
		return nil, notFoundAs(err, msgQuizNotFound)
	}
	if !q.InContest() || *q.ContestID != contest.ID {
		return nil, common.NotFound(msgQuizNotFound)
	}

	exists, err := s.quizRepo.DisplayIDExists(ctx, nil, req.DisplayID, &contest.ID, q.ID)
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
		return nil, common.Errorf("failed to update contest quiz: %w", notFoundAs(err, msgQuizNotFound))
	}

	log.WithFields(log.Fields{"quiz_id": q.ID, "contest_id": contest.ID}).Info("Contest quiz updated")
	return s.quizRepo.FindByID(ctx, q.ID)
}

// Delete refuses once the quiz has been submitted to, since submissions and
// rankings refer to it.
func (s *ContestQuizService) Delete(ctx context.Context, p *security.Principal, id string) error {
	if id == "" {
		return common.Invalid(msgIDRequired)
	}
	q, err := s.quizRepo.FindByID(ctx, id)
	if err != nil {
		return notFoundAs(err, msgQuizNotFound)
	}
	if !q.InContest() {
		return common.NotFound(msgQuizNotFound)
	}
	if _, err := s.ownedContest(ctx, p, *q.ContestID); err != nil {
		return err
	}

	has, err := s.submissionRepo.ExistsForQuiz(ctx, q.ID)
	if err != nil {
		return common.Errorf("failed to check submissions: %w", err)
	}
	if has {
		return common.Conflict(msgHasSubmissions)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.quizRepo.Delete(ctx, tx, q.ID)
	})
	if err != nil {
		return common.Errorf("failed to delete contest quiz: %w", notFoundAs(err, msgQuizNotFound))
	}
	log.WithFields(log.Fields{"quiz_id": q.ID, "contest_id": *q.ContestID}).Info("Contest quiz deleted")
	return nil
}
