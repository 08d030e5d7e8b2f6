package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"time"
	"tle_quiz/internal/common"
	"tle_quiz/internal/common/security"
	"tle_quiz/internal/domain/model"
	"tle_quiz/internal/domain/quiztemplate"
	"tle_quiz/internal/domain/repository"
)

const (
	msgNoQuizToPick      = "No quiz to pick"
	msgLimitNeeded       = "Limit is needed"
	msgContestNotStarted = "Contest has not started yet."
	msgContestQuizGone   = "Quiz does not exist."
)

// QuizView is what end users see of a quiz. Judge internals (test cases,
// SPJ source, bundle ids) never leave the server. QuizDetails is left out
// for contests that keep statistics hidden.
type QuizView struct {
	ID                string            `json:"id"`
	DisplayID         string            `json:"display_id"`
	ContestID         *string           `json:"contest_id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	InputDescription  string            `json:"input_description"`
	OutputDescription string            `json:"output_description"`
	Samples           []model.Sample    `json:"samples"`
	Hint              string            `json:"hint"`
	Languages         []string          `json:"languages"`
	Template          map[string]string `json:"template"`
	TimeLimit         int               `json:"time_limit"`
	MemoryLimit       int               `json:"memory_limit"`
	IOMode            model.IOMode      `json:"io_mode"`
	SPJ               bool              `json:"spj"`
	SPJLanguage       *string           `json:"spj_language"`
	RuleType          model.RuleType    `json:"rule_type"`
	Source            string            `json:"source"`
	TotalScore        int               `json:"total_score"`
	ShareSubmission   bool              `json:"share_submission"`
	CreatedBy         string            `json:"created_by"`
	CreateTime        time.Time         `json:"create_time"`
	Tags              []string          `json:"tags"`
	*QuizDetails
}

type QuizDetails struct {
	Difficulty       model.Difficulty `json:"difficulty"`
	SubmissionNumber int64            `json:"submission_number"`
	AcceptedNumber   int64            `json:"accepted_number"`
	StatisticInfo    map[string]any   `json:"statistic_info"`
	MyStatus         json.RawMessage  `json:"my_status"`
}

func newQuizView(q *model.Quiz, details bool) QuizView {
	v := QuizView{
		ID:                q.ID,
		DisplayID:         q.DisplayID,
		ContestID:         q.ContestID,
		Title:             q.Title,
		Description:       q.Description,
		InputDescription:  q.InputDescription,
		OutputDescription: q.OutputDescription,
		Samples:           q.Samples,
		Hint:              q.Hint,
		Languages:         q.Languages,
		Template:          quiztemplate.UserTemplates(q.Template),
		TimeLimit:         q.TimeLimit,
		MemoryLimit:       q.MemoryLimit,
		IOMode:            q.IOMode,
		SPJ:               q.SPJ,
		SPJLanguage:       q.SPJLanguage,
		RuleType:          q.RuleType,
		Source:            q.Source,
		TotalScore:        q.TotalScore,
		ShareSubmission:   q.ShareSubmission,
		CreatedBy:         q.CreatedBy,
		CreateTime:        q.CreateTime,
		Tags:              q.Tags,
	}
	if details {
		v.QuizDetails = &QuizDetails{
			Difficulty:       q.Difficulty,
			SubmissionNumber: q.SubmissionNumber,
			AcceptedNumber:   q.AcceptedNumber,
			StatisticInfo:    q.StatisticInfo,
		}
	}
	return v
}

// PublicQuizService answers the end-user quiz pages. The viewer may be nil
// for anonymous requests.
type PublicQuizService struct {
	quizRepo    repository.QuizRepository
	contestRepo repository.ContestRepository
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

func NewPublicQuizService(
	quizRepo repository.QuizRepository,
	contestRepo repository.ContestRepository,
	profileRepo repository.ProfileRepository,
) *PublicQuizService {
	return &PublicQuizService{
		quizRepo:    quizRepo,
		contestRepo: contestRepo,
		profileRepo: profileRepo,
		now:         time.Now,
	}
}

type PublicListParams struct {
	Keyword    string
	Tag        string
	Difficulty string
	Limit      int
	Offset     int
}

// Tags lists the tags attached to at least one quiz.
func (s *PublicQuizService) Tags(ctx context.Context, keyword string) ([]model.Tag, error) {
	tags, err := s.quizRepo.ListTagsInUse(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return nil, common.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// PickOne returns the display id of a random visible global quiz.
func (s *PublicQuizService) PickOne(ctx context.Context) (string, error) {
	n, err := s.quizRepo.CountPickable(ctx)
	if err != nil {
		return "", common.Errorf("failed to count quizzes: %w", err)
	}
	if n == 0 {
		return "", common.NotFound(msgNoQuizToPick)
	}
	id, err := s.quizRepo.PickableDisplayIDAt(ctx, rand.IntN(n))
	if err != nil {
		// the pool shrank between the two queries
		return "", notFoundAs(err, msgNoQuizToPick)
	}
	return id, nil
}

func (s *PublicQuizService) Get(ctx context.Context, viewer *security.Principal, displayID string) (*QuizView, error) {
	q, err := s.quizRepo.FindByDisplayID(ctx, displayID, nil)
	if err != nil {
		return nil, notFoundAs(err, msgQuizNotFound)
	}
	if !q.Visible {
		return nil, common.NotFound(msgQuizNotFound)
	}

	profile, err := s.profile(ctx, viewer)
	if err != nil {
		return nil, err
	}
	v := newQuizView(q, true)
	v.MyStatus = profile.StatusFor(q.RuleType, q.ID, false)
	return &v, nil
}

func (s *PublicQuizService) List(ctx context.Context, viewer *security.Principal, params PublicListParams) (*common.Page[QuizView], error) {
	if params.Limit <= 0 {
		return nil, common.Invalid(msgLimitNeeded)
	}
	quizzes, total, err := s.quizRepo.List(ctx, repository.QuizFilter{
		Keyword:     strings.TrimSpace(params.Keyword),
		Tag:         params.Tag,
		Difficulty:  model.Difficulty(params.Difficulty),
		VisibleOnly: true,
		Limit:       params.Limit,
		Offset:      params.Offset,
	})
	if err != nil {
		return nil, common.Errorf("failed to list quizzes: %w", err)
	}

	profile, err := s.profile(ctx, viewer)
	if err != nil {
		return nil, err
	}
	views := make([]QuizView, len(quizzes))
	for i := range quizzes {
		views[i] = newQuizView(&quizzes[i], true)
		views[i].MyStatus = profile.StatusFor(quizzes[i].RuleType, quizzes[i].ID, false)
	}
	return &common.Page[QuizView]{Results: views, Total: total}, nil
}

// GetContestQuiz returns one visible quiz of a contest by display id.
func (s *PublicQuizService) GetContestQuiz(ctx context.Context, viewer *security.Principal, contestID, displayID string) (*QuizView, error) {
	contest, details, err := s.contestForViewer(ctx, viewer, contestID)
	if err != nil {
		return nil, err
	}
	q, err := s.quizRepo.FindByDisplayID(ctx, displayID, &contest.ID)
	if err != nil {
		return nil, notFoundAs(err, msgContestQuizGone)
	}
	if !q.Visible {
		return nil, common.NotFound(msgContestQuizGone)
	}

	v := newQuizView(q, details)
	if details {
		profile, err := s.profile(ctx, viewer)
		if err != nil {
			return nil, err
		}
		v.MyStatus = profile.StatusFor(contest.RuleType, q.ID, true)
	}
	return &v, nil
}

// ListContestQuizzes returns every visible quiz of a contest.
func (s *PublicQuizService) ListContestQuizzes(ctx context.Context, viewer *security.Principal, contestID string) ([]QuizView, error) {
	contest, details, err := s.contestForViewer(ctx, viewer, contestID)
	if err != nil {
		return nil, err
	}
	quizzes, _, err := s.quizRepo.List(ctx, repository.QuizFilter{ContestID: &contest.ID, VisibleOnly: true})
	if err != nil {
		return nil, common.Errorf("failed to list contest quizzes: %w", err)
	}

	var profile *model.UserProfile
	if details {
		if profile, err = s.profile(ctx, viewer); err != nil {
			return nil, err
		}
	}
	views := make([]QuizView, len(quizzes))
	for i := range quizzes {
		views[i] = newQuizView(&quizzes[i], details)
		if details {
			views[i].MyStatus = profile.StatusFor(contest.RuleType, quizzes[i].ID, true)
		}
	}
	return views, nil
}

// contestForViewer admits the viewer to a contest's quizzes and reports
// whether they get the detailed view. Contest admins skip the visibility
// and start-time checks.
func (s *PublicQuizService) contestForViewer(ctx context.Context, viewer *security.Principal, contestID string) (*model.Contest, bool, error) {
	if contestID == "" {
		return nil, false, common.Invalid(msgContestIDRequired)
	}
	contest, err := s.contestRepo.FindByID(ctx, contestID)
	if err != nil {
		return nil, false, notFoundAs(err, msgContestNotFound)
	}

	now := s.now()
	isAdmin := viewer.IsContestAdmin(contest.CreatedBy)
	if !isAdmin {
		if !contest.Visible {
			return nil, false, common.NotFound(msgContestNotFound)
		}
		if contest.Status(now) == model.ContestNotStarted {
			return nil, false, common.Forbidden(msgContestNotStarted)
		}
	}
	return contest, contest.QuizDetailsPermission(now, isAdmin), nil
}

// profile loads the viewer's status blobs. Anonymous viewers and users
// without a profile get nil, which reports no status for any quiz.
func (s *PublicQuizService) profile(ctx context.Context, viewer *security.Principal) (*model.UserProfile, error) {
	if viewer == nil {
		return nil, nil
	}
	p, err := s.profileRepo.FindByUserID(ctx, viewer.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, common.Errorf("failed to load user profile: %w", err)
	}
	return p, nil
}
