package service

import (
	"errors"
	"time"
	"tle_quiz/internal/common"
	"tle_quiz/internal/common/security"
	"tle_quiz/internal/domain/model"

	"github.com/google/uuid"
)

const (
	msgDisplayIDRequired  = "Display ID is required"
	msgDisplayIDExists    = "Display ID already exists"
	msgQuizNotFound       = "Quiz does not exist"
	msgContestNotFound    = "Contest does not exist"
	msgContestIDRequired  = "Contest id is required"
	msgIDRequired         = "Invalid parameter, id is required"
	msgInvalidRuleType    = "Invalid rule_type"
	msgRuleTypeMismatch   = "Invalid rule type"
	msgHasSubmissions     = "Can't delete the quiz as it has submissions"
	msgDuplicatePublicID  = "Duplicate display ID"
	msgAlreadyPublic      = "Already be a public quiz"
	msgContestOrQuizGone  = "Contest or Quiz does not exist"
	msgContestEnded       = "Contest has ended"
	msgDuplicateContestID = "Duplicate display id in this contest"
)

// QuizInput is the editable part of a quiz as submitted by an admin.
type QuizInput struct {
	DisplayID         string                `json:"display_id" validate:"max=32"`
	Title             string                `json:"title" validate:"required,max=1024"`
	Description       string                `json:"description" validate:"required"`
	InputDescription  string                `json:"input_description" validate:"required"`
	OutputDescription string                `json:"output_description" validate:"required"`
	Samples           []model.Sample        `json:"samples" validate:"min=1"`
	TestCaseID        string                `json:"test_case_id" validate:"required,max=32"`
	TestCaseScore     []model.TestCaseScore `json:"test_case_score"`
	TimeLimit         int                   `json:"time_limit" validate:"gte=1,lte=60000"`
	MemoryLimit       int                   `json:"memory_limit" validate:"gte=1,lte=1024"`
	Languages         []string              `json:"languages" validate:"min=1"`
	Template          map[string]string     `json:"template"`
	RuleType          model.RuleType        `json:"rule_type"`
	IOMode            model.IOMode          `json:"io_mode"`
	SPJ               bool                  `json:"spj"`
	SPJLanguage       *string               `json:"spj_language"`
	SPJCode           *string               `json:"spj_code"`
	SPJCompileOK      bool                  `json:"spj_compile_ok"`
	Visible           bool                  `json:"visible"`
	Difficulty        model.Difficulty      `json:"difficulty" validate:"oneof=Low Mid High"`
	Tags              []string              `json:"tags" validate:"min=1"`
	Hint              string                `json:"hint"`
	Source            string                `json:"source" validate:"max=256"`
	ShareSubmission   bool                  `json:"share_submission"`
}

type EditQuizRequest struct {
	ID string `json:"id" validate:"required"`
	QuizInput
}

type CreateContestQuizRequest struct {
	ContestID string `json:"contest_id" validate:"required"`
	QuizInput
}

type EditContestQuizRequest struct {
	ID        string `json:"id" validate:"required"`
	ContestID string `json:"contest_id" validate:"required"`
	QuizInput
}

type MakePublicRequest struct {
	ID        string `json:"id" validate:"required"`
	DisplayID string `json:"display_id" validate:"required,max=32"`
}

type AddFromPublicRequest struct {
	ContestID string `json:"contest_id" validate:"required"`
	QuizID    string `json:"quiz_id" validate:"required"`
	DisplayID string `json:"display_id" validate:"required,max=32"`
}

// validate runs the tag checks after filling in the io mode a client left out.
func (in *QuizInput) validate(v any) error {
	if in.IOMode == (model.IOMode{}) {
		in.IOMode = model.DefaultIOMode()
	}
	if err := common.ValidateInput(v); err != nil {
		return err
	}
	if in.DisplayID == "" {
		return common.Invalid(msgDisplayIDRequired)
	}
	return nil
}

// apply copies the permitted fields onto q. Identity, scope, ownership and
// counters are never taken from the request.
func (in *QuizInput) apply(q *model.Quiz) {
	q.DisplayID = in.DisplayID
	q.Title = in.Title
	q.Description = in.Description
	q.InputDescription = in.InputDescription
	q.OutputDescription = in.OutputDescription
	q.Samples = in.Samples
	q.TestCaseID = in.TestCaseID
	q.TestCaseScore = in.TestCaseScore
	q.TimeLimit = in.TimeLimit
	q.MemoryLimit = in.MemoryLimit
	q.Languages = in.Languages
	q.Template = in.Template
	if q.Template == nil {
		q.Template = map[string]string{}
	}
	q.RuleType = in.RuleType
	q.IOMode = in.IOMode
	q.SPJ = in.SPJ
	q.SPJLanguage = in.SPJLanguage
	q.SPJCode = in.SPJCode
	q.SPJCompileOK = in.SPJCompileOK
	q.Visible = in.Visible
	q.Difficulty = in.Difficulty
	q.Hint = in.Hint
	q.Source = in.Source
	q.ShareSubmission = in.ShareSubmission
}

func newQuiz(createdBy string, contestID *string) *model.Quiz {
	return &model.Quiz{
		ID:            uuid.NewString(),
		ContestID:     contestID,
		StatisticInfo: map[string]any{},
		CreatedBy:     createdBy,
		CreateTime:    time.Now().UTC(),
	}
}

// ensureQuizAccess hides quizzes the caller may not manage behind the same
// answer as a missing one.
func ensureQuizAccess(p *security.Principal, q *model.Quiz) error {
	if p.CanManageAllQuizzes() || p.Owns(q.CreatedBy) {
		return nil
	}
	return common.NotFound(msgQuizNotFound)
}

func ensureContestAccess(p *security.Principal, c *model.Contest) error {
	if !p.IsContestAdmin(c.CreatedBy) {
		return common.NotFound(msgContestNotFound)
	}
	return nil
}

// notFoundAs replaces a bare ErrNotFound with a message naming the entity.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, common.ErrNotFound) {
		return common.NotFound(msg)
	}
	return err
}
