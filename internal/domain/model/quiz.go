package model

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyLow  Difficulty = "Low"
	DifficultyMid  Difficulty = "Mid"
	DifficultyHigh Difficulty = "High"
)

const (
	IOModeStandard = "Standard IO"
	IOModeFile     = "File IO"
)

type IOMode struct {
	Mode   string `json:"io_mode" validate:"oneof='Standard IO' 'File IO'"`
	Input  string `json:"input" validate:"required"`
	Output string `json:"output" validate:"required"`
}

func DefaultIOMode() IOMode {
	return IOMode{Mode: IOModeStandard, Input: "input.txt", Output: "output.txt"}
}

type Sample struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

type TestCaseScore struct {
	InputName         string `json:"input_name"`
	OutputName        string `json:"output_name,omitempty"`
	Score             int    `json:"score"`
	InputSize         int    `json:"input_size,omitempty"`
	OutputSize        int    `json:"output_size,omitempty"`
	StrippedOutputMD5 string `json:"stripped_output_md5,omitempty"`
}

// Quiz is a problem definition, either global (ContestID nil) or owned by
// a contest. DisplayID is unique inside that scope.
type Quiz struct {
	ID                string            `json:"id"`
	DisplayID         string            `json:"display_id"`
	ContestID         *string           `json:"contest_id"`
	IsPublic          bool              `json:"is_public"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	InputDescription  string            `json:"input_description"`
	OutputDescription string            `json:"output_description"`
	Samples           []Sample          `json:"samples"`
	TestCaseID        string            `json:"test_case_id"`
	TestCaseScore     []TestCaseScore   `json:"test_case_score"`
	Hint              string            `json:"hint"`
	Languages         []string          `json:"languages"`
	Template          map[string]string `json:"template"`
	TimeLimit         int               `json:"time_limit"`   // ms
	MemoryLimit       int               `json:"memory_limit"` // MB
	IOMode            IOMode            `json:"io_mode"`
	SPJ               bool              `json:"spj"`
	SPJLanguage       *string           `json:"spj_language"`
	SPJCode           *string           `json:"spj_code"`
	SPJVersion        string            `json:"spj_version"`
	SPJCompileOK      bool              `json:"spj_compile_ok"`
	RuleType          RuleType          `json:"rule_type"`
	Visible           bool              `json:"visible"`
	Difficulty        Difficulty        `json:"difficulty"`
	Source            string            `json:"source"`
	TotalScore        int               `json:"total_score"`
	SubmissionNumber  int64             `json:"submission_number"`
	AcceptedNumber    int64             `json:"accepted_number"`
	StatisticInfo     map[string]any    `json:"statistic_info"`
	ShareSubmission   bool              `json:"share_submission"`
	CreatedBy         string            `json:"created_by"`
	CreateTime        time.Time         `json:"create_time"`
	LastUpdateTime    *time.Time        `json:"last_update_time"`
	Tags              []string          `json:"tags"`
}

func (q *Quiz) InContest() bool { return q.ContestID != nil }

// Clone returns an independent copy of q with a fresh identity placed in the
// given scope. Counters and statistics start over. A clone landing in a
// contest is visible straight away; one promoted to the global pool starts
// hidden until an admin reviews it.
func (q *Quiz) Clone(displayID string, contestID *string) *Quiz {
	c := *q
	c.ID = uuid.NewString()
	c.DisplayID = displayID
	c.ContestID = nil
	if contestID != nil {
		id := *contestID
		c.ContestID = &id
	}
	c.IsPublic = true
	c.Visible = contestID != nil
	c.SubmissionNumber = 0
	c.AcceptedNumber = 0
	c.StatisticInfo = map[string]any{}
	c.CreateTime = time.Now().UTC()
	c.LastUpdateTime = nil

	c.Samples = append([]Sample(nil), q.Samples...)
	c.TestCaseScore = append([]TestCaseScore(nil), q.TestCaseScore...)
	c.Languages = append([]string(nil), q.Languages...)
	c.Tags = append([]string(nil), q.Tags...)
	c.Template = make(map[string]string, len(q.Template))
	for k, v := range q.Template {
		c.Template[k] = v
	}
	if q.SPJLanguage != nil {
		v := *q.SPJLanguage
		c.SPJLanguage = &v
	}
	if q.SPJCode != nil {
		v := *q.SPJCode
		c.SPJCode = &v
	}
	return &c
}
