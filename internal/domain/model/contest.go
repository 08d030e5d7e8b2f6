package model

import "time"

type ContestStatus string

const (
	ContestNotStarted ContestStatus = "1"
	ContestUnderway   ContestStatus = "0"
	ContestEnded      ContestStatus = "-1"
)

// Contest is owned by the contest subsystem; only the fields quiz handling
// depends on are read here.
type Contest struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	RuleType     RuleType  `json:"rule_type"`
	CreatedBy    string    `json:"created_by"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Visible      bool      `json:"visible"`
	RealTimeRank bool      `json:"real_time_rank"`
}

func (c *Contest) Status(now time.Time) ContestStatus {
	switch {
	case now.Before(c.StartTime):
		return ContestNotStarted
	case now.After(c.EndTime):
		return ContestEnded
	default:
		return ContestUnderway
	}
}

// QuizDetailsPermission reports whether contest quizzes may be shown with
// statistics and per-user status rather than the reduced view.
func (c *Contest) QuizDetailsPermission(now time.Time, isContestAdmin bool) bool {
	return c.RuleType == RuleACM ||
		c.Status(now) == ContestEnded ||
		c.RealTimeRank ||
		isContestAdmin
}
