package model

import "encoding/json"

type quizStatusEntry struct {
	Status json.RawMessage `json:"status"`
}

// QuizStatusBlob mirrors the per-rule-type status document the judge keeps
// on each user profile. The json keys are the judge's and must stay as is.
type QuizStatusBlob struct {
	Quizzes        map[string]quizStatusEntry `json:"quizs"`
	ContestQuizzes map[string]quizStatusEntry `json:"contest_quizs"`
}

type UserProfile struct {
	UserID           string
	ACMQuizzesStatus QuizStatusBlob
	OIQuizzesStatus  QuizStatusBlob
}

// StatusFor returns the recorded status of quizID, or nil when the user never
// attempted it. The value is passed through untouched.
func (p *UserProfile) StatusFor(rule RuleType, quizID string, inContest bool) json.RawMessage {
	if p == nil {
		return nil
	}
	blob := p.OIQuizzesStatus
	if rule == RuleACM {
		blob = p.ACMQuizzesStatus
	}
	entries := blob.Quizzes
	if inContest {
		entries = blob.ContestQuizzes
	}
	e, ok := entries[quizID]
	if !ok || len(e.Status) == 0 || string(e.Status) == "null" {
		return nil
	}
	return e.Status
}
