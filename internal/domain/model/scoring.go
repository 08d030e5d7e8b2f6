package model

import "tle_quiz/internal/common"

type RuleType string

const (
	RuleACM RuleType = "ACM" // pass/fail per submission
	RuleOI  RuleType = "OI"  // partial credit per test case
)

func (r RuleType) Valid() bool {
	return r == RuleACM || r == RuleOI
}

// Scoring is the closed set of scoring disciplines. Each variant decides the
// total score a quiz carries.
type Scoring interface {
	RuleType() RuleType
	TotalScore(scores []TestCaseScore) (int, error)
	scoring()
}

type ACMScoring struct{}

func (ACMScoring) RuleType() RuleType { return RuleACM }

// TotalScore is always zero: ACM quizzes are all-or-nothing.
func (ACMScoring) TotalScore([]TestCaseScore) (int, error) { return 0, nil }
func (ACMScoring) scoring() {}

type OIScoring struct{}

func (OIScoring) RuleType() RuleType { return RuleOI }

// TotalScore sums the per-case scores, each of which must be positive.
func (OIScoring) TotalScore(scores []TestCaseScore) (int, error) {
	total := 0
	for _, s := range scores {
		if s.Score <= 0 {
			return 0, common.Invalid("Invalid score")
		}
		total += s.Score
	}
	return total, nil
}
func (OIScoring) scoring() {}

// Scoring resolves the variant for r.
func (r RuleType) Scoring() (Scoring, error) {
	switch r {
	case RuleACM:
		return ACMScoring{}, nil
	case RuleOI:
		return OIScoring{}, nil
	default:
		return nil, common.Invalid("Invalid rule_type")
	}
}
