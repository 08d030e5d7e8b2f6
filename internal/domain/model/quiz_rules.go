package model

import (
	"crypto/md5"
	"encoding/hex"

	"tle_quiz/internal/common"
)

// Validate checks the SPJ and scoring rules and fills the fields derived from
// them (spj_version, total_score). It runs before every admin create/update.
func (q *Quiz) Validate() error {
	if q.SPJ {
		if q.SPJLanguage == nil || *q.SPJLanguage == "" || q.SPJCode == nil || *q.SPJCode == "" {
			return common.Invalid("Invalid spj")
		}
		if !q.SPJCompileOK {
			return common.Invalid("SPJ code must be compiled successfully")
		}
		q.SPJVersion = SPJVersion(*q.SPJLanguage, *q.SPJCode)
	} else {
		q.SPJLanguage = nil
		q.SPJCode = nil
	}

	scoring, err := q.RuleType.Scoring()
	if err != nil {
		return err
	}
	if scoring.RuleType() == RuleOI {
		total, err := scoring.TotalScore(q.TestCaseScore)
		if err != nil {
			return err
		}
		q.TotalScore = total
	}

	q.Languages = append([]string{}, q.Languages...)
	return nil
}

// SPJVersion is the md5 of "language:code" as lowercase hex.
func SPJVersion(language, code string) string {
	sum := md5.Sum([]byte(language + ":" + code))
	return hex.EncodeToString(sum[:])
}
