package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"tle_quiz/internal/common"
	"tle_quiz/internal/domain/model"
	"tle_quiz/internal/platform/database"
)

const errDuplicateDisplayID = "Display ID already exists"

// QuizFilter narrows List. Zero values mean "no restriction".
type QuizFilter struct {
	ContestID   *string // nil lists global quizzes
	RuleType    model.RuleType
	Keyword     string // title or display id, case-insensitive
	TitleOnly   bool   // match Keyword against the title alone
	Difficulty  model.Difficulty
	Tag         string
	CreatedBy   string
	VisibleOnly bool
	Limit       int // 0 = all rows
	Offset      int
}

type QuizRepository interface {
	Create(ctx context.Context, tx *sql.Tx, q *model.Quiz) error
	Update(ctx context.Context, tx *sql.Tx, q *model.Quiz) error
	Delete(ctx context.Context, tx *sql.Tx, id string) error
	FindByID(ctx context.Context, id string) (*model.Quiz, error)
	FindByDisplayID(ctx context.Context, displayID string, contestID *string) (*model.Quiz, error)
	DisplayIDExists(ctx context.Context, tx *sql.Tx, displayID string, contestID *string, excludeID string) (bool, error)
	List(ctx context.Context, f QuizFilter) ([]model.Quiz, int, error)

	CountPickable(ctx context.Context) (int, error)
	PickableDisplayIDAt(ctx context.Context, offset int) (string, error)

	SetTags(ctx context.Context, tx *sql.Tx, quizID string, names []string) error
	GetTagsByQuizIDs(ctx context.Context, quizIDs []string) (map[string][]string, error)
	ListTagsInUse(ctx context.Context, keyword string) ([]model.Tag, error)
}

type sqlQuizRepository struct {
	db *sql.DB
}

func NewQuizRepository(db *sql.DB) QuizRepository {
	return &sqlQuizRepository{db: db}
}

func (r *sqlQuizRepository) conn(tx *sql.Tx) database.DBTX {
	if tx != nil {
		return tx
	}
	return r.db
}

const quizColumns = `q.id, q.display_id, q.contest_id, q.is_public, q.title, q.description,
	q.input_description, q.output_description, q.samples, q.test_case_id, q.test_case_score,
	q.hint, q.languages, q.template, q.time_limit, q.memory_limit, q.io_mode,
	q.spj, q.spj_language, q.spj_code, q.spj_version, q.spj_compile_ok,
	q.rule_type, q.visible, q.difficulty, q.source, q.total_score,
	q.submission_number, q.accepted_number, q.statistic_info, q.share_submission,
	q.created_by, q.create_time, q.last_update_time`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*model.Quiz, error) {
	var (
		q                                                   model.Quiz
		contestID, spjLanguage, spjCode, spjVersion         sql.NullString
		samples, scores, languages, template, ioMode, stats []byte
		lastUpdate                                          sql.NullTime
	)
	err := row.Scan(
		&q.ID, &q.DisplayID, &contestID, &q.IsPublic, &q.Title, &q.Description,
		&q.InputDescription, &q.OutputDescription, &samples, &q.TestCaseID, &scores,
		&q.Hint, &languages, &template, &q.TimeLimit, &q.MemoryLimit, &ioMode,
		&q.SPJ, &spjLanguage, &spjCode, &spjVersion, &q.SPJCompileOK,
		&q.RuleType, &q.Visible, &q.Difficulty, &q.Source, &q.TotalScore,
		&q.SubmissionNumber, &q.AcceptedNumber, &stats, &q.ShareSubmission,
		&q.CreatedBy, &q.CreateTime, &lastUpdate,
	)
	if err != nil {
		return nil, err
	}
	if contestID.Valid {
		q.ContestID = &contestID.String
	}
	if spjLanguage.Valid {
		q.SPJLanguage = &spjLanguage.String
	}
	if spjCode.Valid {
		q.SPJCode = &spjCode.String
	}
	q.SPJVersion = spjVersion.String
	if lastUpdate.Valid {
		t := lastUpdate.Time
		q.LastUpdateTime = &t
	}

	for _, c := range []struct {
		raw  []byte
		dest any
	}{
		{samples, &q.Samples},
		{scores, &q.TestCaseScore},
		{languages, &q.Languages},
		{template, &q.Template},
		{ioMode, &q.IOMode},
		{stats, &q.StatisticInfo},
	} {
		if err := decodeJSON(c.raw, c.dest); err != nil {
			return nil, fmt.Errorf("quiz %s: %w", q.ID, err)
		}
	}
	if q.StatisticInfo == nil {
		q.StatisticInfo = map[string]any{}
	}
	if q.Template == nil {
		q.Template = map[string]string{}
	}
	q.Tags = []string{}
	return &q, nil
}

func decodeJSON(raw []byte, dest any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// jsonArgs encodes the JSON columns in table order.
func jsonArgs(q *model.Quiz) (samples, scores, languages, template, ioMode, stats string, err error) {
	nonNil := func(v any, empty string) (string, error) {
		s, err := encodeJSON(v)
		if err != nil {
			return "", err
		}
		if s == "null" {
			return empty, nil
		}
		return s, nil
	}
	if samples, err = nonNil(q.Samples, "[]"); err != nil {
		return
	}
	if scores, err = nonNil(q.TestCaseScore, "[]"); err != nil {
		return
	}
	if languages, err = nonNil(q.Languages, "[]"); err != nil {
		return
	}
	if template, err = nonNil(q.Template, "{}"); err != nil {
		return
	}
	if ioMode, err = nonNil(q.IOMode, "{}"); err != nil {
		return
	}
	stats, err = nonNil(q.StatisticInfo, "{}")
	return
}

func (r *sqlQuizRepository) Create(ctx context.Context, tx *sql.Tx, q *model.Quiz) error {
	samples, scores, languages, template, ioMode, stats, err := jsonArgs(q)
	if err != nil {
		return fmt.Errorf("sqlQuizRepository.Create encode: %w", err)
	}
	if q.CreateTime.IsZero() {
		q.CreateTime = time.Now().UTC()
	}

	query := `INSERT INTO quizzes (id, display_id, contest_id, is_public, title, description,
	              input_description, output_description, samples, test_case_id, test_case_score,
	              hint, languages, template, time_limit, memory_limit, io_mode,
	              spj, spj_language, spj_code, spj_version, spj_compile_ok,
	              rule_type, visible, difficulty, source, total_score,
	              submission_number, accepted_number, statistic_info, share_submission,
	              created_by, create_time, last_update_time)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
	                  $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34)`

	_, err = r.conn(tx).ExecContext(ctx, query,
		q.ID, q.DisplayID, q.ContestID, q.IsPublic, q.Title, q.Description,
		q.InputDescription, q.OutputDescription, samples, q.TestCaseID, scores,
		q.Hint, languages, template, q.TimeLimit, q.MemoryLimit, ioMode,
		q.SPJ, q.SPJLanguage, q.SPJCode, q.SPJVersion, q.SPJCompileOK,
		string(q.RuleType), q.Visible, string(q.Difficulty), q.Source, q.TotalScore,
		q.SubmissionNumber, q.AcceptedNumber, stats, q.ShareSubmission,
		q.CreatedBy, q.CreateTime, q.LastUpdateTime,
	)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.Conflict(errDuplicateDisplayID)
		}
		return fmt.Errorf("sqlQuizRepository.Create: %w", err)
	}
	return nil
}

// Update writes every mutable column of q. Counters and ownership are left
// to their own subsystems.
func (r *sqlQuizRepository) Update(ctx context.Context, tx *sql.Tx, q *model.Quiz) error {
	samples, scores, languages, template, ioMode, stats, err := jsonArgs(q)
	if err != nil {
		return fmt.Errorf("sqlQuizRepository.Update encode: %w", err)
	}
	now := time.Now().UTC()
	q.LastUpdateTime = &now

	query := `UPDATE quizzes SET
	            display_id = $1, is_public = $2, title = $3, description = $4,
	            input_description = $5, output_description = $6, samples = $7,
	            test_case_id = $8, test_case_score = $9, hint = $10, languages = $11,
	            template = $12, time_limit = $13, memory_limit = $14, io_mode = $15,
	            spj = $16, spj_language = $17, spj_code = $18, spj_version = $19,
	            spj_compile_ok = $20, rule_type = $21, visible = $22, difficulty = $23,
	            source = $24, total_score = $25, statistic_info = $26,
	            share_submission = $27, last_update_time = $28
	          WHERE id = $29`

	res, err := r.conn(tx).ExecContext(ctx, query,
		q.DisplayID, q.IsPublic, q.Title, q.Description,
		q.InputDescription, q.OutputDescription, samples,
		q.TestCaseID, scores, q.Hint, languages,
		template, q.TimeLimit, q.MemoryLimit, ioMode,
		q.SPJ, q.SPJLanguage, q.SPJCode, q.SPJVersion,
		q.SPJCompileOK, string(q.RuleType), q.Visible, string(q.Difficulty),
		q.Source, q.TotalScore, stats,
		q.ShareSubmission, now,
		q.ID,
	)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return common.Conflict(errDuplicateDisplayID)
		}
		return fmt.Errorf("sqlQuizRepository.Update: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *sqlQuizRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	c := r.conn(tx)
	if _, err := c.ExecContext(ctx, `DELETE FROM quiz_tag_links WHERE quiz_id = $1`, id); err != nil {
		return fmt.Errorf("sqlQuizRepository.Delete tags: %w", err)
	}
	res, err := c.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("sqlQuizRepository.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *sqlQuizRepository) FindByID(ctx context.Context, id string) (*model.Quiz, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+quizColumns+` FROM quizzes q WHERE q.id = $1`, id)
	return r.one(ctx, row, "FindByID")
}

func (r *sqlQuizRepository) FindByDisplayID(ctx context.Context, displayID string, contestID *string) (*model.Quiz, error) {
	var row *sql.Row
	if contestID == nil {
		row = r.db.QueryRowContext(ctx,
			`SELECT `+quizColumns+` FROM quizzes q WHERE q.display_id = $1 AND q.contest_id IS NULL`, displayID)
	} else {
		row = r.db.QueryRowContext(ctx,
			`SELECT `+quizColumns+` FROM quizzes q WHERE q.display_id = $1 AND q.contest_id = $2`, displayID, *contestID)
	}
	return r.one(ctx, row, "FindByDisplayID")
}

func (r *sqlQuizRepository) one(ctx context.Context, row *sql.Row, op string) (*model.Quiz, error) {
	q, err := scanQuiz(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlQuizRepository.%s: %w", op, err)
	}
	tags, err := r.GetTagsByQuizIDs(ctx, []string{q.ID})
	if err != nil {
		return nil, err
	}
	if t, ok := tags[q.ID]; ok {
		q.Tags = t
	}
	return q, nil
}

// DisplayIDExists checks the scope of contestID (global when nil), ignoring
// the quiz excludeID so an edit does not collide with itself.
func (r *sqlQuizRepository) DisplayIDExists(ctx context.Context, tx *sql.Tx, displayID string, contestID *string, excludeID string) (bool, error) {
	var (
		query strings.Builder
		args  = []any{displayID}
	)
	query.WriteString(`SELECT COUNT(*) FROM quizzes WHERE display_id = $1`)
	if contestID == nil {
		query.WriteString(` AND contest_id IS NULL`)
	} else {
		args = append(args, *contestID)
		fmt.Fprintf(&query, ` AND contest_id = $%d`, len(args))
	}
	if excludeID != "" {
		args = append(args, excludeID)
		fmt.Fprintf(&query, ` AND id <> $%d`, len(args))
	}

	var n int
	if err := r.conn(tx).QueryRowContext(ctx, query.String(), args...).Scan(&n); err != nil {
		return false, fmt.Errorf("sqlQuizRepository.DisplayIDExists: %w", err)
	}
	return n > 0, nil
}

const likeEscape = ` ESCAPE '\'`

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive substring pattern in which the
// keyword's own wildcard characters match literally.
func containsPattern(keyword string) string {
	return "%" + likeReplacer.Replace(strings.ToLower(keyword)) + "%"
}

func (r *sqlQuizRepository) List(ctx context.Context, f QuizFilter) ([]model.Quiz, int, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.ContestID == nil {
		conditions = append(conditions, "q.contest_id IS NULL")
	} else {
		conditions = append(conditions, "q.contest_id = "+arg(*f.ContestID))
	}
	if f.RuleType != "" {
		conditions = append(conditions, "q.rule_type = "+arg(string(f.RuleType)))
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := containsPattern(kw)
		if f.TitleOnly {
			conditions = append(conditions, "LOWER(q.title) LIKE "+arg(like)+likeEscape)
		} else {
			conditions = append(conditions, fmt.Sprintf("(LOWER(q.title) LIKE %s%s OR LOWER(q.display_id) LIKE %s%s)",
				arg(like), likeEscape, arg(like), likeEscape))
		}
	}
	if f.Difficulty != "" {
		conditions = append(conditions, "q.difficulty = "+arg(string(f.Difficulty)))
	}
	if f.Tag != "" {
		conditions = append(conditions, `EXISTS (SELECT 1 FROM quiz_tag_links l JOIN quiz_tags t ON t.id = l.tag_id
		    WHERE l.quiz_id = q.id AND t.name = `+arg(f.Tag)+`)`)
	}
	if f.CreatedBy != "" {
		conditions = append(conditions, "q.created_by = "+arg(f.CreatedBy))
	}
	if f.VisibleOnly {
		conditions = append(conditions, "q.visible = "+arg(true))
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes q`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlQuizRepository.List count: %w", err)
	}

	query := `SELECT ` + quizColumns + ` FROM quizzes q` + where + ` ORDER BY q.create_time DESC, q.id`
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit) + " OFFSET " + arg(max(f.Offset, 0))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlQuizRepository.List query: %w", err)
	}
	defer rows.Close()

	quizzes := []model.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("sqlQuizRepository.List scan: %w", err)
		}
		quizzes = append(quizzes, *q)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlQuizRepository.List rows.Err: %w", err)
	}
	rows.Close()

	if len(quizzes) > 0 {
		ids := make([]string, len(quizzes))
		for i := range quizzes {
			ids[i] = quizzes[i].ID
		}
		tags, err := r.GetTagsByQuizIDs(ctx, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range quizzes {
			if t, ok := tags[quizzes[i].ID]; ok {
				quizzes[i].Tags = t
			}
		}
	}
	return quizzes, total, nil
}

func (r *sqlQuizRepository) CountPickable(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quizzes WHERE contest_id IS NULL AND visible = $1`, true).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sqlQuizRepository.CountPickable: %w", err)
	}
	return n, nil
}

func (r *sqlQuizRepository) PickableDisplayIDAt(ctx context.Context, offset int) (string, error) {
	var displayID string
	err := r.db.QueryRowContext(ctx,
		`SELECT display_id FROM quizzes WHERE contest_id IS NULL AND visible = $1
		 ORDER BY create_time, id LIMIT 1 OFFSET $2`, true, offset).Scan(&displayID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("sqlQuizRepository.PickableDisplayIDAt: %w", err)
	}
	return displayID, nil
}
