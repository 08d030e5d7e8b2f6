package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"path/filepath"
	"testing"
	"time"
	"tle_quiz/internal/common"
	"tle_quiz/internal/common/security"
	"tle_quiz/internal/domain/model"
	"tle_quiz/internal/domain/repository"
	"tle_quiz/internal/platform/database"
)

var (
	ownAdmin   = &security.Principal{UserID: "admin-1", AdminType: security.AdminTypeAdmin, QuizPermission: security.QuizPermissionOwn}
	otherAdmin = &security.Principal{UserID: "admin-2", AdminType: security.AdminTypeAdmin, QuizPermission: security.QuizPermissionOwn}
	superAdmin = &security.Principal{UserID: "root", AdminType: security.AdminTypeSuper, QuizPermission: security.QuizPermissionAll}
	student    = &security.Principal{UserID: "u1", AdminType: security.AdminTypeRegular, QuizPermission: security.QuizPermissionNone}
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", "file:"+filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(ctx, db, "sqlite"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := database.MigrateCollaborators(ctx, db, "sqlite"); err != nil {
		t.Fatalf("MigrateCollaborators: %v", err)
	}
	return db
}

type contestSeed struct {
	ID           string
	RuleType     model.RuleType
	Owner        string
	Start, End   time.Time
	Visible      bool
	RealTimeRank bool
}

// underway is a visible ACM contest owned by ownAdmin that started an hour ago.
func underway(id string) contestSeed {
	now := time.Now().UTC()
	return contestSeed{ID: id, RuleType: model.RuleACM, Owner: ownAdmin.UserID,
		Start: now.Add(-time.Hour), End: now.Add(time.Hour), Visible: true}
}

func seedContest(t *testing.T, db *sql.DB, c contestSeed) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO contests (id, title, rule_type, created_by, start_time, end_time, visible, real_time_rank)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, "Contest "+c.ID, string(c.RuleType), c.Owner, c.Start, c.End, c.Visible, c.RealTimeRank)
	if err != nil {
		t.Fatalf("seed contest: %v", err)
	}
}

func seedSubmission(t *testing.T, db *sql.DB, quizID string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO submissions (id, quiz_id, user_id) VALUES ($1, $2, $3)`,
		"s-"+quizID, quizID, student.UserID); err != nil {
		t.Fatalf("seed submission: %v", err)
	}
}

func seedProfile(t *testing.T, db *sql.DB, userID, acm, oi string) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO user_profiles (user_id, acm_quizs_status, oi_quizs_status) VALUES ($1, $2, $3)`,
		userID, acm, oi); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
}

func sampleInput(displayID string) QuizInput {
	return QuizInput{
		DisplayID:         displayID,
		Title:             "A plus B",
		Description:       "<p>add</p>",
		InputDescription:  "two ints",
		OutputDescription: "one int",
		Samples:           []model.Sample{{Input: "1 2", Output: "3"}},
		TestCaseID:        "499b26290cc7994e0b497212e842ea85",
		TestCaseScore:     []model.TestCaseScore{{InputName: "1.in", OutputName: "1.out", Score: 0}},
		TimeLimit:         1000,
		MemoryLimit:       256,
		Languages:         []string{"C", "C++"},
		Template:          map[string]string{},
		RuleType:          model.RuleACM,
		IOMode:            model.DefaultIOMode(),
		SPJLanguage:       strPtr("C"),
		SPJCompileOK:      true,
		Visible:           true,
		Difficulty:        model.DifficultyLow,
		Tags:              []string{"math"},
		Hint:              "<p>hint</p>",
		Source:            "test",
	}
}

func strPtr(s string) *string { return &s }

type services struct {
	db      *sql.DB
	quizzes repository.QuizRepository
	global  *QuizService
	contest *ContestQuizService
	public  *PublicQuizService
}

func newServices(t *testing.T) *services {
	t.Helper()
	db := openTestDB(t)
	quizRepo := repository.NewQuizRepository(db)
	contestRepo := repository.NewContestRepository(db)
	return &services{
		db:      db,
		quizzes: quizRepo,
		global:  NewQuizService(quizRepo, db),
		contest: NewContestQuizService(quizRepo, contestRepo, repository.NewSubmissionRepository(db), db),
		public:  NewPublicQuizService(quizRepo, contestRepo, repository.NewProfileRepository(db)),
	}
}

// expectErr checks both the user-facing message and the HTTP status err maps to.
func expectErr(t *testing.T, err error, msg string, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q, got nil", msg)
	}
	var e *common.Error
	if !errors.As(err, &e) || e.Msg != msg {
		t.Fatalf("error = %v, want message %q", err, msg)
	}
	if got := common.HTTPStatusFromError(err); got != status {
		t.Fatalf("status = %d, want %d (err %v)", got, status, err)
	}
}

var (
	badRequest = http.StatusBadRequest
	notFound   = http.StatusNotFound
	conflict   = http.StatusConflict
)
