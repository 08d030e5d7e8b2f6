package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"strings"
	"time"
	"tle_quiz/internal/common"
	"tle_quiz/internal/common/security"
	"tle_quiz/internal/domain/model"
	"tle_quiz/internal/domain/quiztemplate"
	"tle_quiz/internal/domain/repository"
	"tle_quiz/internal/fps"
	"tle_quiz/internal/platform/database"
	"tle_quiz/internal/platform/options"
	"tle_quiz/internal/platform/testcase"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	msgParseFPS        = "Parse FPS file error: "
	fpsDisplayIDPrefix = "fps-"
	displayIDAttempts  = 10
)

// ImportService turns FPS documents into hidden ACM quizzes.
type ImportService struct {
	quizRepo     repository.QuizRepository
	options      options.Provider
	testCases    *testcase.Store
	uploadDir    string
	uploadPrefix string
	db           *sql.DB
}

func NewImportService(
	quizRepo repository.QuizRepository,
	opts options.Provider,
	testCases *testcase.Store,
	uploadDir, uploadPrefix string,
	db *sql.DB,
) *ImportService {
	return &ImportService{
		quizRepo:     quizRepo,
		options:      opts,
		testCases:    testCases,
		uploadDir:    uploadDir,
		uploadPrefix: uploadPrefix,
		db:           db,
	}
}

// importBatch tracks the files written for one upload so a failed import
// leaves nothing behind.
type importBatch struct {
	store   *testcase.Store
	bundles []string
	images  []string
}

func (b *importBatch) cleanup() {
	for _, id := range b.bundles {
		if err := b.store.Remove(id); err != nil {
			log.WithError(err).WithField("test_case_id", id).Warn("Failed to remove test case bundle")
		}
	}
	for _, path := range b.images {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).WithField("path", path).Warn("Failed to remove imported image")
		}
	}
}

// ImportFPS creates one quiz per problem in r. Either every quiz is created
// or none is. It returns the number of quizzes imported.
func (s *ImportService) ImportFPS(ctx context.Context, p *security.Principal, r io.Reader) (count int, err error) {
	problems, err := fps.Parse(r)
	if err != nil {
		return 0, common.BadRequest(msgParseFPS + err.Error())
	}
	languages, err := s.options.Languages(ctx)
	if err != nil {
		return 0, common.Errorf("failed to load languages: %w", err)
	}

	batch := &importBatch{store: s.testCases}
	defer func() {
		if err != nil {
			batch.cleanup()
		}
	}()

	quizzes := make([]*model.Quiz, 0, len(problems))
	for i := range problems {
		q, err := s.prepare(&problems[i], p.UserID, languages, batch)
		if err != nil {
			return 0, err
		}
		quizzes = append(quizzes, q)
	}

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		taken := make(map[string]bool, len(quizzes))
		for _, q := range quizzes {
			displayID, err := s.freeDisplayID(ctx, tx, taken)
			if err != nil {
				return err
			}
			q.DisplayID = displayID
			if err := s.quizRepo.Create(ctx, tx, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, common.Errorf("failed to import quizzes: %w", err)
	}

	log.WithFields(log.Fields{"import_count": len(quizzes), "user_id": p.UserID}).Info("FPS quizzes imported")
	return len(quizzes), nil
}

// prepare validates one problem and writes its files.
func (s *ImportService) prepare(prob *fps.Problem, createdBy string, languages []string, batch *importBatch) (*model.Quiz, error) {
	if err := prob.Validate(); err != nil {
		return nil, common.Invalid(msgParseFPS + common.PublicMessage(err))
	}

	cases := make([]testcase.Case, len(prob.TestCases))
	for i, tc := range prob.TestCases {
		cases[i] = testcase.Case{Input: tc.Input, Output: tc.Output}
	}
	bundleID, entries, err := s.testCases.Save(cases, prob.SPJ != nil)
	if err != nil {
		return nil, common.Errorf("failed to save test cases: %w", err)
	}
	batch.bundles = append(batch.bundles, bundleID)

	written, err := fps.SaveImages(prob, s.uploadDir, s.uploadPrefix)
	batch.images = append(batch.images, written...)
	if err != nil {
		if errors.Is(err, fps.ErrMalformed) {
			return nil, common.Invalid(msgParseFPS + err.Error())
		}
		return nil, common.Errorf("failed to save images: %w", err)
	}

	scores := make([]model.TestCaseScore, len(entries))
	for i, e := range entries {
		scores[i] = model.TestCaseScore{InputName: e.InputName, OutputName: e.OutputName, Score: 0}
	}
	samples := prob.Samples
	if samples == nil {
		samples = []model.Sample{}
	}

	q := &model.Quiz{
		ID:                uuid.NewString(),
		Title:             prob.Title,
		Description:       prob.Description,
		InputDescription:  prob.Input,
		OutputDescription: prob.Output,
		Samples:           samples,
		TestCaseID:        bundleID,
		TestCaseScore:     scores,
		Hint:              prob.Hint,
		Languages:         append([]string{}, languages...),
		Template:          quiztemplate.Build(prob.Prepend, prob.Template, prob.Append, quiztemplate.MarkedFormat),
		TimeLimit:         prob.TimeLimitMs,
		MemoryLimit:       prob.MemoryLimitMB,
		IOMode:            model.DefaultIOMode(),
		RuleType:          model.RuleACM,
		Visible:           false,
		Difficulty:        model.DifficultyMid,
		Source:            prob.Source,
		StatisticInfo:     map[string]any{},
		CreatedBy:         createdBy,
		CreateTime:        time.Now().UTC(),
		Tags:              []string{},
	}
	if prob.SPJ != nil {
		lang, code := prob.SPJ.Language, prob.SPJ.Code
		q.SPJ = true
		q.SPJLanguage = &lang
		q.SPJCode = &code
		// not compiled yet, so the version only has to differ from any real one
		q.SPJVersion = randomHex(8)
	}
	return q, nil
}

// freeDisplayID draws "fps-xxxx" ids until one is unused globally and
// within this batch.
func (s *ImportService) freeDisplayID(ctx context.Context, tx *sql.Tx, taken map[string]bool) (string, error) {
	for range displayIDAttempts {
		id := fpsDisplayIDPrefix + randomHex(4)
		if taken[id] {
			continue
		}
		exists, err := s.quizRepo.DisplayIDExists(ctx, tx, id, nil, "")
		if err != nil {
			return "", err
		}
		if !exists {
			taken[id] = true
			return id, nil
		}
	}
	return "", common.Conflict(msgDisplayIDExists)
}

func randomHex(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
