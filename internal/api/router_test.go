package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"tle_quiz/internal/app/service"
	"tle_quiz/internal/common/security"
	"tle_quiz/internal/domain/repository"
	"tle_quiz/internal/platform/database"
	"tle_quiz/internal/platform/options"
	"tle_quiz/internal/platform/testcase"
)

type envelope struct {
	Error *string         `json:"error"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	db, err := database.Open(ctx, "sqlite", "file:"+filepath.Join(dir, "quiz.db"))
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

	security.InitJWT([]byte("router-test-secret"))
	quizRepo := repository.NewQuizRepository(db)
	contestRepo := repository.NewContestRepository(db)

	router := NewRouter(
		service.NewQuizService(quizRepo, db),
		service.NewContestQuizService(quizRepo, contestRepo, repository.NewSubmissionRepository(db), db),
		service.NewPublicQuizService(quizRepo, contestRepo, repository.NewProfileRepository(db)),
		service.NewImportService(quizRepo, options.Static{"C", "Python3"}, testcase.NewStore(filepath.Join(dir, "cases")),
			filepath.Join(dir, "upload"), "/public/upload", db),
		Options{CORSOrigins: []string{"*"}, MaxUploadMB: 1},
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func token(t *testing.T, p security.Principal) string {
	t.Helper()
	tok, err := security.GenerateToken(p, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func do(t *testing.T, method, url, tok, contentType string, body []byte) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode %s %s: %v", method, url, err)
	}
	return resp.StatusCode, env
}

var quizBody = []byte(`{
	"display_id": "A-110", "title": "test", "description": "<p>test</p>",
	"input_description": "test", "output_description": "test",
	"time_limit": 1000, "memory_limit": 256, "difficulty": "Low", "visible": true,
	"tags": ["test"], "languages": ["C", "C++"], "template": {},
	"samples": [{"input": "test", "output": "test"}], "spj": false,
	"test_case_id": "499b26290cc7994e0b497212e842ea85",
	"test_case_score": [{"input_name": "1.in", "output_name": "1.out", "score": 0}],
	"io_mode": {"io_mode": "Standard IO", "input": "input.txt", "output": "output.txt"},
	"rule_type": "ACM", "hint": "", "source": "test"
}`)

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAdminRoutesRequirePermission(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL + "/api/admin/quiz"

	if code, _ := do(t, http.MethodPost, url, "", "application/json", quizBody); code != http.StatusUnauthorized {
		t.Fatalf("anonymous create = %d", code)
	}
	if code, _ := do(t, http.MethodPost, url, "not-a-jwt", "application/json", quizBody); code != http.StatusUnauthorized {
		t.Fatalf("bad token create = %d", code)
	}

	user := token(t, security.Principal{UserID: "u1", AdminType: security.AdminTypeRegular})
	if code, _ := do(t, http.MethodPost, url, user, "application/json", quizBody); code != http.StatusForbidden {
		t.Fatalf("regular user create = %d", code)
	}

	noPerm := token(t, security.Principal{UserID: "a0", AdminType: security.AdminTypeAdmin, QuizPermission: security.QuizPermissionNone})
	if code, _ := do(t, http.MethodPost, url, noPerm, "application/json", quizBody); code != http.StatusForbidden {
		t.Fatalf("admin without quiz permission create = %d", code)
	}
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	admin := token(t, security.Principal{UserID: "a1", AdminType: security.AdminTypeAdmin, QuizPermission: security.QuizPermissionOwn})

	code, env := do(t, http.MethodPost, srv.URL+"/api/admin/quiz/", admin, "application/json", quizBody)
	if code != http.StatusOK || env.Error != nil {
		t.Fatalf("create = %d %s", code, env.Data)
	}
	var created struct {
		ID        string `json:"id"`
		DisplayID string `json:"display_id"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil || created.DisplayID != "A-110" {
		t.Fatalf("created = %s, %v", env.Data, err)
	}

	code, env = do(t, http.MethodPost, srv.URL+"/api/admin/quiz", admin, "application/json", quizBody)
	if code != http.StatusConflict || env.Error == nil || *env.Error != "error" || string(env.Data) != `"Display ID already exists"` {
		t.Fatalf("duplicate = %d %s", code, env.Data)
	}

	code, env = do(t, http.MethodGet, srv.URL+"/api/admin/quiz?limit=5", admin, "", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"total":1`) {
		t.Fatalf("admin list = %d %s", code, env.Data)
	}

	code, env = do(t, http.MethodGet, srv.URL+"/api/quiz?quiz_id=A-110", "", "", nil)
	if code != http.StatusOK || strings.Contains(string(env.Data), "test_case_id") {
		t.Fatalf("public get = %d %s", code, env.Data)
	}

	code, env = do(t, http.MethodGet, srv.URL+"/api/quiz", "", "", nil)
	if code != http.StatusBadRequest || string(env.Data) != `"Limit is needed"` {
		t.Fatalf("public list without limit = %d %s", code, env.Data)
	}

	code, env = do(t, http.MethodGet, srv.URL+"/api/pickone", "", "", nil)
	if code != http.StatusOK || string(env.Data) != `"A-110"` {
		t.Fatalf("pickone = %d %s", code, env.Data)
	}

	code, env = do(t, http.MethodGet, srv.URL+"/api/quiz/tags", "", "", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"test"`) {
		t.Fatalf("tags = %d %s", code, env.Data)
	}

	code, env = do(t, http.MethodDelete, srv.URL+"/api/admin/quiz", admin, "", nil)
	if code != http.StatusBadRequest || string(env.Data) != `"Invalid parameter, id is required"` {
		t.Fatalf("delete without id = %d %s", code, env.Data)
	}
	code, env = do(t, http.MethodDelete, srv.URL+"/api/admin/quiz?id="+created.ID, admin, "", nil)
	if code != http.StatusOK || env.Error != nil {
		t.Fatalf("delete = %d %s", code, env.Data)
	}
}

func TestImportFPSOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	admin := token(t, security.Principal{UserID: "a1", AdminType: security.AdminTypeSuper})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "problems.xml")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write([]byte(`<fps version="1.2"><item>
		<title>Echo</title><time_limit unit="s">1</time_limit><memory_limit unit="mb">64</memory_limit>
		<description>d</description><input>i</input><output>o</output>
		<test_input>1</test_input><test_output>1</test_output>
	</item></fps>`))
	mw.Close()

	code, env := do(t, http.MethodPost, srv.URL+"/api/admin/import_fps", admin, mw.FormDataContentType(), buf.Bytes())
	if code != http.StatusOK || string(env.Data) != `{"import_count":1}` {
		t.Fatalf("import = %d %s", code, env.Data)
	}

	code, env = do(t, http.MethodPost, srv.URL+"/api/admin/import_fps", admin, "application/json", []byte(`{}`))
	if code != http.StatusBadRequest || string(env.Data) != `"Parse upload file error"` {
		t.Fatalf("import without file = %d %s", code, env.Data)
	}
}
