package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies the idempotent DDL for the tables this service owns.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	schema, err := pick(driver, quizSchemaPostgres, quizSchemaSQLite)
	if err != nil {
		return err
	}
	return execScript(ctx, db, schema)
}

// MigrateCollaborators creates minimal versions of the tables owned by the
// contest, judge, account and options subsystems. Offline runs and tests only.
func MigrateCollaborators(ctx context.Context, db *sql.DB, driver string) error {
	schema, err := pick(driver, collaboratorSchemaPostgres, collaboratorSchemaSQLite)
	if err != nil {
		return err
	}
	return execScript(ctx, db, schema)
}

func pick(driver, pg, lite string) (string, error) {
	switch NormalizeDriver(driver) {
	case "pgx":
		return pg, nil
	case "sqlite":
		return lite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q (expected pgx|sqlite)", driver)
	}
}

func execScript(ctx context.Context, db *sql.DB, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrations: failed at %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

const quizSchemaPostgres = `
CREATE TABLE IF NOT EXISTS quiz_tags (
  id   TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quizzes (
  id                 TEXT PRIMARY KEY,
  display_id         TEXT NOT NULL,
  contest_id         TEXT,
  is_public          BOOLEAN NOT NULL DEFAULT FALSE,
  title              TEXT NOT NULL,
  description        TEXT NOT NULL,
  input_description  TEXT NOT NULL,
  output_description TEXT NOT NULL,
  samples            JSONB NOT NULL,
  test_case_id       TEXT NOT NULL,
  test_case_score    JSONB NOT NULL,
  hint               TEXT NOT NULL DEFAULT '',
  languages          JSONB NOT NULL,
  template           JSONB NOT NULL,
  time_limit         INTEGER NOT NULL,
  memory_limit       INTEGER NOT NULL,
  io_mode            JSONB NOT NULL,
  spj                BOOLEAN NOT NULL DEFAULT FALSE,
  spj_language       TEXT,
  spj_code           TEXT,
  spj_version        TEXT,
  spj_compile_ok     BOOLEAN NOT NULL DEFAULT FALSE,
  rule_type          TEXT NOT NULL,
  visible            BOOLEAN NOT NULL DEFAULT TRUE,
  difficulty         TEXT NOT NULL,
  source             TEXT NOT NULL DEFAULT '',
  total_score        INTEGER NOT NULL DEFAULT 0,
  submission_number  BIGINT NOT NULL DEFAULT 0,
  accepted_number    BIGINT NOT NULL DEFAULT 0,
  statistic_info     JSONB NOT NULL,
  share_submission   BOOLEAN NOT NULL DEFAULT FALSE,
  created_by         TEXT NOT NULL,
  create_time        TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_update_time   TIMESTAMPTZ
);

CREATE UNIQUE INDEX IF NOT EXISTS quizzes_global_display_id_key
  ON quizzes (display_id) WHERE contest_id IS NULL;

CREATE UNIQUE INDEX IF NOT EXISTS quizzes_contest_display_id_key
  ON quizzes (contest_id, display_id) WHERE contest_id IS NOT NULL;

CREATE INDEX IF NOT EXISTS quizzes_create_time_idx ON quizzes (create_time DESC);

CREATE TABLE IF NOT EXISTS quiz_tag_links (
  quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  tag_id  TEXT NOT NULL REFERENCES quiz_tags(id) ON DELETE CASCADE,
  PRIMARY KEY (quiz_id, tag_id)
);
`

const quizSchemaSQLite = `
CREATE TABLE IF NOT EXISTS quiz_tags (
  id   TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS quizzes (
  id                 TEXT PRIMARY KEY,
  display_id         TEXT NOT NULL,
  contest_id         TEXT,
  is_public          BOOLEAN NOT NULL DEFAULT 0,
  title              TEXT NOT NULL,
  description        TEXT NOT NULL,
  input_description  TEXT NOT NULL,
  output_description TEXT NOT NULL,
  samples            TEXT NOT NULL,
  test_case_id       TEXT NOT NULL,
  test_case_score    TEXT NOT NULL,
  hint               TEXT NOT NULL DEFAULT '',
  languages          TEXT NOT NULL,
  template           TEXT NOT NULL,
  time_limit         INTEGER NOT NULL,
  memory_limit       INTEGER NOT NULL,
  io_mode            TEXT NOT NULL,
  spj                BOOLEAN NOT NULL DEFAULT 0,
  spj_language       TEXT,
  spj_code           TEXT,
  spj_version        TEXT,
  spj_compile_ok     BOOLEAN NOT NULL DEFAULT 0,
  rule_type          TEXT NOT NULL,
  visible            BOOLEAN NOT NULL DEFAULT 1,
  difficulty         TEXT NOT NULL,
  source             TEXT NOT NULL DEFAULT '',
  total_score        INTEGER NOT NULL DEFAULT 0,
  submission_number  INTEGER NOT NULL DEFAULT 0,
  accepted_number    INTEGER NOT NULL DEFAULT 0,
  statistic_info     TEXT NOT NULL,
  share_submission   BOOLEAN NOT NULL DEFAULT 0,
  created_by         TEXT NOT NULL,
  create_time        TIMESTAMP NOT NULL,
  last_update_time   TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS quizzes_global_display_id_key
  ON quizzes (display_id) WHERE contest_id IS NULL;

CREATE UNIQUE INDEX IF NOT EXISTS quizzes_contest_display_id_key
  ON quizzes (contest_id, display_id) WHERE contest_id IS NOT NULL;

CREATE INDEX IF NOT EXISTS quizzes_create_time_idx ON quizzes (create_time DESC);

CREATE TABLE IF NOT EXISTS quiz_tag_links (
  quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  tag_id  TEXT NOT NULL REFERENCES quiz_tags(id) ON DELETE CASCADE,
  PRIMARY KEY (quiz_id, tag_id)
);
`

const collaboratorSchemaPostgres = `
CREATE TABLE IF NOT EXISTS contests (
  id             TEXT PRIMARY KEY,
  title          TEXT NOT NULL,
  rule_type      TEXT NOT NULL,
  created_by     TEXT NOT NULL,
  start_time     TIMESTAMPTZ NOT NULL,
  end_time       TIMESTAMPTZ NOT NULL,
  visible        BOOLEAN NOT NULL DEFAULT TRUE,
  real_time_rank BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS submissions (
  id          TEXT PRIMARY KEY,
  quiz_id     TEXT NOT NULL,
  user_id     TEXT NOT NULL,
  contest_id  TEXT,
  result      INTEGER NOT NULL DEFAULT 6,
  create_time TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS submissions_quiz_id_idx ON submissions (quiz_id);

CREATE TABLE IF NOT EXISTS user_profiles (
  user_id            TEXT PRIMARY KEY,
  acm_quizs_status JSONB NOT NULL DEFAULT '{}',
  oi_quizs_status  JSONB NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS options (
  key   TEXT PRIMARY KEY,
  value JSONB NOT NULL
);
`

const collaboratorSchemaSQLite = `
CREATE TABLE IF NOT EXISTS contests (
  id             TEXT PRIMARY KEY,
  title          TEXT NOT NULL,
  rule_type      TEXT NOT NULL,
  created_by     TEXT NOT NULL,
  start_time     TIMESTAMP NOT NULL,
  end_time       TIMESTAMP NOT NULL,
  visible        BOOLEAN NOT NULL DEFAULT 1,
  real_time_rank BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS submissions (
  id          TEXT PRIMARY KEY,
  quiz_id     TEXT NOT NULL,
  user_id     TEXT NOT NULL,
  contest_id  TEXT,
  result      INTEGER NOT NULL DEFAULT 6,
  create_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS submissions_quiz_id_idx ON submissions (quiz_id);

CREATE TABLE IF NOT EXISTS user_profiles (
  user_id            TEXT PRIMARY KEY,
  acm_quizs_status TEXT NOT NULL DEFAULT '{}',
  oi_quizs_status  TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS options (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
