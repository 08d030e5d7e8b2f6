package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_DSN", "")
	t.Setenv("DEFAULT_LANGUAGES", " C , C++,,Python3 ")

	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("APIPort = %q, want 8080", cfg.APIPort)
	}
	want := []string{"C", "C++", "Python3"}
	if len(cfg.DefaultLanguages) != len(want) {
		t.Fatalf("DefaultLanguages = %v, want %v", cfg.DefaultLanguages, want)
	}
	for i := range want {
		if cfg.DefaultLanguages[i] != want[i] {
			t.Fatalf("DefaultLanguages[%d] = %q, want %q", i, cfg.DefaultLanguages[i], want[i])
		}
	}
	if cfg.DBConnStr == "" || cfg.DBConnStr[:5] != "host=" {
		t.Fatalf("expected a keyword/value postgres DSN, got %q", cfg.DBConnStr)
	}
}

func TestLoadSQLiteDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_DSN", "file:/tmp/quiz-test.db")
	t.Setenv("BOOTSTRAP_COLLABORATOR_TABLES", "true")

	cfg := Load()
	if cfg.DBConnStr != "file:/tmp/quiz-test.db" {
		t.Fatalf("DBConnStr = %q", cfg.DBConnStr)
	}
	if !cfg.BootstrapCollaboratorTables {
		t.Fatalf("expected BootstrapCollaboratorTables to be true")
	}
}
