package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver, registers "pgx"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // registers "sqlite"
)

var DB *sql.DB

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Connect opens the global pool used by cmd/server.
func Connect(ctx context.Context, driver, dsn string) error {
	db, err := Open(ctx, driver, dsn)
	if err != nil {
		return err
	}
	DB = db
	log.WithField("driver", NormalizeDriver(driver)).Info("Successfully connected to database")
	return nil
}

// Open opens and verifies a pool without touching the package global.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	driver = NormalizeDriver(driver)
	if driver == "" {
		return nil, errors.New("database: driver is required")
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	tunePool(driver, db)

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	if driver == "sqlite" {
		if err := applySQLitePragmas(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func Close() {
	if DB != nil {
		DB.Close()
		log.Info("Database connection closed.")
	}
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("database: commit: %w", cerr)
		}
	}()
	err = fn(tx)
	return
}

// NormalizeDriver maps common aliases to the registered driver names.
func NormalizeDriver(d string) string {
	switch strings.ToLower(strings.TrimSpace(d)) {
	case "pg", "pgx", "postgres", "postgresql":
		return "pgx"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return strings.ToLower(strings.TrimSpace(d))
	}
}

func tunePool(driver string, db *sql.DB) {
	if driver == "sqlite" {
		// single writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		return
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
}

func applySQLitePragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("database: sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}
