package options

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	KeyLanguages = "languages"

	redisKeyPrefix = "options:"
)

// Provider is the read-only view of system options handed to services.
type Provider interface {
	Languages(ctx context.Context) ([]string, error)
}

// Getter is the subset of *redis.Client the store needs.
type Getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Store resolves an option from Redis first, then the options table, then
// the static defaults it was built with. Either backend may be nil.
type Store struct {
	rdb      Getter
	db       *sql.DB
	defaults map[string]json.RawMessage
}

func NewStore(rdb Getter, db *sql.DB, defaultLanguages []string) *Store {
	langs, _ := json.Marshal(defaultLanguages)
	return &Store{
		rdb: rdb,
		db:  db,
		defaults: map[string]json.RawMessage{
			KeyLanguages: langs,
		},
	}
}

// Raw returns the JSON value of key.
func (s *Store) Raw(ctx context.Context, key string) (json.RawMessage, error) {
	if s.rdb != nil {
		val, err := s.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
		switch {
		case err == nil:
			return val, nil
		case errors.Is(err, redis.Nil):
		default:
			log.WithError(err).WithField("key", key).Warn("options: redis lookup failed, falling back")
		}
	}

	if s.db != nil {
		var val []byte
		err := s.db.QueryRowContext(ctx, `SELECT value FROM options WHERE key = $1`, key).Scan(&val)
		switch {
		case err == nil:
			return val, nil
		case errors.Is(err, sql.ErrNoRows):
		default:
			log.WithError(err).WithField("key", key).Warn("options: database lookup failed, falling back")
		}
	}

	if val, ok := s.defaults[key]; ok {
		return val, nil
	}
	return nil, fmt.Errorf("options: no value for %q", key)
}

// Languages returns the names of the enabled judge languages. Stored values
// may be a plain list of names or a list of objects carrying a "name" field.
func (s *Store) Languages(ctx context.Context) ([]string, error) {
	raw, err := s.Raw(ctx, KeyLanguages)
	if err != nil {
		return nil, err
	}
	return decodeLanguages(raw)
}

func decodeLanguages(raw json.RawMessage) ([]string, error) {
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		return names, nil
	}
	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("options: decode languages: %w", err)
	}
	names = make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// Static is a fixed Provider, handy where no store is wired.
type Static []string

func (s Static) Languages(context.Context) ([]string, error) {
	return append([]string(nil), s...), nil
}
