package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresStore keeps answers in a single table keyed by question.
type PostgresStore struct {
	db    *sql.DB
	table string
	now   func() time.Time
}

func NewPostgresStore(db *sql.DB, table string) (*PostgresStore, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresStore{db: db, table: table, now: time.Now}, nil
}

func (s *PostgresStore) Name() string { return "postgres" }

// EnsureSchema creates the cache table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	question TEXT PRIMARY KEY,
	answer TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create %s: %w", s.table, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	query := fmt.Sprintf(`SELECT answer FROM %s WHERE question = $1 AND expires_at > $2`, s.table)

	var answer string
	err := s.db.QueryRowContext(ctx, query, key, s.now().UTC()).Scan(&answer)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return answer, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	query := fmt.Sprintf(`INSERT INTO %s (question, answer, expires_at) VALUES ($1, $2, $3)
ON CONFLICT (question) DO UPDATE SET answer = EXCLUDED.answer, expires_at = EXCLUDED.expires_at`, s.table)

	_, err := s.db.ExecContext(ctx, query, key, value, s.now().UTC().Add(ttl))
	return err
}

// Purge deletes expired rows and returns how many were removed.
func (s *PostgresStore) Purge(ctx context.Context) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE expires_at <= $1`, s.table)
	res, err := s.db.ExecContext(ctx, query, s.now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
