// Package postgres provides the relational Store backend on pgx.
// Referential actions (protect, set-null, cascade) and the
// case-insensitive bank name uniqueness live in the schema; this
// package maps the resulting constraint errors onto domain errors.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tucredito/tu-credito-api-go/internal/infra/resilience"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Store is a Postgres-backed implementation of port.Store.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Connect opens a pool against the given URL and verifies it with a
// ping, retrying with backoff so the API survives a database that is
// still coming up.
func Connect(ctx context.Context, databaseURL string, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	err = resilience.RetryWithBackoff(ctx, resilience.Config{
		MaxRetries:     5,
		InitialBackoff: 500 * time.Millisecond,
	}, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			logger.Warn("database ping failed, retrying", zap.Error(err))
			return err
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS banks (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT NOT NULL,
			bank_type  TEXT NOT NULL,
			address    TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS banks_name_lower_idx
			ON banks (LOWER(name))`,
		`CREATE TABLE IF NOT EXISTS clients (
			id            BIGSERIAL PRIMARY KEY,
			full_name     TEXT NOT NULL,
			date_of_birth DATE NOT NULL,
			age           INT,
			nationality   TEXT NOT NULL DEFAULT '',
			address       TEXT NOT NULL DEFAULT '',
			email         TEXT NOT NULL,
			phone         TEXT NOT NULL DEFAULT '',
			person_type   TEXT NOT NULL,
			bank_id       BIGINT REFERENCES banks (id) ON DELETE SET NULL
		)`,
		`CREATE TABLE IF NOT EXISTS credits (
			id          BIGSERIAL PRIMARY KEY,
			client_id   BIGINT NOT NULL REFERENCES clients (id) ON DELETE CASCADE,
			description TEXT NOT NULL DEFAULT '',
			min_payment NUMERIC(14, 2) NOT NULL,
			max_payment NUMERIC(14, 2) NOT NULL,
			term_months INT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			bank_id     BIGINT NOT NULL REFERENCES banks (id) ON DELETE RESTRICT,
			credit_type TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// pgErrCode returns the Postgres error code of err, or "".
func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// whereBuilder accumulates WHERE conditions with numbered placeholders.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a condition. Occurrences of "$?" in cond are replaced by
// the next placeholder numbers, one per arg.
func (w *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		placeholder := fmt.Sprintf("$%d", len(w.args))
		cond = replaceFirst(cond, "$?", placeholder)
	}
	w.conds = append(w.conds, cond)
}

// clause renders the accumulated conditions as a WHERE clause, or ""
// when there are none.
func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	out := " WHERE " + w.conds[0]
	for _, c := range w.conds[1:] {
		out += " AND " + c
	}
	return out
}

func replaceFirst(s, old, new string) string {
	for i := 0; i+len(old) <= len(s); i++ {
		if s[i:i+len(old)] == old {
			return s[:i] + new + s[i+len(old):]
		}
	}
	return s
}

// likePattern wraps a raw filter value for an ILIKE substring match.
func likePattern(v string) string {
	return "%" + escapeLike(v) + "%"
}

func escapeLike(v string) string {
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v); i++ {
		switch v[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, v[i])
	}
	return string(out)
}
