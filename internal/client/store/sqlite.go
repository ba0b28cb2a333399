package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// dbtx is the subset of database/sql the queries need; both *sql.DB and
// *sql.Tx satisfy it.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStore keeps auth state in a local SQLite file, one row per key with
// an optional expiry timestamp. Expired rows read as absent.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
  key        TEXT PRIMARY KEY,
  value      TEXT NOT NULL,
  expires_at INTEGER NOT NULL DEFAULT 0
);
`

// OpenSQLite opens (creating if needed) the credential database at dsn.
// The caller owns closing the returned store.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init credential store: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// NewSQLiteStore wraps an already-open database handle. The schema must
// exist; use OpenSQLite for the common path.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Get(ctx context.Context, key Key) (string, bool, error) {
	var value string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM credentials WHERE key = ?`, string(key)).
		Scan(&value, &expiresAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get credential[%s]: %w", key, err)
	}
	if expiresAt > 0 && s.now().Unix() >= expiresAt {
		// Lazy cleanup; an expired cookie reads as absent.
		_ = s.Clear(ctx, key)
		return "", false, nil
	}
	return value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key Key, value string, ttl time.Duration) error {
	return s.set(ctx, s.db, key, value, ttl)
}

func (s *SQLiteStore) set(ctx context.Context, db dbtx, key Key, value string, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).Unix()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO credentials (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, string(key), value, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set credential[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context, key Key) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE key = ?`, string(key))
	if err != nil {
		return fmt.Errorf("failed to clear credential[%s]: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials`)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// SaveAuth writes access token, refresh token and user record in one
// transaction so no reader sees a token without its matching user.
func (s *SQLiteStore) SaveAuth(ctx context.Context, access, refresh, user string, ttl time.Duration) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.set(ctx, tx, KeyAccessToken, access, ttl); err != nil {
			return err
		}
		if err := s.set(ctx, tx, KeyRefreshToken, refresh, ttl); err != nil {
			return err
		}
		return s.set(ctx, tx, KeyUser, user, ttl)
	})
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on error or panic. Panics are rethrown.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
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
		err = tx.Commit()
	}()
	err = fn(tx)
	return err
}
