// Package sqliterepo persists session keys in a SQLite database.
package sqliterepo

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-auth-client/sessions"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const schema = `CREATE TABLE IF NOT EXISTS session_kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

var _ sessions.Repo = (*SQLiteRepo)(nil)

type SQLiteRepo struct {
	db *sql.DB
}

// New opens the database at path and creates the key-value table.
func New(path string) (*SQLiteRepo, error) {
	if path == "" {
		return nil, errors.New("[sqliterepo.New] path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("[sqliterepo.New] open %s: %w", path, err)
	}
	// SQLite serializes writers; one connection avoids SQLITE_BUSY between our own calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("[sqliterepo.New] schema: %w", err)
	}
	return &SQLiteRepo{db: db}, nil
}

func (r *SQLiteRepo) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM session_kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("[SQLiteRepo.Get] %w", err)
	}
	return value, true, nil
}

func (r *SQLiteRepo) Set(key, value string) error {
	_, err := r.db.Exec(`INSERT INTO session_kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return fmt.Errorf("[SQLiteRepo.Set] %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	if _, err := r.db.Exec(`DELETE FROM session_kv WHERE key IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("[SQLiteRepo.Delete] %w", err)
	}
	return nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}
