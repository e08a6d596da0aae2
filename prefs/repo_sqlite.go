package prefs

import (
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteRepo is a durable preference store backed by a single-table SQLite
// database, the desktop stand-in for browser local storage.
type SQLiteRepo struct {
	db *sql.DB
}

var _ Repo = (*SQLiteRepo)(nil)

// NewSQLiteRepo opens (creating if needed) the preference database at path.
func NewSQLiteRepo(path string) (*SQLiteRepo, error) {
	if path == "" {
		return nil, errors.New("[NewSQLiteRepo] path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "[NewSQLiteRepo] open database")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS prefs (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "[NewSQLiteRepo] create table")
	}

	return &SQLiteRepo{db: db}, nil
}

// Close releases the database handle.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// Get retrieves a stored value.
func (r *SQLiteRepo) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "[Get] key %q", key)
	}
	return value, true, nil
}

// Set stores or replaces a value.
func (r *SQLiteRepo) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return errors.Wrapf(err, "[Set] key %q", key)
	}
	return nil
}

// Delete removes a key.
func (r *SQLiteRepo) Delete(key string) error {
	if _, err := r.db.Exec(`DELETE FROM prefs WHERE key = ?`, key); err != nil {
		return errors.Wrapf(err, "[Delete] key %q", key)
	}
	return nil
}
