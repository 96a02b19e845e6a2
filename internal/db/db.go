package db

import (
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Store wraps the database connection. One Store is constructed at
// startup and handed to everything that needs it; database/sql pools
// connections underneath, so the UI and the reminder worker share it.
type Store struct {
	*sql.DB
	path string
}

// Open opens (creating if necessary) the database at path, applies the
// schema and seeds default data. Safe to call on an existing database.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	s := &Store{DB: sqlDB, path: path}
	if err := s.init(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := s.Exec(schema); err != nil {
		return err
	}
	if err := s.seedCategories(); err != nil {
		return err
	}
	return s.seedSettings()
}

// Path returns the on-disk location of the database file.
func (s *Store) Path() string {
	return s.path
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// now returns the timestamp used for all server-side stamps. Second
// precision keeps stored values lexicographically comparable.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// defaultSettings are seeded once; existing values are never overwritten.
var defaultSettings = map[string]string{
	"first_run":              "true",
	"theme_color":            "#7aa2f7",
	"bg_mode":                "dark",
	"default_view":           "list",
	"sound_enabled":          "true",
	"popup_enabled":          "true",
	"auto_purge_bin":         "false",
	"calendar_start_day":     "1",
	"default_remind_minutes": "30",
}

func (s *Store) seedSettings() error {
	for key, value := range defaultSettings {
		_, err := s.Exec(`
			INSERT INTO user_settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO NOTHING
		`, key, value)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetSetting retrieves a setting value by key, falling back when unset.
func (s *Store) GetSetting(key, fallback string) (string, error) {
	var value string
	err := s.QueryRow("SELECT value FROM user_settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return fallback, err
	}
	return value, nil
}

// GetSettingBool reads a setting as a boolean.
func (s *Store) GetSettingBool(key string, fallback bool) (bool, error) {
	raw, err := s.GetSetting(key, strconv.FormatBool(fallback))
	if err != nil {
		return fallback, err
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, nil
	}
	return parsed, nil
}

// GetSettingInt reads a setting as an integer.
func (s *Store) GetSettingInt(key string, fallback int) (int, error) {
	raw, err := s.GetSetting(key, strconv.Itoa(fallback))
	if err != nil {
		return fallback, err
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, nil
	}
	return parsed, nil
}

// SetSetting sets a setting value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.Exec(`
		INSERT INTO user_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}
