package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/musekeep/muse/internal/models"
)

const inspirationColumns = `id, content, tags, created_at, updated_at, is_deleted`

// CreateInspiration saves a new note. Tags is a free-text comma-joined
// list; de-duplication is the caller's concern.
func (s *Store) CreateInspiration(content, tags string) (*models.Inspiration, error) {
	if content == "" {
		return nil, models.Invalidf("inspiration content is required")
	}
	stamp := now()
	result, err := s.Exec(`
		INSERT INTO inspirations (content, tags, created_at, updated_at) VALUES (?, ?, ?, ?)
	`, content, tags, stamp, stamp)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetInspiration(id)
}

// GetInspiration retrieves a note by ID.
func (s *Store) GetInspiration(id int64) (*models.Inspiration, error) {
	row := s.QueryRow(`SELECT `+inspirationColumns+` FROM inspirations WHERE id = ?`, id)
	return scanInspiration(row)
}

// ListInspirations returns live notes (or all when includeDeleted),
// newest first.
func (s *Store) ListInspirations(includeDeleted bool) ([]models.Inspiration, error) {
	query := `SELECT ` + inspirationColumns + ` FROM inspirations`
	if !includeDeleted {
		query += ` WHERE is_deleted = 0`
	}
	query += ` ORDER BY updated_at DESC`
	return s.queryInspirations(query)
}

// ListDeletedInspirations returns the notes in the recycle bin.
func (s *Store) ListDeletedInspirations() ([]models.Inspiration, error) {
	return s.queryInspirations(`
		SELECT ` + inspirationColumns + ` FROM inspirations
		WHERE is_deleted = 1
		ORDER BY updated_at DESC
	`)
}

// SearchInspirations matches q as a case-insensitive substring of
// content or tags, excluding deleted notes.
func (s *Store) SearchInspirations(q string) ([]models.Inspiration, error) {
	pattern := "%" + q + "%"
	return s.queryInspirations(`
		SELECT `+inspirationColumns+` FROM inspirations
		WHERE is_deleted = 0 AND (content LIKE ? OR tags LIKE ?)
		ORDER BY updated_at DESC
	`, pattern, pattern)
}

// UpdateInspiration overwrites a note's content and tags.
func (s *Store) UpdateInspiration(id int64, content, tags string) error {
	if content == "" {
		return models.Invalidf("inspiration content is required")
	}
	_, err := s.Exec(`
		UPDATE inspirations SET content = ?, tags = ?, updated_at = ? WHERE id = ?
	`, content, tags, now(), id)
	return err
}

// DeleteInspiration moves a note to the recycle bin.
func (s *Store) DeleteInspiration(id int64) error {
	_, err := s.Exec("UPDATE inspirations SET is_deleted = 1, updated_at = ? WHERE id = ?", now(), id)
	return err
}

// RestoreInspiration brings a note back from the recycle bin.
func (s *Store) RestoreInspiration(id int64) error {
	_, err := s.Exec("UPDATE inspirations SET is_deleted = 0, updated_at = ? WHERE id = ?", now(), id)
	return err
}

// PurgeInspiration permanently removes a note.
func (s *Store) PurgeInspiration(id int64) error {
	_, err := s.Exec("DELETE FROM inspirations WHERE id = ?", id)
	return err
}

// EmptyInspirationBin permanently removes every soft-deleted note.
func (s *Store) EmptyInspirationBin() (int64, error) {
	result, err := s.Exec("DELETE FROM inspirations WHERE is_deleted = 1")
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// PurgeInspirationsDeletedBefore removes bin entries older than cutoff.
func (s *Store) PurgeInspirationsDeletedBefore(cutoff time.Time) (int64, error) {
	result, err := s.Exec(
		"DELETE FROM inspirations WHERE is_deleted = 1 AND updated_at < ?", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Store) queryInspirations(query string, args ...any) ([]models.Inspiration, error) {
	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []models.Inspiration
	for rows.Next() {
		var n models.Inspiration
		if err := rows.Scan(&n.ID, &n.Content, &n.Tags, &n.CreatedAt, &n.UpdatedAt, &n.IsDeleted); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func scanInspiration(row *sql.Row) (*models.Inspiration, error) {
	var n models.Inspiration
	err := row.Scan(&n.ID, &n.Content, &n.Tags, &n.CreatedAt, &n.UpdatedAt, &n.IsDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("inspiration")
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}
