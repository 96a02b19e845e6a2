package db

import (
	"database/sql"
	"errors"
	"hash/fnv"

	"github.com/musekeep/muse/internal/models"
)

// tagPalette is the pool of colors assigned to tags created through
// resolution. The pick is a deterministic hash of the name so the same
// tag always gets the same color.
var tagPalette = []string{
	"#7aa2f7", "#bb9af7", "#7dcfff", "#9ece6a",
	"#e0af68", "#f7768e", "#ff9e64", "#2ac3de",
}

func tagColor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return tagPalette[h.Sum32()%uint32(len(tagPalette))]
}

// CreateTag creates a new tag. An empty color picks the hash-derived one.
func (s *Store) CreateTag(name, color string) (*models.Tag, error) {
	if name == "" {
		return nil, models.Invalidf("tag name is required")
	}
	if color == "" {
		color = tagColor(name)
	}
	result, err := s.Exec("INSERT INTO task_tags (name, color) VALUES (?, ?)", name, color)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetTag(id)
}

// GetTag retrieves a tag by ID.
func (s *Store) GetTag(id int64) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.QueryRow("SELECT id, name, color, created_at FROM task_tags WHERE id = ?", id).
		Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("tag %d", id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagByName retrieves a tag by its exact name.
func (s *Store) GetTagByName(name string) (*models.Tag, error) {
	t := &models.Tag{}
	err := s.QueryRow("SELECT id, name, color, created_at FROM task_tags WHERE name = ?", name).
		Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("tag %q", name)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTags returns all tags.
func (s *Store) ListTags() ([]models.Tag, error) {
	rows, err := s.Query("SELECT id, name, color, created_at FROM task_tags ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// TagUsageCounts returns how many live tasks carry each tag.
func (s *Store) TagUsageCounts() (map[int64]int, error) {
	rows, err := s.Query(`
		SELECT tt.tag_id, COUNT(*)
		FROM task_tag_relations tt
		JOIN tasks t ON t.id = tt.task_id AND t.is_deleted = 0
		GROUP BY tt.tag_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// UpdateTag updates a tag's name and color.
func (s *Store) UpdateTag(id int64, name, color string) error {
	if name == "" {
		return models.Invalidf("tag name is required")
	}
	_, err := s.Exec("UPDATE task_tags SET name = ?, color = ? WHERE id = ?", name, color, id)
	return err
}

// DeleteTag deletes a tag and its task relations in one transaction.
func (s *Store) DeleteTag(id int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM task_tag_relations WHERE tag_id = ?", id); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM task_tags WHERE id = ?", id)
		return err
	})
}

// resolveTag maps a tag name to an id inside tx, reusing an existing row
// on exact name match and creating the tag otherwise.
func resolveTag(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow("SELECT id FROM task_tags WHERE name = ?", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	result, err := tx.Exec("INSERT INTO task_tags (name, color) VALUES (?, ?)", name, tagColor(name))
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
