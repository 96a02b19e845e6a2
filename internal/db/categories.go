package db

import (
	"database/sql"
	"errors"

	"github.com/musekeep/muse/internal/models"
)

// seedCategories inserts the built-in categories. The default category
// takes id 1 so task rows can fall back to it.
func (s *Store) seedCategories() error {
	_, err := s.Exec(`
		INSERT OR IGNORE INTO task_categories (id, name, color, is_custom)
		VALUES (1, 'Uncategorized', '#565f89', 0)
	`)
	if err != nil {
		return err
	}

	defaults := []struct {
		name  string
		color string
	}{
		{"Work", "#7aa2f7"},
		{"Study", "#bb9af7"},
		{"Life", "#9ece6a"},
		{"Ideas", "#e0af68"},
	}
	for _, c := range defaults {
		_, err := s.Exec(`
			INSERT OR IGNORE INTO task_categories (name, color, is_custom) VALUES (?, ?, 0)
		`, c.name, c.color)
		if err != nil {
			return err
		}
	}
	return nil
}

// CreateCategory creates a custom category.
func (s *Store) CreateCategory(name, color string) (*models.Category, error) {
	if name == "" {
		return nil, models.Invalidf("category name is required")
	}
	result, err := s.Exec(`
		INSERT INTO task_categories (name, color, is_custom) VALUES (?, ?, 1)
	`, name, color)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetCategory(id)
}

// GetCategory retrieves a category by ID.
func (s *Store) GetCategory(id int64) (*models.Category, error) {
	c := &models.Category{}
	err := s.QueryRow(`
		SELECT id, name, color, is_custom, created_at FROM task_categories WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Color, &c.IsCustom, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("category %d", id)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns all categories, built-ins first.
func (s *Store) ListCategories() ([]models.Category, error) {
	rows, err := s.Query(`
		SELECT id, name, color, is_custom, created_at
		FROM task_categories ORDER BY is_custom, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.IsCustom, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory updates a category's name and color.
func (s *Store) UpdateCategory(id int64, name, color string) error {
	if name == "" {
		return models.Invalidf("category name is required")
	}
	_, err := s.Exec("UPDATE task_categories SET name = ?, color = ? WHERE id = ?", name, color, id)
	return err
}

// DeleteCategory deletes a category. Tasks referencing it are left
// untouched; their category resolves to the default on read. The default
// category itself cannot be deleted.
func (s *Store) DeleteCategory(id int64) error {
	if id == models.DefaultCategoryID {
		return models.Invalidf("default category cannot be deleted")
	}
	_, err := s.Exec("DELETE FROM task_categories WHERE id = ?", id)
	return err
}
