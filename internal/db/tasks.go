package db

import (
	"database/sql"
	"errors"
	"time"

	"github.com/musekeep/muse/internal/models"
)

const taskColumns = `id, title, description, category_id, priority, status,
	start_time, deadline, remind_time, is_reminded, is_deleted,
	created_at, updated_at, completed_at`

// CreateTask inserts a task and links its tags in a single transaction.
// Tag names are resolved in order: an existing tag with the exact name is
// reused, otherwise the tag is created with a hash-derived color.
func (s *Store) CreateTask(t *models.Task, tagNames []string) (*models.Task, error) {
	if t == nil || t.Title == "" {
		return nil, models.Invalidf("task title is required")
	}
	if !t.Priority.Valid() {
		return nil, models.Invalidf("priority %d", int(t.Priority))
	}
	if !t.Status.Valid() {
		return nil, models.Invalidf("status %d", int(t.Status))
	}

	categoryID := t.CategoryID
	if categoryID == 0 {
		categoryID = models.DefaultCategoryID
	}

	stamp := now()
	var completedAt *time.Time
	if t.Status == models.StatusDone {
		completedAt = &stamp
	}

	var id int64
	err := s.withTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO tasks (title, description, category_id, priority, status,
				start_time, deadline, remind_time, created_at, updated_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.Title, t.Description, categoryID, t.Priority, t.Status,
			t.StartTime, t.Deadline, t.RemindAt, stamp, stamp, completedAt)
		if err != nil {
			return err
		}
		if id, err = result.LastInsertId(); err != nil {
			return err
		}
		return linkTags(tx, id, tagNames)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(id)
}

// linkTags resolves tagNames and inserts relations in resolved order.
func linkTags(tx *sql.Tx, taskID int64, tagNames []string) error {
	for _, name := range tagNames {
		if name == "" {
			continue
		}
		tagID, err := resolveTag(tx, name)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO task_tag_relations (task_id, tag_id) VALUES (?, ?)
		`, taskID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// GetTask retrieves a task by ID with its tags.
func (s *Store) GetTask(id int64) (*models.Task, error) {
	row := s.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}

	tags, err := s.GetTaskTags(id)
	if err != nil {
		return nil, err
	}
	t.Tags = tags
	return t, nil
}

// ListTasks returns all live tasks (or every task when includeDeleted),
// ordered by priority then deadline with undated tasks last.
func (s *Store) ListTasks(includeDeleted bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	if !includeDeleted {
		query += ` WHERE is_deleted = 0`
	}
	query += ` ORDER BY priority ASC, deadline IS NULL, deadline ASC`
	return s.queryTasks(query)
}

// ListDeletedTasks returns the recycle bin contents, most recently
// deleted first.
func (s *Store) ListDeletedTasks() ([]models.Task, error) {
	return s.queryTasks(`
		SELECT ` + taskColumns + ` FROM tasks
		WHERE is_deleted = 1
		ORDER BY updated_at DESC
	`)
}

// ListTasksByStatus returns live tasks in the given status.
func (s *Store) ListTasksByStatus(status models.Status) ([]models.Task, error) {
	return s.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE is_deleted = 0 AND status = ?
		ORDER BY priority ASC, deadline IS NULL, deadline ASC
	`, status)
}

// ListTasksByCategory returns live tasks in the given category.
func (s *Store) ListTasksByCategory(categoryID int64) ([]models.Task, error) {
	return s.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE is_deleted = 0 AND category_id = ?
		ORDER BY priority ASC, deadline IS NULL, deadline ASC
	`, categoryID)
}

// ListTasksByTag returns live tasks carrying the given tag.
func (s *Store) ListTasksByTag(tagID int64) ([]models.Task, error) {
	return s.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE is_deleted = 0
		  AND id IN (SELECT task_id FROM task_tag_relations WHERE tag_id = ?)
		ORDER BY priority ASC, deadline IS NULL, deadline ASC
	`, tagID)
}

// UpdateTask overwrites all task columns and fully replaces the tag set,
// in one transaction. completed_at is stamped when the status moves into
// done and cleared when it moves out.
func (s *Store) UpdateTask(t *models.Task, tagNames []string) (*models.Task, error) {
	if t == nil || t.ID <= 0 || t.Title == "" {
		return nil, models.Invalidf("task id and title are required")
	}
	if !t.Priority.Valid() {
		return nil, models.Invalidf("priority %d", int(t.Priority))
	}
	if !t.Status.Valid() {
		return nil, models.Invalidf("status %d", int(t.Status))
	}

	categoryID := t.CategoryID
	if categoryID == 0 {
		categoryID = models.DefaultCategoryID
	}
	stamp := now()

	err := s.withTx(func(tx *sql.Tx) error {
		var existing sql.NullTime
		err := tx.QueryRow("SELECT completed_at FROM tasks WHERE id = ?", t.ID).Scan(&existing)
		if errors.Is(err, sql.ErrNoRows) {
			return models.NotFoundf("task %d", t.ID)
		}
		if err != nil {
			return err
		}

		var completedAt *time.Time
		if t.Status == models.StatusDone {
			if existing.Valid {
				completedAt = &existing.Time
			} else {
				completedAt = &stamp
			}
		}

		if _, err := tx.Exec(`
			UPDATE tasks SET title = ?, description = ?, category_id = ?, priority = ?,
				status = ?, start_time = ?, deadline = ?, remind_time = ?,
				updated_at = ?, completed_at = ?
			WHERE id = ?
		`, t.Title, t.Description, categoryID, t.Priority, t.Status,
			t.StartTime, t.Deadline, t.RemindAt, stamp, completedAt, t.ID); err != nil {
			return err
		}

		// Tag relations are replaced wholesale rather than diffed.
		if _, err := tx.Exec("DELETE FROM task_tag_relations WHERE task_id = ?", t.ID); err != nil {
			return err
		}
		return linkTags(tx, t.ID, tagNames)
	})
	if err != nil {
		return nil, err
	}
	return s.GetTask(t.ID)
}

// SetTaskStatus changes only the status, honoring the completed_at
// invariant.
func (s *Store) SetTaskStatus(id int64, status models.Status) error {
	if !status.Valid() {
		return models.Invalidf("status %d", int(status))
	}
	stamp := now()

	if status == models.StatusDone {
		_, err := s.Exec(`
			UPDATE tasks SET status = ?, updated_at = ?,
				completed_at = COALESCE(completed_at, ?)
			WHERE id = ?
		`, status, stamp, stamp, id)
		return err
	}
	_, err := s.Exec(`
		UPDATE tasks SET status = ?, updated_at = ?, completed_at = NULL WHERE id = ?
	`, status, stamp, id)
	return err
}

// DeleteTask moves a task to the recycle bin.
func (s *Store) DeleteTask(id int64) error {
	_, err := s.Exec("UPDATE tasks SET is_deleted = 1, updated_at = ? WHERE id = ?", now(), id)
	return err
}

// RestoreTask brings a task back from the recycle bin.
func (s *Store) RestoreTask(id int64) error {
	_, err := s.Exec("UPDATE tasks SET is_deleted = 0, updated_at = ? WHERE id = ?", now(), id)
	return err
}

// PurgeTask permanently removes a task and its tag relations.
func (s *Store) PurgeTask(id int64) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM task_tag_relations WHERE task_id = ?", id); err != nil {
			return err
		}
		_, err := tx.Exec("DELETE FROM tasks WHERE id = ?", id)
		return err
	})
}

// EmptyTaskBin permanently removes every soft-deleted task.
func (s *Store) EmptyTaskBin() (int64, error) {
	var n int64
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM task_tag_relations
			WHERE task_id IN (SELECT id FROM tasks WHERE is_deleted = 1)
		`); err != nil {
			return err
		}
		result, err := tx.Exec("DELETE FROM tasks WHERE is_deleted = 1")
		if err != nil {
			return err
		}
		n, err = result.RowsAffected()
		return err
	})
	return n, err
}

// PurgeTasksDeletedBefore removes bin entries whose last update is older
// than cutoff. Used by the auto-purge job.
func (s *Store) PurgeTasksDeletedBefore(cutoff time.Time) (int64, error) {
	var n int64
	err := s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM task_tag_relations
			WHERE task_id IN (SELECT id FROM tasks WHERE is_deleted = 1 AND updated_at < ?)
		`, cutoff.UTC()); err != nil {
			return err
		}
		result, err := tx.Exec(
			"DELETE FROM tasks WHERE is_deleted = 1 AND updated_at < ?", cutoff.UTC())
		if err != nil {
			return err
		}
		n, err = result.RowsAffected()
		return err
	})
	return n, err
}

// MarkOverdueTasks transitions every live task whose deadline has passed
// and whose status is neither done nor already overdue. Returns the
// number of tasks moved.
func (s *Store) MarkOverdueTasks(at time.Time) (int64, error) {
	result, err := s.Exec(`
		UPDATE tasks SET status = ?, updated_at = ?
		WHERE is_deleted = 0
		  AND status NOT IN (?, ?)
		  AND deadline IS NOT NULL
		  AND deadline < ?
	`, models.StatusOverdue, now(), models.StatusDone, models.StatusOverdue, at.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DueReminders returns live, unfinished tasks whose remind time has
// arrived and that have not been reminded yet.
func (s *Store) DueReminders(at time.Time) ([]models.Task, error) {
	return s.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE is_deleted = 0
		  AND is_reminded = 0
		  AND remind_time IS NOT NULL
		  AND remind_time <= ?
		  AND status != ?
		ORDER BY remind_time ASC
	`, at.UTC(), models.StatusDone)
}

// MarkReminded flags a task so its reminder fires only once.
func (s *Store) MarkReminded(id int64) error {
	_, err := s.Exec("UPDATE tasks SET is_reminded = 1 WHERE id = ?", id)
	return err
}

// GetTaskTags returns a task's tags in the order they were linked.
func (s *Store) GetTaskTags(taskID int64) ([]models.Tag, error) {
	rows, err := s.Query(`
		SELECT t.id, t.name, t.color, t.created_at
		FROM task_tags t
		JOIN task_tag_relations tt ON t.id = tt.tag_id
		WHERE tt.task_id = ?
		ORDER BY tt.rowid
	`, taskID)
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

func (s *Store) queryTasks(query string, args ...any) ([]models.Task, error) {
	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Load tags for each task
	for i := range tasks {
		tags, err := s.GetTaskTags(tasks[i].ID)
		if err != nil {
			return nil, err
		}
		tasks[i].Tags = tags
	}
	return tasks, nil
}

func scanTask(row interface {
	Scan(dest ...any) error
}) (*models.Task, error) {
	var t models.Task
	var start, deadline, remind, completed sql.NullTime

	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.CategoryID, &t.Priority,
		&t.Status, &start, &deadline, &remind, &t.IsReminded, &t.IsDeleted,
		&t.CreatedAt, &t.UpdatedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundf("task")
	}
	if err != nil {
		return nil, err
	}

	t.StartTime = nullTime(start)
	t.Deadline = nullTime(deadline)
	t.RemindAt = nullTime(remind)
	t.CompletedAt = nullTime(completed)
	return &t, nil
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	u := v.Time
	return &u
}
