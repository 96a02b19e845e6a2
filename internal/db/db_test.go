package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/musekeep/muse/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "muse.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateTask(t *testing.T, s *Store, task *models.Task, tags []string) *models.Task {
	t.Helper()

	created, err := s.CreateTask(task, tags)
	if err != nil {
		t.Fatalf("failed to prepare task: %v", err)
	}
	return created
}

func timePtr(v time.Time) *time.Time {
	u := v.UTC().Truncate(time.Second)
	return &u
}

func TestOpenSeedsDefaults(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	categories, err := store.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories returned error: %v", err)
	}
	if len(categories) != 5 {
		t.Fatalf("expected 5 seeded categories, got %d", len(categories))
	}
	if categories[0].ID != models.DefaultCategoryID || categories[0].Name != "Uncategorized" {
		t.Fatalf("expected default category first, got %+v", categories[0])
	}
	for _, c := range categories {
		if c.IsCustom {
			t.Fatalf("seeded category %q marked custom", c.Name)
		}
	}

	firstRun, err := store.GetSettingBool("first_run", false)
	if err != nil {
		t.Fatalf("GetSettingBool returned error: %v", err)
	}
	if !firstRun {
		t.Fatalf("expected first_run to be seeded true")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "muse.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := store.SetSetting("theme_color", "#ffffff"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer store.Close()

	// Reopening must not reset existing values.
	color, err := store.GetSetting("theme_color", "")
	if err != nil {
		t.Fatalf("GetSetting returned error: %v", err)
	}
	if color != "#ffffff" {
		t.Fatalf("expected persisted theme_color, got %q", color)
	}
}

func TestGetSettingFallback(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	value, err := store.GetSetting("no_such_key", "fallback")
	if err != nil {
		t.Fatalf("GetSetting returned error: %v", err)
	}
	if value != "fallback" {
		t.Fatalf("expected fallback, got %q", value)
	}

	n, err := store.GetSettingInt("default_remind_minutes", 0)
	if err != nil {
		t.Fatalf("GetSettingInt returned error: %v", err)
	}
	if n != 30 {
		t.Fatalf("expected seeded 30, got %d", n)
	}
}

func TestSetSettingUpserts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if err := store.SetSetting("default_view", "kanban"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	if err := store.SetSetting("default_view", "calendar"); err != nil {
		t.Fatalf("second SetSetting returned error: %v", err)
	}

	value, err := store.GetSetting("default_view", "")
	if err != nil {
		t.Fatalf("GetSetting returned error: %v", err)
	}
	if value != "calendar" {
		t.Fatalf("expected calendar, got %q", value)
	}
}

func TestBackupRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	mustCreateTask(t, store, &models.Task{Title: "keep me"}, nil)

	backupPath := filepath.Join(t.TempDir(), "backup.db")
	if err := store.Backup(backupPath); err != nil {
		t.Fatalf("Backup returned error: %v", err)
	}

	// Mutate after the snapshot, then restore over it.
	extra := mustCreateTask(t, store, &models.Task{Title: "lost on restore"}, nil)
	if err := store.Restore(backupPath); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}

	tasks, err := store.ListTasks(true)
	if err != nil {
		t.Fatalf("ListTasks returned error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "keep me" {
		t.Fatalf("expected only the snapshotted task, got %+v", tasks)
	}
	if _, err := store.GetTask(extra.ID); err == nil {
		t.Fatalf("expected post-snapshot task to be gone")
	}
}
