package reminder

import (
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/musekeep/muse/internal/db"
	"github.com/musekeep/muse/internal/models"
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()

	store, err := db.Open(filepath.Join(t.TempDir(), "muse.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func timePtr(v time.Time) *time.Time {
	u := v.UTC().Truncate(time.Second)
	return &u
}

func drainEvents(w *Worker) []models.Event {
	var events []models.Event
	for {
		select {
		case ev := <-w.Events():
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestSweepMarksOverdueAndEmitsEvent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	task, err := store.CreateTask(&models.Task{
		Title:    "late",
		Deadline: timePtr(time.Now().Add(-time.Hour)),
	}, nil)
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	w := New(store, zap.NewNop(), time.Second)
	if err := w.Sweep(time.Now()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	swept, err := store.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if swept.Status != models.StatusOverdue {
		t.Fatalf("expected overdue status, got %v", swept.Status)
	}

	events := drainEvents(w)
	if len(events) != 1 || events[0].Kind != models.EventTasksOverdue {
		t.Fatalf("expected one overdue event, got %+v", events)
	}
	if events[0].Count != 1 {
		t.Fatalf("expected count 1, got %d", events[0].Count)
	}
	if events[0].ID == "" {
		t.Fatalf("expected event id to be set")
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.CreateTask(&models.Task{
		Title:    "late",
		Deadline: timePtr(time.Now().Add(-time.Hour)),
	}, nil); err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	w := New(store, zap.NewNop(), time.Second)
	if err := w.Sweep(time.Now()); err != nil {
		t.Fatalf("first Sweep returned error: %v", err)
	}
	drainEvents(w)

	if err := w.Sweep(time.Now()); err != nil {
		t.Fatalf("second Sweep returned error: %v", err)
	}
	if events := drainEvents(w); len(events) != 0 {
		t.Fatalf("expected no events on second sweep, got %+v", events)
	}
}

func TestSweepFiresRemindersOnce(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	task, err := store.CreateTask(&models.Task{
		Title:    "ping me",
		RemindAt: timePtr(time.Now().Add(-time.Minute)),
	}, nil)
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}

	w := New(store, zap.NewNop(), time.Second)
	if err := w.Sweep(time.Now()); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	events := drainEvents(w)
	if len(events) != 1 || events[0].Kind != models.EventReminderDue {
		t.Fatalf("expected one reminder event, got %+v", events)
	}
	if events[0].TaskID != task.ID || events[0].Title != "ping me" {
		t.Fatalf("expected event for the task, got %+v", events[0])
	}

	reminded, err := store.GetTask(task.ID)
	if err != nil {
		t.Fatalf("GetTask returned error: %v", err)
	}
	if !reminded.IsReminded {
		t.Fatalf("expected is_reminded set")
	}

	if err := w.Sweep(time.Now()); err != nil {
		t.Fatalf("second Sweep returned error: %v", err)
	}
	if events := drainEvents(w); len(events) != 0 {
		t.Fatalf("expected reminder to fire once, got %+v", events)
	}
}

func TestWorkerStartStop(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	w := New(store, zap.NewNop(), 10*time.Millisecond)

	w.Start(t.Context())
	time.Sleep(50 * time.Millisecond)
	w.Stop()
	// Stop returns only after the loop is done; stopping twice is safe.
	w.Stop()
}

func TestJanitorRespectsSetting(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	task, err := store.CreateTask(&models.Task{Title: "old junk"}, nil)
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	if err := store.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	j, err := NewJanitor(store, zap.NewNop(), "0 0 4 * * *", 30)
	if err != nil {
		t.Fatalf("NewJanitor returned error: %v", err)
	}

	// Disabled by default: nothing is purged.
	n, err := j.RunOnce(time.Now().AddDate(0, 0, 31))
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no purge while disabled, got %d", n)
	}

	if err := store.SetSetting("auto_purge_bin", "true"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	n, err = j.RunOnce(time.Now().AddDate(0, 0, 31))
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged entry, got %d", n)
	}

	if deleted, err := store.ListDeletedTasks(); err != nil || len(deleted) != 0 {
		t.Fatalf("expected empty bin, got %v %v", deleted, err)
	}
}

func TestJanitorKeepsRecentBinEntries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.SetSetting("auto_purge_bin", "true"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}

	task, err := store.CreateTask(&models.Task{Title: "fresh"}, nil)
	if err != nil {
		t.Fatalf("CreateTask returned error: %v", err)
	}
	if err := store.DeleteTask(task.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}

	j, err := NewJanitor(store, zap.NewNop(), "0 0 4 * * *", 30)
	if err != nil {
		t.Fatalf("NewJanitor returned error: %v", err)
	}
	n, err := j.RunOnce(time.Now())
	if err != nil {
		t.Fatalf("RunOnce returned error: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected fresh bin entry kept, got %d purged", n)
	}
}

func TestJanitorRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := NewJanitor(store, zap.NewNop(), "not a schedule", 30); err == nil {
		t.Fatalf("expected error for invalid cron spec")
	}
}
