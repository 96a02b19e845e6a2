// Package reminder runs the background jobs: the fixed-interval overdue/
// reminder sweep and the scheduled recycle-bin purge.
package reminder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/musekeep/muse/internal/db"
	"github.com/musekeep/muse/internal/models"
)

// Worker periodically sweeps tasks into the overdue state and fires due
// reminders. It shares the process-wide store; database/sql hands it its
// own pooled connections.
type Worker struct {
	store    *db.Store
	logger   *zap.Logger
	interval time.Duration
	events   chan models.Event

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a worker. A non-positive interval falls back to 30s.
func New(store *db.Store, logger *zap.Logger, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		store:    store,
		logger:   logger,
		interval: interval,
		events:   make(chan models.Event, 16),
	}
}

// Events is the stream of change notifications for the UI.
func (w *Worker) Events() <-chan models.Event {
	return w.events
}

// Start launches the sweep loop. The loop stops when ctx is canceled or
// Stop is called; an in-flight sweep always finishes first.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.logger.Info("reminder worker started", zap.Duration("interval", w.interval))
		for {
			select {
			case <-ctx.Done():
				w.logger.Info("reminder worker stopped")
				return
			case <-ticker.C:
				if err := w.Sweep(time.Now()); err != nil {
					w.logger.Error("sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for the in-flight sweep to complete.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

// Sweep runs one iteration: the bulk overdue transition, then the due
// reminders. Each task is reminded at most once. Errors abort the
// iteration; the next tick tries again from scratch.
func (w *Worker) Sweep(at time.Time) error {
	moved, err := w.store.MarkOverdueTasks(at)
	if err != nil {
		return err
	}
	if moved > 0 {
		w.logger.Info("tasks moved to overdue", zap.Int64("count", moved))
		ev := models.NewEvent(models.EventTasksOverdue)
		ev.Count = int(moved)
		w.emit(ev)
	}

	due, err := w.store.DueReminders(at)
	if err != nil {
		return err
	}
	for _, task := range due {
		ev := models.NewEvent(models.EventReminderDue)
		ev.TaskID = task.ID
		ev.Title = task.Title
		w.emit(ev)

		if err := w.store.MarkReminded(task.ID); err != nil {
			return err
		}
		w.logger.Info("reminder fired",
			zap.Int64("task_id", task.ID), zap.String("title", task.Title))
	}
	return nil
}

// emit delivers without blocking; if the UI is not draining, the event
// is dropped and the next sweep's state query catches it up.
func (w *Worker) emit(ev models.Event) {
	select {
	case w.events <- ev:
	default:
		w.logger.Warn("event dropped", zap.String("kind", string(ev.Kind)))
	}
}
