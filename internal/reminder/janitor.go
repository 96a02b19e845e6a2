package reminder

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/musekeep/muse/internal/db"
)

// Janitor empties old recycle-bin entries on a cron schedule, honoring
// the auto_purge_bin setting.
type Janitor struct {
	store     *db.Store
	logger    *zap.Logger
	cron      *cron.Cron
	afterDays int
}

// NewJanitor builds the janitor. schedule is a six-field cron spec;
// afterDays is how long bin entries are kept.
func NewJanitor(store *db.Store, logger *zap.Logger, schedule string, afterDays int) (*Janitor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if afterDays <= 0 {
		afterDays = 30
	}

	j := &Janitor{
		store:     store,
		logger:    logger,
		afterDays: afterDays,
		cron:      cron.New(cron.WithSeconds()),
	}

	if _, err := j.cron.AddFunc(schedule, func() {
		if _, err := j.RunOnce(time.Now()); err != nil {
			j.logger.Error("bin purge failed", zap.Error(err))
		}
	}); err != nil {
		return nil, err
	}
	return j, nil
}

// Start launches the cron scheduler.
func (j *Janitor) Start() {
	j.cron.Start()
	j.logger.Info("bin janitor started", zap.Int("after_days", j.afterDays))
}

// Stop gracefully stops the scheduler.
func (j *Janitor) Stop(ctx context.Context) {
	stopCtx := j.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	j.logger.Info("bin janitor stopped")
}

// RunOnce purges bin entries deleted more than afterDays before `at`.
// A no-op unless the auto_purge_bin setting is enabled.
func (j *Janitor) RunOnce(at time.Time) (int64, error) {
	enabled, err := j.store.GetSettingBool("auto_purge_bin", false)
	if err != nil {
		return 0, err
	}
	if !enabled {
		return 0, nil
	}

	cutoff := at.AddDate(0, 0, -j.afterDays)
	tasks, err := j.store.PurgeTasksDeletedBefore(cutoff)
	if err != nil {
		return 0, err
	}
	notes, err := j.store.PurgeInspirationsDeletedBefore(cutoff)
	if err != nil {
		return tasks, err
	}

	total := tasks + notes
	if total > 0 {
		j.logger.Info("recycle bin purged",
			zap.Int64("tasks", tasks), zap.Int64("inspirations", notes))
	}
	return total, nil
}
