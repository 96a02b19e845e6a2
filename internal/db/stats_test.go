package db

import (
	"testing"
	"time"

	"github.com/musekeep/muse/internal/models"
)

func monthFilter(at time.Time) StatsFilter {
	start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	return StatsFilter{Start: start, End: start.AddDate(0, 1, 0)}
}

func TestOverviewStatsRate(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	filter := monthFilter(time.Now())

	done := mustCreateTask(t, store, &models.Task{Title: "done"}, nil)
	if err := store.SetTaskStatus(done.ID, models.StatusDone); err != nil {
		t.Fatalf("SetTaskStatus returned error: %v", err)
	}
	mustCreateTask(t, store, &models.Task{Title: "open"}, nil)
	mustCreateTask(t, store, &models.Task{Title: "open too"}, nil)
	mustCreateTask(t, store, &models.Task{Title: "open three"}, nil)

	overview, err := store.OverviewStats(filter)
	if err != nil {
		t.Fatalf("OverviewStats returned error: %v", err)
	}
	if overview.Total != 4 || overview.Completed != 1 {
		t.Fatalf("expected 1/4 completed, got %d/%d", overview.Completed, overview.Total)
	}
	if overview.CompletionRate != 25 {
		t.Fatalf("expected rate 25, got %v", overview.CompletionRate)
	}
}

func TestOverviewStatsZeroTotal(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	overview, err := store.OverviewStats(monthFilter(time.Now()))
	if err != nil {
		t.Fatalf("OverviewStats returned error: %v", err)
	}
	if overview.Total != 0 || overview.CompletionRate != 0 {
		t.Fatalf("expected zero total and rate, got %+v", overview)
	}
}

func TestOverviewStatsExcludesDeleted(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	binned := mustCreateTask(t, store, &models.Task{Title: "binned"}, nil)
	if err := store.DeleteTask(binned.ID); err != nil {
		t.Fatalf("DeleteTask returned error: %v", err)
	}
	mustCreateTask(t, store, &models.Task{Title: "live"}, nil)

	overview, err := store.OverviewStats(monthFilter(time.Now()))
	if err != nil {
		t.Fatalf("OverviewStats returned error: %v", err)
	}
	if overview.Total != 1 {
		t.Fatalf("expected deleted tasks excluded, got total %d", overview.Total)
	}
}

func TestOverviewStatsCategoryFilter(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	side, err := store.CreateCategory("Side", "#7dcfff")
	if err != nil {
		t.Fatalf("CreateCategory returned error: %v", err)
	}

	mustCreateTask(t, store, &models.Task{Title: "in filter", CategoryID: side.ID}, nil)
	mustCreateTask(t, store, &models.Task{Title: "out of filter"}, nil)

	filter := monthFilter(time.Now())
	filter.CategoryIDs = []int64{side.ID}

	overview, err := store.OverviewStats(filter)
	if err != nil {
		t.Fatalf("OverviewStats returned error: %v", err)
	}
	if overview.Total != 1 {
		t.Fatalf("expected category-filtered total 1, got %d", overview.Total)
	}
}

func TestCountByStatus(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	done := mustCreateTask(t, store, &models.Task{Title: "done"}, nil)
	if err := store.SetTaskStatus(done.ID, models.StatusDone); err != nil {
		t.Fatalf("SetTaskStatus returned error: %v", err)
	}
	mustCreateTask(t, store, &models.Task{Title: "todo"}, nil)
	mustCreateTask(t, store, &models.Task{Title: "todo too"}, nil)

	counts, err := store.CountByStatus(monthFilter(time.Now()))
	if err != nil {
		t.Fatalf("CountByStatus returned error: %v", err)
	}
	got := make(map[models.Status]int)
	for _, c := range counts {
		got[c.Status] = c.Count
	}
	if got[models.StatusTodo] != 2 || got[models.StatusDone] != 1 {
		t.Fatalf("expected 2 todo and 1 done, got %+v", got)
	}
}

func TestCountByCategoryResolvesDangling(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	gone, err := store.CreateCategory("Ephemeral", "#f7768e")
	if err != nil {
		t.Fatalf("CreateCategory returned error: %v", err)
	}
	mustCreateTask(t, store, &models.Task{Title: "orphaned", CategoryID: gone.ID}, nil)
	if err := store.DeleteCategory(gone.ID); err != nil {
		t.Fatalf("DeleteCategory returned error: %v", err)
	}

	counts, err := store.CountByCategory(monthFilter(time.Now()))
	if err != nil {
		t.Fatalf("CountByCategory returned error: %v", err)
	}
	if len(counts) != 1 || counts[0].Name != "Uncategorized" || counts[0].Count != 1 {
		t.Fatalf("expected dangling reference shown as Uncategorized, got %+v", counts)
	}
}

func TestDailyTrendBucketsAndFutureZeroing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	task := mustCreateTask(t, store, &models.Task{Title: "done today"}, nil)
	if err := store.SetTaskStatus(task.ID, models.StatusDone); err != nil {
		t.Fatalf("SetTaskStatus returned error: %v", err)
	}

	today := time.Now().UTC()
	filter := StatsFilter{
		Start: time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -2),
		End:   time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 3),
	}

	points, err := store.CompletionTrend(filter, TrendDaily, time.Now().UTC())
	if err != nil {
		t.Fatalf("CompletionTrend returned error: %v", err)
	}
	if len(points) != 5 {
		t.Fatalf("expected 5 daily buckets, got %d", len(points))
	}

	var total int
	for _, p := range points {
		total += p.Count
	}
	if total != 1 {
		t.Fatalf("expected exactly 1 completion across buckets, got %d", total)
	}
	if points[2].Count != 1 {
		t.Fatalf("expected completion in today's bucket, got %+v", points)
	}
}

func TestTrendFutureBucketsStayZero(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	task := mustCreateTask(t, store, &models.Task{Title: "done"}, nil)
	if err := store.SetTaskStatus(task.ID, models.StatusDone); err != nil {
		t.Fatalf("SetTaskStatus returned error: %v", err)
	}

	// Pretend "now" is two days in the past: today's bucket is then in
	// the future and must be zero even though data exists there.
	today := time.Now().UTC()
	filter := StatsFilter{
		Start: time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -2),
		End:   time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1),
	}
	pretendNow := today.AddDate(0, 0, -2)

	points, err := store.CompletionTrend(filter, TrendDaily, pretendNow)
	if err != nil {
		t.Fatalf("CompletionTrend returned error: %v", err)
	}
	for _, p := range points {
		if p.Start.After(pretendNow) && p.Count != 0 {
			t.Fatalf("expected future bucket %v to be zero, got %d", p.Start, p.Count)
		}
	}
}

func TestHourlyTrendShape(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	filter := StatsFilter{Start: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}

	points, err := store.CompletionTrend(filter, TrendHourly, time.Now())
	if err != nil {
		t.Fatalf("CompletionTrend returned error: %v", err)
	}
	if len(points) != 24 {
		t.Fatalf("expected 24 hourly buckets, got %d", len(points))
	}
}

func TestMonthlyTrendShape(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	filter := StatsFilter{Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	points, err := store.CompletionTrend(filter, TrendMonthly, time.Now())
	if err != nil {
		t.Fatalf("CompletionTrend returned error: %v", err)
	}
	if len(points) != 12 {
		t.Fatalf("expected 12 monthly buckets, got %d", len(points))
	}
}

func TestOverviewInspirationCount(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.CreateInspiration("note", ""); err != nil {
		t.Fatalf("CreateInspiration returned error: %v", err)
	}
	binned, err := store.CreateInspiration("binned note", "")
	if err != nil {
		t.Fatalf("CreateInspiration returned error: %v", err)
	}
	if err := store.DeleteInspiration(binned.ID); err != nil {
		t.Fatalf("DeleteInspiration returned error: %v", err)
	}

	overview, err := store.OverviewStats(monthFilter(time.Now()))
	if err != nil {
		t.Fatalf("OverviewStats returned error: %v", err)
	}
	if overview.InspirationCount != 1 {
		t.Fatalf("expected 1 live inspiration, got %d", overview.InspirationCount)
	}
}
