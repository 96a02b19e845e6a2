package db

import (
	"strings"
	"time"

	"github.com/musekeep/muse/internal/models"
)

// StatsFilter bounds aggregation queries. Tasks are selected by creation
// time within [Start, End); an empty CategoryIDs list means no category
// restriction.
type StatsFilter struct {
	Start       time.Time
	End         time.Time
	CategoryIDs []int64
}

// categoryClause renders an optional "AND category_id IN (...)" fragment.
func (f StatsFilter) categoryClause() (string, []any) {
	if len(f.CategoryIDs) == 0 {
		return "", nil
	}
	placeholders := strings.Repeat("?,", len(f.CategoryIDs))
	args := make([]any, len(f.CategoryIDs))
	for i, id := range f.CategoryIDs {
		args[i] = id
	}
	return " AND category_id IN (" + placeholders[:len(placeholders)-1] + ")", args
}

// OverviewStats computes the headline numbers for the filter.
func (s *Store) OverviewStats(f StatsFilter) (*models.Overview, error) {
	clause, clauseArgs := f.categoryClause()
	args := append([]any{
		models.StatusDone, models.StatusOverdue, models.StatusDone,
		f.Start.UTC(), f.End.UTC(),
	}, clauseArgs...)

	o := &models.Overview{}
	err := s.QueryRow(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN status = ? AND completed_at IS NOT NULL
				THEN (julianday(completed_at) - julianday(created_at)) * 24 END), 0)
		FROM tasks
		WHERE is_deleted = 0 AND created_at >= ? AND created_at < ?`+clause,
		args...).Scan(&o.Total, &o.Completed, &o.Overdue, &o.AvgCompletionHours)
	if err != nil {
		return nil, err
	}

	if o.Total > 0 {
		o.CompletionRate = float64(o.Completed) / float64(o.Total) * 100
	}

	err = s.QueryRow(`
		SELECT COUNT(*) FROM inspirations
		WHERE is_deleted = 0 AND created_at >= ? AND created_at < ?
	`, f.Start.UTC(), f.End.UTC()).Scan(&o.InspirationCount)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// CountByCategory groups live tasks in range by category. Dangling
// category references resolve to the default category's name.
func (s *Store) CountByCategory(f StatsFilter) ([]models.CategoryCount, error) {
	clause, clauseArgs := f.categoryClause()
	args := append([]any{f.Start.UTC(), f.End.UTC()}, clauseArgs...)

	rows, err := s.Query(`
		SELECT t.category_id, COALESCE(c.name, 'Uncategorized'), COUNT(*)
		FROM tasks t
		LEFT JOIN task_categories c ON c.id = t.category_id
		WHERE t.is_deleted = 0 AND t.created_at >= ? AND t.created_at < ?`+clause+`
		GROUP BY t.category_id
		ORDER BY COUNT(*) DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.CategoryCount
	for rows.Next() {
		var c models.CategoryCount
		if err := rows.Scan(&c.CategoryID, &c.Name, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountByPriority groups live tasks in range by priority, most pressing
// first.
func (s *Store) CountByPriority(f StatsFilter) ([]models.PriorityCount, error) {
	clause, clauseArgs := f.categoryClause()
	args := append([]any{f.Start.UTC(), f.End.UTC()}, clauseArgs...)

	rows, err := s.Query(`
		SELECT priority, COUNT(*) FROM tasks
		WHERE is_deleted = 0 AND created_at >= ? AND created_at < ?`+clause+`
		GROUP BY priority ORDER BY priority ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.PriorityCount
	for rows.Next() {
		var c models.PriorityCount
		if err := rows.Scan(&c.Priority, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountByStatus groups live tasks in range by status.
func (s *Store) CountByStatus(f StatsFilter) ([]models.StatusCount, error) {
	clause, clauseArgs := f.categoryClause()
	args := append([]any{f.Start.UTC(), f.End.UTC()}, clauseArgs...)

	rows, err := s.Query(`
		SELECT status, COUNT(*) FROM tasks
		WHERE is_deleted = 0 AND created_at >= ? AND created_at < ?`+clause+`
		GROUP BY status ORDER BY status ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.StatusCount
	for rows.Next() {
		var c models.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// TrendBucket selects the granularity of a completion trend.
type TrendBucket int

const (
	TrendHourly TrendBucket = iota
	TrendDaily
	TrendMonthly
)

// CompletionTrend returns a zero-filled vector of completion counts.
// Hourly covers the 24 hours of the day containing f.Start, daily one
// point per day in [f.Start, f.End), monthly the 12 months of f.Start's
// year. Buckets beginning after `at` stay zero regardless of stored data
// so the vector never implies retroactive completions.
func (s *Store) CompletionTrend(f StatsFilter, bucket TrendBucket, at time.Time) ([]models.TrendPoint, error) {
	points := buildBuckets(f, bucket)
	if len(points) == 0 {
		return points, nil
	}

	rangeStart := points[0].Start
	rangeEnd := bucketEnd(points[len(points)-1].Start, bucket)

	clause, clauseArgs := f.categoryClause()
	args := append([]any{models.StatusDone, rangeStart.UTC(), rangeEnd.UTC()}, clauseArgs...)

	rows, err := s.Query(`
		SELECT completed_at FROM tasks
		WHERE is_deleted = 0 AND status = ? AND completed_at IS NOT NULL
		  AND completed_at >= ? AND completed_at < ?`+clause,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var completed time.Time
		if err := rows.Scan(&completed); err != nil {
			return nil, err
		}
		idx := bucketIndex(points, completed, bucket)
		if idx >= 0 {
			points[idx].Count++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Future buckets are forced to zero.
	for i := range points {
		if points[i].Start.After(at) {
			points[i].Count = 0
		}
	}
	return points, nil
}

func buildBuckets(f StatsFilter, bucket TrendBucket) []models.TrendPoint {
	var points []models.TrendPoint
	switch bucket {
	case TrendHourly:
		day := time.Date(f.Start.Year(), f.Start.Month(), f.Start.Day(), 0, 0, 0, 0, f.Start.Location())
		for h := 0; h < 24; h++ {
			points = append(points, models.TrendPoint{Start: day.Add(time.Duration(h) * time.Hour)})
		}
	case TrendDaily:
		day := time.Date(f.Start.Year(), f.Start.Month(), f.Start.Day(), 0, 0, 0, 0, f.Start.Location())
		for day.Before(f.End) {
			points = append(points, models.TrendPoint{Start: day})
			day = day.AddDate(0, 0, 1)
		}
	case TrendMonthly:
		for m := time.January; m <= time.December; m++ {
			points = append(points, models.TrendPoint{
				Start: time.Date(f.Start.Year(), m, 1, 0, 0, 0, 0, f.Start.Location()),
			})
		}
	}
	return points
}

func bucketEnd(start time.Time, bucket TrendBucket) time.Time {
	switch bucket {
	case TrendHourly:
		return start.Add(time.Hour)
	case TrendDaily:
		return start.AddDate(0, 0, 1)
	default:
		return start.AddDate(0, 1, 0)
	}
}

func bucketIndex(points []models.TrendPoint, at time.Time, bucket TrendBucket) int {
	for i := range points {
		if !at.Before(points[i].Start) && at.Before(bucketEnd(points[i].Start, bucket)) {
			return i
		}
	}
	return -1
}
