package sqlite

import (
	"fmt"

	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/models"
)

// DailySummary returns all aggregate rows for the given day.
func (s *Store) DailySummary(day string) ([]models.DailyAggregate, error) {
	rows, err := s.db.Query(`
		SELECT day, task_name, completed_count, deferred_count, skipped_count, total_count
		FROM daily_stats WHERE day = ?
		ORDER BY task_name`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summary: %w", err)
	}
	defer rows.Close()

	var aggs []models.DailyAggregate
	for rows.Next() {
		var a models.DailyAggregate
		if err := rows.Scan(&a.Day, &a.TaskName, &a.CompletedCount, &a.DeferredCount, &a.SkippedCount, &a.TotalCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats row: %w", err)
		}
		aggs = append(aggs, a)
	}

	return aggs, rows.Err()
}

// CompletionRate returns 100 * completed / total over the trailing N calendar
// days, compared by date string. A zero denominator yields 0, not an error.
func (s *Store) CompletionRate(days int) (float64, error) {
	cutoff := s.now().AddDate(0, 0, -days).Format(constants.DateFormat)

	var completed, total int
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(completed_count), 0), COALESCE(SUM(total_count), 0)
		FROM daily_stats WHERE day >= ?`, cutoff).Scan(&completed, &total)
	if err != nil {
		return 0, fmt.Errorf("failed to compute completion rate: %w", err)
	}

	if total == 0 {
		return 0, nil
	}
	return float64(completed) / float64(total) * 100, nil
}

// TaskPerformance summarizes one task over the trailing N calendar days.
func (s *Store) TaskPerformance(taskName string, days int) (models.TaskPerformance, error) {
	cutoff := s.now().AddDate(0, 0, -days).Format(constants.DateFormat)

	perf := models.TaskPerformance{TaskName: taskName}
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(completed_count), 0), COALESCE(SUM(deferred_count), 0),
		       COALESCE(SUM(skipped_count), 0), COALESCE(SUM(total_count), 0)
		FROM daily_stats WHERE day >= ? AND task_name = ?`, cutoff, taskName).
		Scan(&perf.CompletedCount, &perf.DeferredCount, &perf.SkippedCount, &perf.TotalCount)
	if err != nil {
		return models.TaskPerformance{}, fmt.Errorf("failed to compute task performance: %w", err)
	}

	if perf.TotalCount > 0 {
		perf.CompletionRate = float64(perf.CompletedCount) / float64(perf.TotalCount) * 100
		perf.SkipRate = float64(perf.SkippedCount) / float64(perf.TotalCount) * 100
	}

	return perf, nil
}

// ReplayAggregate recomputes the aggregate for one (day, task) pair from the
// event log. Used by doctor to verify the counters have not drifted.
func (s *Store) ReplayAggregate(day, taskName string) (models.DailyAggregate, error) {
	events, err := s.EventsForDay(day)
	if err != nil {
		return models.DailyAggregate{}, err
	}

	agg := models.DailyAggregate{Day: day, TaskName: taskName}
	for _, ev := range events {
		if ev.TaskName != taskName || ev.Kind == models.ResponseShown {
			continue
		}
		switch ev.Kind {
		case models.ResponseCompleted:
			agg.CompletedCount++
		case models.ResponseDeferred:
			agg.DeferredCount++
		case models.ResponseSkipped:
			agg.SkippedCount++
		}
		agg.TotalCount++
	}

	return agg, nil
}
