package models

// DailyAggregate is the derived counter row for one (calendar day, task) pair.
// Aggregates are maintained alongside the event log and must always be
// reproducible by replaying that day's events.
type DailyAggregate struct {
	Day            string `json:"date"`
	TaskName       string `json:"task_name"`
	CompletedCount int    `json:"completed_count"`
	DeferredCount  int    `json:"deferred_count"`
	SkippedCount   int    `json:"skipped_count"`
	TotalCount     int    `json:"total_count"`
}

// Consistent reports whether the counter invariant holds.
func (a DailyAggregate) Consistent() bool {
	return a.TotalCount == a.CompletedCount+a.DeferredCount+a.SkippedCount
}

// CompletionRate returns the completion percentage for this row, 0 when empty.
func (a DailyAggregate) CompletionRate() float64 {
	if a.TotalCount == 0 {
		return 0
	}
	return float64(a.CompletedCount) / float64(a.TotalCount) * 100
}

// TaskPerformance summarizes a single task over a trailing range of days.
type TaskPerformance struct {
	TaskName       string  `json:"task_name"`
	TotalCount     int     `json:"total_count"`
	CompletedCount int     `json:"completed_count"`
	DeferredCount  int     `json:"deferred_count"`
	SkippedCount   int     `json:"skipped_count"`
	CompletionRate float64 `json:"completion_rate"`
	SkipRate       float64 `json:"skip_rate"`
}
