package storage

import (
	"time"

	"github.com/julianstephens/restwell/internal/models"
)

// Provider is the durability boundary between the reminder engine and its
// store. Reads that fail should be treated by callers as empty results; the
// engine logs and keeps running rather than crashing on store trouble.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Events
	// AppendEvent writes the event and updates the matching (day, task)
	// aggregate row as one atomic operation.
	AppendEvent(models.ResponseEvent) error
	// RecentEvents returns all events with occurred_at within now-window..now,
	// in no particular order. Callers needing recency must sort.
	RecentEvents(window time.Duration) ([]models.ResponseEvent, error)
	// EventsForDay returns all events attributed to the given calendar day.
	EventsForDay(day string) ([]models.ResponseEvent, error)

	// Skip metrics. Both exclude intervention entries and reschedule echoes.
	SkipsToday() (int, error)
	ConsecutiveSkipsToday() (int, error)

	// Aggregates
	DailySummary(day string) ([]models.DailyAggregate, error)
	CompletionRate(days int) (float64, error)
	TaskPerformance(taskName string, days int) (models.TaskPerformance, error)

	// Retention
	ClearDay(day string) error
	// ArchiveOlderThan moves events and aggregates older than the retention
	// window into a timestamped archive artifact, then deletes them. It is a
	// no-op, producing no artifact, when nothing qualifies. It returns the
	// artifact path, or "" for the no-op case.
	ArchiveOlderThan(retentionDays int) (string, error)

	// Settings (single-record upsert semantics)
	GetSetting(key, def string) (string, error)
	SetSetting(key, value string) error

	// Utils
	GetConfigPath() string
}
