// Package rollover handles the daily boundary: summarize the closing day,
// archive and purge aged data, and reset per-day state.
package rollover

import (
	"fmt"
	"time"

	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/logger"
	"github.com/julianstephens/restwell/internal/storage"
)

// Resettable is anything holding per-day state the rollover must clear.
// The escalation engine's milestone counter is the one implementation.
type Resettable interface {
	Reset()
}

// Manager runs the once-per-day reset procedure.
type Manager struct {
	store         storage.Provider
	retentionDays int
	resettables   []Resettable

	// now is swappable in tests
	now func() time.Time
}

func New(store storage.Provider, retentionDays int, resettables ...Resettable) *Manager {
	if retentionDays <= 0 {
		retentionDays = constants.DefaultDataRetentionDays
	}
	return &Manager{
		store:         store,
		retentionDays: retentionDays,
		resettables:   resettables,
		now:           time.Now,
	}
}

// ShouldReset reports whether the daily reset has not yet run for today's
// calendar date. An absent or unreadable setting means "always reset", so
// the first run initializes the marker.
func (m *Manager) ShouldReset() bool {
	last, err := m.store.GetSetting(constants.SettingLastResetDate, "")
	if err != nil {
		logger.Warn("Could not read last reset date, assuming reset is due", "error", err)
		return true
	}
	if last == "" {
		return true
	}

	lastDay, err := time.ParseInLocation(constants.DateFormat, last, time.Local)
	if err != nil {
		logger.Warn("Malformed last reset date, assuming reset is due", "value", last)
		return true
	}

	today, _ := time.ParseInLocation(constants.DateFormat, m.today(), time.Local)
	return today.After(lastDay)
}

// PerformReset runs the rollover steps. Each step's failure is logged and
// does not block the remaining steps; re-running on the same day is a no-op
// because ShouldReset guards re-entry once the marker is written.
func (m *Manager) PerformReset() {
	today := m.today()
	logger.Info("Starting daily reset", "date", today)

	// 1. Summarize the just-closed day. Diagnostic only.
	m.summarizePreviousDay()

	// 2. Drop anything recorded under today's date before the reset ran
	// (clock skew stragglers).
	if err := m.store.ClearDay(today); err != nil {
		logger.Error("Failed to clear today's transient data", "error", err)
	}

	// 3. Archive and purge aged data.
	path, err := m.store.ArchiveOlderThan(m.retentionDays)
	if err != nil {
		logger.Error("Failed to archive old data", "error", err)
	} else if path != "" {
		logger.Info("Archived data beyond retention window", "artifact", path, "retention_days", m.retentionDays)
	}

	// 4. Mark today as reset.
	if err := m.store.SetSetting(constants.SettingLastResetDate, today); err != nil {
		logger.Error("Failed to record reset date", "error", err)
	}

	// 5. Clear per-day state held by collaborators.
	for _, r := range m.resettables {
		r.Reset()
	}

	logger.Info("Daily reset completed", "date", today)
}

// RunIfDue is the opportunistic entry point used at startup and on the daily
// tick: it performs the reset only when one is due.
func (m *Manager) RunIfDue() bool {
	if !m.ShouldReset() {
		return false
	}
	m.PerformReset()
	return true
}

func (m *Manager) summarizePreviousDay() {
	yesterday := m.now().AddDate(0, 0, -1).Format(constants.DateFormat)

	summary, err := m.store.DailySummary(yesterday)
	if err != nil {
		logger.Warn("Could not summarize previous day", "error", err)
		return
	}
	if len(summary) == 0 {
		return
	}

	logger.Info("Previous day summary", "date", yesterday, "tasks", len(summary))
	for _, agg := range summary {
		logger.Info(fmt.Sprintf("  %s", agg.TaskName),
			"total", agg.TotalCount,
			"completed", agg.CompletedCount,
			"completion_rate", fmt.Sprintf("%.1f%%", agg.CompletionRate()),
			"skipped", agg.SkippedCount,
			"deferred", agg.DeferredCount)
	}
}

func (m *Manager) today() string {
	return m.now().Format(constants.DateFormat)
}
