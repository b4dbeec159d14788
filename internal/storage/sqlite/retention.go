package sqlite

import (
	"fmt"

	"github.com/julianstephens/restwell/internal/archive"
	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/models"
)

// ClearDay removes all events and aggregates attributed to the given day.
// The rollover uses it when clock skew leaves stragglers under an
// already-closed date.
func (s *Store) ClearDay(day string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin clear transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events WHERE day = ?`, day); err != nil {
		return fmt.Errorf("failed to clear events for %s: %w", day, err)
	}
	if _, err := tx.Exec(`DELETE FROM daily_stats WHERE day = ?`, day); err != nil {
		return fmt.Errorf("failed to clear daily stats for %s: %w", day, err)
	}

	return tx.Commit()
}

// ArchiveOlderThan moves events and aggregates with a day strictly before
// now - retentionDays into a timestamped archive artifact, then deletes them.
// Nothing is deleted unless the artifact was written first. Returns the
// artifact path, or "" when nothing qualified.
func (s *Store) ArchiveOlderThan(retentionDays int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoffDay := s.now().AddDate(0, 0, -retentionDays).Format(constants.DateFormat)

	rows, err := s.db.Query(`
		SELECT `+eventColumns+` FROM events WHERE day < ?`, cutoffDay)
	if err != nil {
		return "", fmt.Errorf("failed to query events for archive: %w", err)
	}
	events, err := scanEvents(rows)
	rows.Close()
	if err != nil {
		return "", err
	}

	aggRows, err := s.db.Query(`
		SELECT day, task_name, completed_count, deferred_count, skipped_count, total_count
		FROM daily_stats WHERE day < ?`, cutoffDay)
	if err != nil {
		return "", fmt.Errorf("failed to query stats for archive: %w", err)
	}
	var aggs []models.DailyAggregate
	for aggRows.Next() {
		var a models.DailyAggregate
		if err := aggRows.Scan(&a.Day, &a.TaskName, &a.CompletedCount, &a.DeferredCount, &a.SkippedCount, &a.TotalCount); err != nil {
			aggRows.Close()
			return "", fmt.Errorf("failed to scan stats row for archive: %w", err)
		}
		aggs = append(aggs, a)
	}
	if err := aggRows.Err(); err != nil {
		aggRows.Close()
		return "", err
	}
	aggRows.Close()

	if len(events) == 0 && len(aggs) == 0 {
		return "", nil
	}

	artifact := archive.Artifact{
		CutoffDay:  cutoffDay,
		Events:     events,
		Aggregates: aggs,
		ArchivedOn: s.now(),
	}

	path, err := s.archives.Write(artifact)
	if err != nil {
		return "", fmt.Errorf("failed to write archive artifact: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin purge transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM events WHERE day < ?`, cutoffDay); err != nil {
		return "", fmt.Errorf("failed to purge archived events: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM daily_stats WHERE day < ?`, cutoffDay); err != nil {
		return "", fmt.Errorf("failed to purge archived stats: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}

	return path, nil
}

// Archives exposes the artifact manager for listing and inspection.
func (s *Store) Archives() *archive.Manager {
	return s.archives
}
