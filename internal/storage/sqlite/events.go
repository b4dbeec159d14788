package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/restwell/internal/models"
)

const eventColumns = "id, task_name, origin, response_kind, delay_minutes, occurred_at, rescheduled_for, derived_status, trigger_reason"

// AppendEvent writes the event and, for countable response kinds, bumps the
// matching (day, task) aggregate row in the same transaction. Either both
// writes land or neither does, so the aggregate can never drift from the log.
func (s *Store) AppendEvent(ev models.ResponseEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("refusing to append invalid event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin append transaction: %w", err)
	}
	defer tx.Rollback()

	var rescheduledFor sql.NullString
	if ev.RescheduledFor != nil {
		rescheduledFor = sql.NullString{String: ev.RescheduledFor.Format(time.RFC3339), Valid: true}
	}

	_, err = tx.Exec(`
		INSERT INTO events (`+eventColumns+`, day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.TaskName, string(ev.Origin), string(ev.Kind), ev.DelayMinutes,
		ev.OccurredAt.Format(time.RFC3339), rescheduledFor, string(ev.Status),
		ev.TriggerReason, ev.Day())
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	// Intervention entries are log-only; they never count toward stats.
	if ev.Kind != models.ResponseShown {
		var column string
		switch ev.Kind {
		case models.ResponseCompleted:
			column = "completed_count"
		case models.ResponseDeferred:
			column = "deferred_count"
		case models.ResponseSkipped:
			column = "skipped_count"
		}

		_, err = tx.Exec(fmt.Sprintf(`
			INSERT INTO daily_stats (day, task_name, %[1]s, total_count, last_updated)
			VALUES (?, ?, 1, 1, ?)
			ON CONFLICT(day, task_name) DO UPDATE SET
				%[1]s = %[1]s + 1,
				total_count = total_count + 1,
				last_updated = excluded.last_updated`, column),
			ev.Day(), ev.TaskName, s.now().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("failed to update daily stats: %w", err)
		}
	}

	return tx.Commit()
}

// RecentEvents returns all events within now-window..now, unordered.
func (s *Store) RecentEvents(window time.Duration) ([]models.ResponseEvent, error) {
	cutoff := s.now().Add(-window).Format(time.RFC3339)

	rows, err := s.db.Query(`
		SELECT `+eventColumns+` FROM events WHERE occurred_at > ?`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsForDay returns all events attributed to the given calendar day.
func (s *Store) EventsForDay(day string) ([]models.ResponseEvent, error) {
	rows, err := s.db.Query(`
		SELECT `+eventColumns+` FROM events WHERE day = ?`, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for %s: %w", day, err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// SkipsToday returns today's total skip count across real tasks. Intervention
// entries and reschedule echoes are excluded.
func (s *Store) SkipsToday() (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM events
		WHERE day = ? AND response_kind = ? AND origin = ?`,
		s.today(), string(models.ResponseSkipped), string(models.OriginUser)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count skips: %w", err)
	}
	return count, nil
}

// ConsecutiveSkipsToday counts the run of skipped responses starting from
// today's most recent user event, stopping at the first non-skip.
func (s *Store) ConsecutiveSkipsToday() (int, error) {
	rows, err := s.db.Query(`
		SELECT response_kind FROM events
		WHERE day = ? AND origin = ?
		ORDER BY occurred_at DESC`,
		s.today(), string(models.OriginUser))
	if err != nil {
		return 0, fmt.Errorf("failed to query today's events: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var kind string
		if err := rows.Scan(&kind); err != nil {
			return 0, fmt.Errorf("failed to scan event kind: %w", err)
		}
		if kind != string(models.ResponseSkipped) {
			break
		}
		count++
	}

	return count, rows.Err()
}

func scanEvents(rows *sql.Rows) ([]models.ResponseEvent, error) {
	var events []models.ResponseEvent
	for rows.Next() {
		var (
			ev             models.ResponseEvent
			origin, kind   string
			status         string
			occurredAt     string
			rescheduledFor sql.NullString
		)

		err := rows.Scan(&ev.ID, &ev.TaskName, &origin, &kind, &ev.DelayMinutes,
			&occurredAt, &rescheduledFor, &status, &ev.TriggerReason)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		ev.Origin = models.Origin(origin)
		ev.Kind = models.ResponseKind(kind)
		ev.Status = models.Status(status)

		ev.OccurredAt, err = time.Parse(time.RFC3339, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse occurred_at for event %s: %w", ev.ID, err)
		}
		if rescheduledFor.Valid {
			t, err := time.Parse(time.RFC3339, rescheduledFor.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse rescheduled_for for event %s: %w", ev.ID, err)
			}
			ev.RescheduledFor = &t
		}

		events = append(events, ev)
	}

	return events, rows.Err()
}
