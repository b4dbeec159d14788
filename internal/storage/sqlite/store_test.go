package sqlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/restwell/internal/models"
)

// testStore opens a store in a temp dir with a fixed clock.
func testStore(t *testing.T, now time.Time) *Store {
	t.Helper()

	s := NewStore(filepath.Join(t.TempDir(), "restwell.db"))
	s.now = func() time.Time { return now }

	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func mustAppend(t *testing.T, s *Store, ev models.ResponseEvent) {
	t.Helper()
	if err := s.AppendEvent(ev); err != nil {
		t.Fatalf("AppendEvent failed: %v", err)
	}
}

func userEvent(task string, kind models.ResponseKind, at time.Time) models.ResponseEvent {
	return models.NewResponseEvent(task, models.OriginUser, kind, 0, at)
}

func TestAppendEvent_AggregateInvariant(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	s := testStore(t, now)

	sequence := []models.ResponseKind{
		models.ResponseCompleted,
		models.ResponseSkipped,
		models.ResponseDeferred,
		models.ResponseSkipped,
		models.ResponseCompleted,
	}

	for i, kind := range sequence {
		mustAppend(t, s, userEvent("water", kind, now.Add(time.Duration(i)*time.Minute)))

		// Invariant must hold after every append.
		summary, err := s.DailySummary(now.Format("2006-01-02"))
		if err != nil {
			t.Fatalf("DailySummary failed: %v", err)
		}
		for _, agg := range summary {
			if !agg.Consistent() {
				t.Fatalf("after append %d: inconsistent aggregate %+v", i, agg)
			}
		}
	}

	summary, err := s.DailySummary("2025-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(summary) != 1 {
		t.Fatalf("expected 1 aggregate row, got %d", len(summary))
	}
	agg := summary[0]
	if agg.CompletedCount != 2 || agg.SkippedCount != 2 || agg.DeferredCount != 1 || agg.TotalCount != 5 {
		t.Errorf("unexpected counters: %+v", agg)
	}

	// Aggregate must be reproducible from the log.
	replayed, err := s.ReplayAggregate("2025-03-10", "water")
	if err != nil {
		t.Fatal(err)
	}
	if replayed != agg {
		t.Errorf("replay mismatch: replayed %+v, stored %+v", replayed, agg)
	}
}

func TestAppendEvent_RejectsInvalid(t *testing.T) {
	s := testStore(t, time.Now())

	bad := models.ResponseEvent{ID: "x", TaskName: "", Origin: models.OriginUser, Kind: models.ResponseSkipped, OccurredAt: time.Now()}
	if err := s.AppendEvent(bad); err == nil {
		t.Fatal("expected error for invalid event")
	}
}

func TestSkipsToday_ExcludesSyntheticEntries(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	s := testStore(t, now)

	mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-3*time.Hour)))
	mustAppend(t, s, userEvent("stretch", models.ResponseSkipped, now.Add(-2*time.Hour)))
	// Intervention entry and a reschedule echo must not count.
	mustAppend(t, s, models.NewInterventionEvent(now.Add(-90*time.Minute), "total_skips:2"))
	mustAppend(t, s, models.NewResponseEvent("water", models.OriginReschedule, models.ResponseSkipped, 0, now.Add(-time.Hour)))
	// Yesterday's skip must not count either.
	mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-24*time.Hour)))

	skips, err := s.SkipsToday()
	if err != nil {
		t.Fatalf("SkipsToday failed: %v", err)
	}
	if skips != 2 {
		t.Errorf("SkipsToday = %d, want 2", skips)
	}
}

func TestConsecutiveSkipsToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)

	t.Run("run stops at first non-skip", func(t *testing.T) {
		s := testStore(t, now)
		// Appended oldest first; reading back from the most recent the
		// sequence is skip, skip, ok, so the run is 2.
		kinds := []models.ResponseKind{
			models.ResponseSkipped,
			models.ResponseSkipped,
			models.ResponseCompleted,
			models.ResponseSkipped,
			models.ResponseSkipped,
		}
		for i, kind := range kinds {
			mustAppend(t, s, userEvent("water", kind, now.Add(time.Duration(i-10)*time.Minute)))
		}

		run, err := s.ConsecutiveSkipsToday()
		if err != nil {
			t.Fatal(err)
		}
		if run != 2 {
			t.Errorf("ConsecutiveSkipsToday = %d, want 2", run)
		}
	})

	t.Run("zero when most recent is not a skip", func(t *testing.T) {
		s := testStore(t, now)
		mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-2*time.Minute)))
		mustAppend(t, s, userEvent("water", models.ResponseCompleted, now.Add(-time.Minute)))

		run, err := s.ConsecutiveSkipsToday()
		if err != nil {
			t.Fatal(err)
		}
		if run != 0 {
			t.Errorf("ConsecutiveSkipsToday = %d, want 0", run)
		}
	})

	t.Run("zero when no events", func(t *testing.T) {
		s := testStore(t, now)
		run, err := s.ConsecutiveSkipsToday()
		if err != nil {
			t.Fatal(err)
		}
		if run != 0 {
			t.Errorf("ConsecutiveSkipsToday = %d, want 0", run)
		}
	})

	t.Run("synthetic entries do not break the run", func(t *testing.T) {
		s := testStore(t, now)
		mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-3*time.Minute)))
		mustAppend(t, s, models.NewInterventionEvent(now.Add(-2*time.Minute), "total_skips:1"))
		mustAppend(t, s, userEvent("stretch", models.ResponseSkipped, now.Add(-time.Minute)))

		run, err := s.ConsecutiveSkipsToday()
		if err != nil {
			t.Fatal(err)
		}
		if run != 2 {
			t.Errorf("ConsecutiveSkipsToday = %d, want 2", run)
		}
	})
}

func TestRecentEvents_WindowFilter(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	s := testStore(t, now)

	mustAppend(t, s, userEvent("water", models.ResponseCompleted, now.Add(-30*time.Minute)))
	mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-2*time.Hour)))

	events, err := s.RecentEvents(time.Hour)
	if err != nil {
		t.Fatalf("RecentEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event in window, got %d", len(events))
	}
	if events[0].Kind != models.ResponseCompleted {
		t.Errorf("wrong event in window: %+v", events[0])
	}
}

func TestCompletionRate(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	s := testStore(t, now)

	t.Run("zero denominator returns zero", func(t *testing.T) {
		rate, err := s.CompletionRate(7)
		if err != nil {
			t.Fatal(err)
		}
		if rate != 0 {
			t.Errorf("CompletionRate = %v, want 0", rate)
		}
	})

	mustAppend(t, s, userEvent("water", models.ResponseCompleted, now.Add(-time.Hour)))
	mustAppend(t, s, userEvent("water", models.ResponseCompleted, now.Add(-26*time.Hour)))
	mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-27*time.Hour)))
	// Outside the 7-day window.
	mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-10*24*time.Hour)))

	rate, err := s.CompletionRate(7)
	if err != nil {
		t.Fatal(err)
	}
	if want := 100 * 2.0 / 3.0; rate < want-0.01 || rate > want+0.01 {
		t.Errorf("CompletionRate = %v, want ~%v", rate, want)
	}
}

func TestTaskPerformance(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	s := testStore(t, now)

	mustAppend(t, s, userEvent("water", models.ResponseCompleted, now.Add(-time.Hour)))
	mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-2*time.Hour)))
	mustAppend(t, s, userEvent("stretch", models.ResponseSkipped, now.Add(-3*time.Hour)))

	perf, err := s.TaskPerformance("water", 7)
	if err != nil {
		t.Fatal(err)
	}
	if perf.TotalCount != 2 || perf.CompletedCount != 1 || perf.SkippedCount != 1 {
		t.Errorf("unexpected performance: %+v", perf)
	}
	if perf.CompletionRate != 50 || perf.SkipRate != 50 {
		t.Errorf("unexpected rates: %+v", perf)
	}
}

func TestClearDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	s := testStore(t, now)

	mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-time.Hour)))
	mustAppend(t, s, userEvent("water", models.ResponseSkipped, now.Add(-25*time.Hour)))

	if err := s.ClearDay("2025-03-10"); err != nil {
		t.Fatalf("ClearDay failed: %v", err)
	}

	today, err := s.EventsForDay("2025-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(today) != 0 {
		t.Errorf("expected no events for cleared day, got %d", len(today))
	}

	yesterday, err := s.EventsForDay("2025-03-09")
	if err != nil {
		t.Fatal(err)
	}
	if len(yesterday) != 1 {
		t.Errorf("other days must be untouched, got %d events", len(yesterday))
	}
}

func TestArchiveOlderThan_RoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	s := testStore(t, now)

	oldAt := now.AddDate(0, 0, -40)
	mustAppend(t, s, userEvent("water", models.ResponseSkipped, oldAt))
	mustAppend(t, s, userEvent("stretch", models.ResponseCompleted, oldAt))
	mustAppend(t, s, userEvent("water", models.ResponseCompleted, now.Add(-time.Hour)))

	path, err := s.ArchiveOlderThan(30)
	if err != nil {
		t.Fatalf("ArchiveOlderThan failed: %v", err)
	}
	if path == "" {
		t.Fatal("expected an archive artifact")
	}

	// Old events are present in the artifact.
	artifact, err := s.Archives().Read(path)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	if len(artifact.Events) != 2 {
		t.Errorf("artifact has %d events, want 2", len(artifact.Events))
	}
	if len(artifact.Aggregates) != 2 {
		t.Errorf("artifact has %d aggregates, want 2", len(artifact.Aggregates))
	}

	// ...and absent from active storage.
	oldDay := oldAt.Format("2006-01-02")
	remaining, err := s.EventsForDay(oldDay)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("archived events still in active storage: %d", len(remaining))
	}

	// Events within the window are untouched.
	recent, err := s.EventsForDay("2025-03-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Errorf("recent events disturbed: got %d, want 1", len(recent))
	}
}

func TestArchiveOlderThan_NoOpWhenNothingQualifies(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	s := testStore(t, now)

	mustAppend(t, s, userEvent("water", models.ResponseCompleted, now.Add(-time.Hour)))

	path, err := s.ArchiveOlderThan(30)
	if err != nil {
		t.Fatalf("ArchiveOlderThan failed: %v", err)
	}
	if path != "" {
		t.Errorf("expected no artifact, got %s", path)
	}

	infos, err := s.Archives().List()
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 0 {
		t.Errorf("no artifact should exist, found %d", len(infos))
	}
}

func TestSettings_SingleRecordUpsert(t *testing.T) {
	s := testStore(t, time.Now())

	got, err := s.GetSetting("last_reset_date", "absent")
	if err != nil {
		t.Fatal(err)
	}
	if got != "absent" {
		t.Errorf("expected default for missing key, got %q", got)
	}

	if err := s.SetSetting("last_reset_date", "2025-03-09"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting("last_reset_date", "2025-03-10"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSetting("theme", "dark"); err != nil {
		t.Fatal(err)
	}

	got, err = s.GetSetting("last_reset_date", "")
	if err != nil {
		t.Fatal(err)
	}
	if got != "2025-03-10" {
		t.Errorf("last_reset_date = %q, want 2025-03-10", got)
	}

	// Writing a second key must not disturb the first: there is exactly
	// one settings record.
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM settings`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("settings rows = %d, want 1", count)
	}
}

func TestLoad_RequiresInit(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "restwell.db"))
	if err := s.Load(); err == nil {
		t.Fatal("expected Load to fail before Init")
	}
}

func TestLoad_AfterInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "restwell.db")

	s := NewStore(path)
	if err := s.Init(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file missing: %v", err)
	}

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	if _, err := reopened.GetSetting("app_version", ""); err != nil {
		t.Errorf("settings unreadable after reopen: %v", err)
	}
}
