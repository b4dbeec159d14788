package rollover

import (
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/restwell/internal/models"
	"github.com/julianstephens/restwell/internal/storage"
)

type fakeStore struct {
	storage.Provider

	settings    map[string]string
	settingsErr error

	clearedDays  []string
	archiveCalls int
	archivePath  string
	archiveErr   error
	summary      []models.DailyAggregate
}

func newFakeStore() *fakeStore {
	return &fakeStore{settings: map[string]string{}}
}

func (f *fakeStore) GetSetting(key, def string) (string, error) {
	if f.settingsErr != nil {
		return def, f.settingsErr
	}
	if v, ok := f.settings[key]; ok {
		return v, nil
	}
	return def, nil
}

func (f *fakeStore) SetSetting(key, value string) error {
	f.settings[key] = value
	return nil
}

func (f *fakeStore) ClearDay(day string) error {
	f.clearedDays = append(f.clearedDays, day)
	return nil
}

func (f *fakeStore) ArchiveOlderThan(int) (string, error) {
	f.archiveCalls++
	return f.archivePath, f.archiveErr
}

func (f *fakeStore) DailySummary(string) ([]models.DailyAggregate, error) {
	return f.summary, nil
}

type fakeResettable struct{ resets int }

func (f *fakeResettable) Reset() { f.resets++ }

func newTestManager(store *fakeStore, now time.Time, resettables ...Resettable) *Manager {
	m := New(store, 30, resettables...)
	m.now = func() time.Time { return now }
	return m
}

func TestShouldReset(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 5, 0, 0, time.Local)

	tests := []struct {
		name      string
		lastReset string
		want      bool
	}{
		{"absent setting", "", true},
		{"yesterday", "2025-03-09", true},
		{"long ago", "2025-01-01", true},
		{"today", "2025-03-10", false},
		{"future (clock skew)", "2025-03-11", false},
		{"malformed", "not-a-date", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			if tt.lastReset != "" {
				store.settings["last_reset_date"] = tt.lastReset
			}
			m := newTestManager(store, now)
			if got := m.ShouldReset(); got != tt.want {
				t.Errorf("ShouldReset = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldReset_UnreadableSettingMeansReset(t *testing.T) {
	store := newFakeStore()
	store.settingsErr = errors.New("disk gone")
	m := newTestManager(store, time.Now())

	if !m.ShouldReset() {
		t.Error("unreadable setting must be treated as reset due")
	}
}

func TestPerformReset_Steps(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 5, 0, 0, time.Local)
	store := newFakeStore()
	store.settings["last_reset_date"] = "2025-03-09"
	esc := &fakeResettable{}
	m := newTestManager(store, now, esc)

	m.PerformReset()

	if len(store.clearedDays) != 1 || store.clearedDays[0] != "2025-03-10" {
		t.Errorf("cleared days = %v, want [2025-03-10]", store.clearedDays)
	}
	if store.archiveCalls != 1 {
		t.Errorf("archive calls = %d, want 1", store.archiveCalls)
	}
	if store.settings["last_reset_date"] != "2025-03-10" {
		t.Errorf("last_reset_date = %q, want 2025-03-10", store.settings["last_reset_date"])
	}
	if esc.resets != 1 {
		t.Errorf("escalator resets = %d, want 1", esc.resets)
	}
}

func TestRunIfDue_IdempotentSameDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 5, 0, 0, time.Local)
	store := newFakeStore()
	esc := &fakeResettable{}
	m := newTestManager(store, now, esc)

	if !m.RunIfDue() {
		t.Fatal("first run must perform the reset")
	}
	if m.ShouldReset() {
		t.Error("ShouldReset must be false immediately after a reset")
	}
	if m.RunIfDue() {
		t.Error("second run on the same day must be a no-op")
	}

	if store.archiveCalls != 1 || esc.resets != 1 {
		t.Errorf("state changed more than once: archives=%d resets=%d", store.archiveCalls, esc.resets)
	}
}

func TestPerformReset_ArchiveFailureDoesNotBlock(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 5, 0, 0, time.Local)
	store := newFakeStore()
	store.archiveErr = errors.New("disk full")
	esc := &fakeResettable{}
	m := newTestManager(store, now, esc)

	m.PerformReset()

	// Later steps still ran.
	if store.settings["last_reset_date"] != "2025-03-10" {
		t.Error("reset date not recorded after archive failure")
	}
	if esc.resets != 1 {
		t.Error("escalator not reset after archive failure")
	}
}
