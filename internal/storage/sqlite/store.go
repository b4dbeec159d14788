// Package sqlite implements the storage.Provider contract on a local
// SQLite database: an append-only event log, a derived per-day aggregate
// table, and a single-row settings record.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/restwell/internal/archive"
	"github.com/julianstephens/restwell/internal/constants"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id TEXT PRIMARY KEY,
	task_name TEXT NOT NULL,
	origin TEXT NOT NULL,
	response_kind TEXT NOT NULL,
	delay_minutes INTEGER NOT NULL DEFAULT 0,
	occurred_at TEXT NOT NULL,
	rescheduled_for TEXT,
	derived_status TEXT NOT NULL,
	trigger_reason TEXT NOT NULL DEFAULT '',
	day TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events(occurred_at);

CREATE TABLE IF NOT EXISTS daily_stats (
	day TEXT NOT NULL,
	task_name TEXT NOT NULL,
	completed_count INTEGER NOT NULL DEFAULT 0,
	deferred_count INTEGER NOT NULL DEFAULT 0,
	skipped_count INTEGER NOT NULL DEFAULT 0,
	total_count INTEGER NOT NULL DEFAULT 0,
	last_updated TEXT NOT NULL,
	PRIMARY KEY (day, task_name)
);

CREATE TABLE IF NOT EXISTS settings (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	data TEXT NOT NULL DEFAULT '{}'
);
`

type Store struct {
	path     string
	db       *sql.DB
	archives *archive.Manager

	// All writes are serialized through this lock so concurrent appends
	// from the reschedule timers and the response worker cannot interleave
	// an event insert with its aggregate update.
	mu sync.Mutex

	// now is swappable in tests
	now func() time.Time
}

func NewStore(path string) *Store {
	return &Store{
		path:     path,
		archives: archive.NewManager(path),
		now:      time.Now,
	}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	// Seed the settings row so later reads and upserts always find it.
	if _, err := s.db.Exec(`INSERT INTO settings (id, data) VALUES (1, '{}') ON CONFLICT(id) DO NOTHING`); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	if v, err := s.GetSetting(constants.SettingAppVersion, ""); err == nil && v == "" {
		if err := s.SetSetting(constants.SettingAppVersion, "1.0.0"); err != nil {
			return fmt.Errorf("failed to record app version: %w", err)
		}
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// The schema is idempotent, so re-applying it also upgrades databases
	// created before a column or index existed.
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to verify schema: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// today returns the current calendar day in the local timezone.
func (s *Store) today() string {
	return s.now().Format(constants.DateFormat)
}
