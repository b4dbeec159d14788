package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Settings live in a single row holding one JSON object, mirroring the
// one-logical-record contract: every read and write touches that row only,
// regardless of key.

func (s *Store) readSettings() (map[string]string, error) {
	var data string
	err := s.db.QueryRow(`SELECT data FROM settings WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("failed to parse settings record: %w", err)
	}
	return values, nil
}

// GetSetting returns the value stored under key, or def when absent.
func (s *Store) GetSetting(key, def string) (string, error) {
	values, err := s.readSettings()
	if err != nil {
		return def, err
	}
	if v, ok := values[key]; ok {
		return v, nil
	}
	return def, nil
}

// SetSetting upserts a single key into the settings record.
func (s *Store) SetSetting(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.readSettings()
	if err != nil {
		return err
	}
	values[key] = value

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO settings (id, data) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data`, string(data))
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}

	return nil
}
