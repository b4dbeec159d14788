package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/restwell/internal/constants"
)

// Reminder is one configured reminder definition. Exactly one of
// IntervalMinutes or Time is set: interval reminders fire on a cadence,
// fixed reminders fire once per day at the given HH:MM.
type Reminder struct {
	IntervalMinutes int      `json:"interval_minutes,omitempty"`
	Time            string   `json:"time,omitempty"`
	Messages        []string `json:"messages"`
	Enabled         bool     `json:"enabled"`
}

// IsInterval reports whether the reminder fires on a minute cadence.
func (r Reminder) IsInterval() bool {
	return r.IntervalMinutes > 0
}

// Settings are the tunable scalar settings.
type Settings struct {
	BusyDelayOptions            []int `json:"busy_delay_options"`
	EscalationThreshold         int   `json:"escalation_threshold"`
	EscalationWindowHours       int   `json:"escalation_window_hours"`
	DataRetentionDays           int   `json:"data_retention_days"`
	MotivationalCooldownMinutes int   `json:"motivational_cooldown_minutes"`
	AutoCloseSeconds            int   `json:"auto_close_seconds"`
	Debug                       bool  `json:"debug,omitempty"`
}

// Config is the resolved reminder configuration.
type Config struct {
	Reminders map[string]Reminder `json:"reminders"`
	Settings  Settings            `json:"settings"`
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{
		Reminders: map[string]Reminder{
			"water": {
				IntervalMinutes: 45,
				Messages: []string{
					"Time to drink water! Stay hydrated for better focus and energy.",
					"Hydration check: a glass of water keeps the brain fog away.",
				},
				Enabled: true,
			},
			"eye_rest": {
				IntervalMinutes: 20,
				Messages: []string{
					"Time to rest your eyes! Look away from the screen for 20 seconds.",
					"20-20-20: every 20 minutes, look 20 feet away for 20 seconds.",
				},
				Enabled: true,
			},
			"stretch": {
				IntervalMinutes: 60,
				Messages: []string{
					"Time to stretch! Stand up and do some light stretching.",
					"Your back will thank you: stand up and move for a minute.",
				},
				Enabled: true,
			},
			"lunch": {
				Time: "12:30",
				Messages: []string{
					"Lunch time! Take a proper break and nourish yourself.",
				},
				Enabled: true,
			},
			"end_day": {
				Time: "18:00",
				Messages: []string{
					"End of workday! Time to wind down and transition to personal time.",
				},
				Enabled: true,
			},
		},
		Settings: Settings{
			BusyDelayOptions:            append([]int(nil), constants.DefaultBusyDelayOptions...),
			EscalationThreshold:         constants.DefaultEscalationThreshold,
			EscalationWindowHours:       constants.DefaultEscalationWindowHours,
			DataRetentionDays:           constants.DefaultDataRetentionDays,
			MotivationalCooldownMinutes: constants.DefaultMotivationalCooldownMin,
			AutoCloseSeconds:            constants.DefaultAutoCloseSeconds,
		},
	}
}

// Load reads the configuration at path. A missing file is replaced by the
// default configuration, which is also written back so the user has something
// to edit. A malformed file is a fatal startup error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if writeErr := Save(cfg, path); writeErr != nil {
			return Config{}, fmt.Errorf("failed to write default config: %w", writeErr)
		}
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to path, creating the directory if needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

// applyDefaults fills unset scalar settings so a partial config file works.
func applyDefaults(cfg *Config) {
	def := Default().Settings
	s := &cfg.Settings

	if len(s.BusyDelayOptions) == 0 {
		s.BusyDelayOptions = def.BusyDelayOptions
	}
	if s.EscalationThreshold == 0 {
		s.EscalationThreshold = def.EscalationThreshold
	}
	if s.EscalationWindowHours == 0 {
		s.EscalationWindowHours = def.EscalationWindowHours
	}
	if s.DataRetentionDays == 0 {
		s.DataRetentionDays = def.DataRetentionDays
	}
	if s.MotivationalCooldownMinutes == 0 {
		s.MotivationalCooldownMinutes = def.MotivationalCooldownMinutes
	}
	if s.AutoCloseSeconds == 0 {
		s.AutoCloseSeconds = def.AutoCloseSeconds
	}
}

// Validate checks the configuration structure. Any failure here is fatal at
// startup; the engine never runs against a malformed config.
func (c Config) Validate() error {
	if len(c.Reminders) == 0 {
		return fmt.Errorf("no reminders configured")
	}

	for name, r := range c.Reminders {
		if name == "" {
			return fmt.Errorf("reminder with empty name")
		}
		if len(r.Messages) == 0 {
			return fmt.Errorf("reminder %q has no messages", name)
		}
		if r.IntervalMinutes < 0 {
			return fmt.Errorf("reminder %q has negative interval", name)
		}
		if r.IntervalMinutes > 0 && r.Time != "" {
			return fmt.Errorf("reminder %q sets both interval_minutes and time", name)
		}
		if r.IntervalMinutes == 0 && r.Time == "" {
			return fmt.Errorf("reminder %q sets neither interval_minutes nor time", name)
		}
		if r.Time != "" {
			if _, err := time.Parse(constants.TimeFormat, r.Time); err != nil {
				return fmt.Errorf("reminder %q has invalid time (expected HH:MM): %w", name, err)
			}
		}
	}

	s := c.Settings
	if s.EscalationThreshold < 1 {
		return fmt.Errorf("escalation_threshold must be at least 1")
	}
	if s.EscalationWindowHours < 1 {
		return fmt.Errorf("escalation_window_hours must be at least 1")
	}
	if s.DataRetentionDays < 1 {
		return fmt.Errorf("data_retention_days must be at least 1")
	}
	for _, d := range s.BusyDelayOptions {
		if d < 1 {
			return fmt.Errorf("busy_delay_options entries must be positive minutes")
		}
	}

	return nil
}
