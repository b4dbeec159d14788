// Package scheduler raises due-events for configured reminders: interval
// reminders on a cadence, fixed reminders at their HH:MM each day, and a
// rollover tick just after midnight.
package scheduler

import (
	"context"
	"sort"
	"time"

	"github.com/julianstephens/restwell/internal/config"
	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/logger"
	"github.com/julianstephens/restwell/internal/messages"
	"github.com/julianstephens/restwell/internal/models"
)

// DueEvent signals that a reminder's scheduled condition occurred. The
// message is freshly picked at fire time so repeats stay varied.
type DueEvent struct {
	TaskName string
	Message  string
	Origin   models.Origin
}

type job struct {
	taskName string
	reminder config.Reminder
	nextFire time.Time
}

// Scheduler owns its own goroutine; consumers read Due and Rollover. Due
// events that nobody drains in time are dropped with a warning, never queued
// behind an open prompt.
type Scheduler struct {
	jobs         []job
	rolloverNext time.Time

	due      chan DueEvent
	rollover chan struct{}

	// poll and now are swappable in tests
	poll time.Duration
	now  func() time.Time
}

func New(cfg config.Config) *Scheduler {
	s := &Scheduler{
		due:      make(chan DueEvent, 8),
		rollover: make(chan struct{}, 1),
		poll:     time.Second,
		now:      time.Now,
	}

	now := time.Now()
	for name, r := range cfg.Reminders {
		if !r.Enabled {
			logger.Info("Reminder disabled, skipping", "task", name)
			continue
		}
		s.jobs = append(s.jobs, job{
			taskName: name,
			reminder: r,
			nextFire: nextFire(r, now),
		})
	}
	// Map iteration order is random; keep the job order deterministic.
	sort.Slice(s.jobs, func(i, j int) bool { return s.jobs[i].taskName < s.jobs[j].taskName })

	s.rolloverNext = nextDailyOccurrence(constants.DailyRolloverTime, now)

	logger.Info("Scheduler configured", "jobs", len(s.jobs))
	return s
}

// Due is the channel of reminder due-events.
func (s *Scheduler) Due() <-chan DueEvent {
	return s.due
}

// Rollover signals the daily rollover check time.
func (s *Scheduler) Rollover() <-chan struct{} {
	return s.rollover
}

// Run polls until the context is cancelled. It never blocks on consumers.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info("Scheduler started")
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick fires every job whose time has come and advances its next fire time.
func (s *Scheduler) tick() {
	now := s.now()

	for i := range s.jobs {
		j := &s.jobs[i]
		if now.Before(j.nextFire) {
			continue
		}

		ev := DueEvent{
			TaskName: j.taskName,
			Message:  messages.Pick(j.reminder.Messages),
			Origin:   models.OriginUser,
		}
		select {
		case s.due <- ev:
			logger.Debug("Reminder due", "task", j.taskName)
		default:
			logger.Warn("Due-event queue full, dropping reminder", "task", j.taskName)
		}

		j.nextFire = nextFire(j.reminder, now)
	}

	if !now.Before(s.rolloverNext) {
		select {
		case s.rollover <- struct{}{}:
		default:
		}
		s.rolloverNext = nextDailyOccurrence(constants.DailyRolloverTime, now)
	}
}

// nextFire computes a job's next firing time. Interval reminders wait one
// full interval from now; fixed reminders fire at their next HH:MM.
func nextFire(r config.Reminder, now time.Time) time.Time {
	if r.IsInterval() {
		return now.Add(time.Duration(r.IntervalMinutes) * time.Minute)
	}
	return nextDailyOccurrence(r.Time, now)
}

// nextDailyOccurrence returns the next time the HH:MM clock time occurs
// strictly after now, today or tomorrow, in now's location.
func nextDailyOccurrence(clock string, now time.Time) time.Time {
	t, err := time.Parse(constants.TimeFormat, clock)
	if err != nil {
		// Validated config should make this unreachable; push the job a
		// day out rather than hot-looping on a bad time string.
		logger.Error("Invalid clock time in schedule", "time", clock)
		return now.AddDate(0, 0, 1)
	}

	candidate := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}
