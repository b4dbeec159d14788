// Package engine decides when motivational interventions and encouragement
// fire, based on the day's skip pattern.
package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/logger"
	"github.com/julianstephens/restwell/internal/messages"
	"github.com/julianstephens/restwell/internal/models"
	"github.com/julianstephens/restwell/internal/storage"
)

// Escalator owns the milestone state machine. Its only state is the skip
// count at which the last intervention fired; it lives in process memory
// and is reset at daily rollover.
type Escalator struct {
	store     storage.Provider
	threshold int

	// encouragementWindow is the trailing span inspected after a completion.
	encouragementWindow time.Duration

	lastTriggeredSkipCount int

	// now is swappable in tests
	now func() time.Time
}

// Option configures an Escalator.
type Option func(*Escalator)

// WithThreshold overrides the milestone step (default 2: milestones at 2, 4, 6...).
func WithThreshold(n int) Option {
	return func(e *Escalator) {
		if n >= 1 {
			e.threshold = n
		}
	}
}

// WithEncouragementWindow overrides the trailing window inspected when
// deciding whether a completion deserves encouragement.
func WithEncouragementWindow(d time.Duration) Option {
	return func(e *Escalator) {
		if d > 0 {
			e.encouragementWindow = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Escalator) {
		e.now = now
	}
}

func New(store storage.Provider, opts ...Option) *Escalator {
	e := &Escalator{
		store:               store,
		threshold:           constants.DefaultEscalationThreshold,
		encouragementWindow: constants.DefaultEncouragementWindowMin * time.Minute,
		now:                 time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ShouldEscalate reports whether today's total skip count has crossed a new
// milestone. A milestone is a positive multiple of the threshold that has
// not fired before; repeated polling without new skip events never fires
// twice. A store failure degrades to "no escalation".
func (e *Escalator) ShouldEscalate() bool {
	skips, err := e.store.SkipsToday()
	if err != nil {
		logger.Warn("Skip count unavailable, skipping escalation check", "error", err)
		return false
	}

	isNewMilestone := skips >= e.threshold &&
		skips%e.threshold == 0 &&
		skips > e.lastTriggeredSkipCount

	if !isNewMilestone {
		return false
	}

	logger.Info("Escalation milestone reached", "total_skips", skips)
	e.lastTriggeredSkipCount = skips
	return true
}

// MessageFor selects a motivational message for the given skip count. The
// pool tier is a pure function of the count; the pick within the pool is
// uniform-random.
func (e *Escalator) MessageFor(skips int) string {
	return messages.ForSkipCount(skips)
}

// SkipsToday exposes today's skip count, degrading to 0 on store failure.
func (e *Escalator) SkipsToday() int {
	skips, err := e.store.SkipsToday()
	if err != nil {
		logger.Warn("Skip count unavailable", "error", err)
		return 0
	}
	return skips
}

// ShouldShowEncouragement reports whether the user's latest completion broke
// a skip pattern: among the most recent events (at most four) in the trailing
// window there must be at least two, the newest must be a completion, and at
// least one of the three before it must be a skip.
func (e *Escalator) ShouldShowEncouragement() bool {
	recent, err := e.store.RecentEvents(e.encouragementWindow)
	if err != nil {
		logger.Warn("Recent events unavailable, skipping encouragement check", "error", err)
		return false
	}
	if len(recent) < 2 {
		return false
	}

	// Store order is arrival order, not recency; sort newest first.
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].OccurredAt.After(recent[j].OccurredAt)
	})

	if recent[0].Kind != models.ResponseCompleted {
		return false
	}

	preceding := recent[1:]
	if len(preceding) > 3 {
		preceding = preceding[:3]
	}
	for _, ev := range preceding {
		if ev.Kind == models.ResponseSkipped {
			return true
		}
	}

	return false
}

// LogIntervention appends the synthetic entry recording that a motivational
// intervention was shown. The entry is tagged origin=intervention so every
// skip and streak computation excludes it.
func (e *Escalator) LogIntervention() {
	skips := e.SkipsToday()
	ev := models.NewInterventionEvent(e.now(), fmt.Sprintf("total_skips:%d", skips))

	if err := e.store.AppendEvent(ev); err != nil {
		logger.Warn("Failed to log motivational intervention", "error", err)
	}
}

// Reset zeroes the milestone state. Called by the rollover manager at the
// daily boundary.
func (e *Escalator) Reset() {
	e.lastTriggeredSkipCount = 0
	logger.Info("Escalation state reset for new day")
}
