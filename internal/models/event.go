package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/restwell/internal/constants"
)

// ResponseKind is the user's decision on a reminder occurrence.
type ResponseKind string

const (
	ResponseCompleted ResponseKind = "completed"
	ResponseDeferred  ResponseKind = "deferred"
	ResponseSkipped   ResponseKind = "skipped"
	// ResponseShown marks a motivational intervention entry; it is never
	// produced by a user decision and is excluded from all counters.
	ResponseShown ResponseKind = "shown"
)

// Origin tags how an event entered the log. Skip and streak queries only
// consider user-originated events.
type Origin string

const (
	OriginUser         Origin = "user"
	OriginReschedule   Origin = "reschedule"
	OriginIntervention Origin = "intervention"
)

// Status is the derived status of a reminder occurrence.
type Status string

const (
	StatusCompleted    Status = "completed"
	StatusPending      Status = "pending"
	StatusSkipped      Status = "skipped"
	StatusIntervention Status = "intervention"
)

// InterventionTaskName is the reserved task name written on motivational
// intervention entries. Filtering is done by Origin, not by this name.
const InterventionTaskName = "motivational_intervention"

// ResponseEvent is one user decision on one reminder occurrence.
// Events are append-only and never updated in place.
type ResponseEvent struct {
	ID             string       `json:"id"`
	TaskName       string       `json:"task_name"`
	Origin         Origin       `json:"origin"`
	Kind           ResponseKind `json:"response_kind"`
	DelayMinutes   int          `json:"delay_minutes"`
	OccurredAt     time.Time    `json:"occurred_at"`
	RescheduledFor *time.Time   `json:"rescheduled_for,omitempty"`
	Status         Status       `json:"derived_status"`
	// TriggerReason is set on intervention entries only (e.g. "total_skips:4").
	TriggerReason string `json:"trigger_reason,omitempty"`
}

// Day returns the calendar day the event belongs to (local timezone).
func (e ResponseEvent) Day() string {
	return e.OccurredAt.Format(constants.DateFormat)
}

// NewResponseEvent builds a user-originated event from a reminder response.
// The derived status follows the response kind: completed, pending while a
// deferral's re-fire has not resolved, or skipped.
func NewResponseEvent(taskName string, origin Origin, kind ResponseKind, delayMinutes int, occurredAt time.Time) ResponseEvent {
	ev := ResponseEvent{
		ID:           uuid.NewString(),
		TaskName:     taskName,
		Origin:       origin,
		Kind:         kind,
		DelayMinutes: delayMinutes,
		OccurredAt:   occurredAt,
	}

	switch kind {
	case ResponseCompleted:
		ev.Status = StatusCompleted
	case ResponseDeferred:
		ev.Status = StatusPending
		if delayMinutes > 0 {
			t := occurredAt.Add(time.Duration(delayMinutes) * time.Minute)
			ev.RescheduledFor = &t
		}
	case ResponseSkipped:
		ev.Status = StatusSkipped
	case ResponseShown:
		ev.Status = StatusIntervention
	}

	return ev
}

// NewInterventionEvent builds the synthetic log entry recorded when a
// motivational intervention is shown.
func NewInterventionEvent(occurredAt time.Time, triggerReason string) ResponseEvent {
	ev := NewResponseEvent(InterventionTaskName, OriginIntervention, ResponseShown, 0, occurredAt)
	ev.TriggerReason = triggerReason
	return ev
}

// Validate checks structural invariants before an event is appended.
func (e ResponseEvent) Validate() error {
	if e.TaskName == "" {
		return fmt.Errorf("event task name cannot be empty")
	}
	if e.OccurredAt.IsZero() {
		return fmt.Errorf("event timestamp cannot be zero")
	}
	if e.DelayMinutes < 0 {
		return fmt.Errorf("delay minutes cannot be negative")
	}
	switch e.Origin {
	case OriginUser, OriginReschedule, OriginIntervention:
	default:
		return fmt.Errorf("unknown event origin %q", e.Origin)
	}
	switch e.Kind {
	case ResponseCompleted, ResponseDeferred, ResponseSkipped, ResponseShown:
	default:
		return fmt.Errorf("unknown response kind %q", e.Kind)
	}
	if e.Kind == ResponseShown && e.Origin != OriginIntervention {
		return fmt.Errorf("shown responses are reserved for intervention entries")
	}
	return nil
}

// Counted reports whether the event participates in skip and streak
// computations. Intervention entries and reschedule echoes do not: an echo
// re-records a decision the user already made once.
func (e ResponseEvent) Counted() bool {
	return e.Origin == OriginUser
}
