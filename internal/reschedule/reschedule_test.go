package reschedule

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/restwell/internal/models"
)

// fakeTimers captures armed timers so tests can fire them manually.
type fakeTimers struct {
	mu    sync.Mutex
	armed []armedTimer
}

type armedTimer struct {
	delay time.Duration
	fn    func()
}

func (f *fakeTimers) afterFunc(d time.Duration, fn func()) *time.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.armed = append(f.armed, armedTimer{delay: d, fn: fn})
	// Return a real timer far in the future so Stop() has something to stop.
	return time.AfterFunc(time.Hour, func() {})
}

func (f *fakeTimers) fireAll() {
	f.mu.Lock()
	armed := f.armed
	f.armed = nil
	f.mu.Unlock()
	for _, t := range armed {
		t.fn()
	}
}

func newTestController(fire func(Echo)) (*Controller, *fakeTimers) {
	timers := &fakeTimers{}
	c := New(fire)
	c.afterFunc = timers.afterFunc
	return c, timers
}

func TestSchedule_FiresExactlyOnce(t *testing.T) {
	var fired []Echo
	c, timers := newTestController(func(e Echo) { fired = append(fired, e) })

	pool := []string{"drink water"}
	c.Schedule("water", 15, pool)

	if len(timers.armed) != 1 {
		t.Fatalf("expected 1 armed timer, got %d", len(timers.armed))
	}
	if want := 15 * time.Minute; timers.armed[0].delay != want {
		t.Errorf("delay = %v, want %v", timers.armed[0].delay, want)
	}

	timers.fireAll()
	timers.fireAll() // second pass must find nothing to fire

	if len(fired) != 1 {
		t.Fatalf("echo fired %d times, want exactly 1", len(fired))
	}
	echo := fired[0]
	if echo.TaskName != "water" {
		t.Errorf("task = %q, want water", echo.TaskName)
	}
	if echo.Origin != models.OriginReschedule {
		t.Errorf("origin = %q, want reschedule", echo.Origin)
	}
	if !strings.HasPrefix(echo.Message, "Rescheduled: ") {
		t.Errorf("echo message missing reschedule marker: %q", echo.Message)
	}
	if !strings.Contains(echo.Message, "drink water") {
		t.Errorf("echo message not drawn from the task pool: %q", echo.Message)
	}
	if c.Pending() != 0 {
		t.Errorf("pending = %d after fire, want 0", c.Pending())
	}
}

func TestSchedule_NoTimerWithoutDelay(t *testing.T) {
	c, timers := newTestController(func(Echo) { t.Error("unexpected echo") })

	c.Schedule("water", 0, nil)
	c.Schedule("water", -5, nil)

	if len(timers.armed) != 0 {
		t.Errorf("expected no armed timers, got %d", len(timers.armed))
	}
	if c.Pending() != 0 {
		t.Errorf("pending = %d, want 0", c.Pending())
	}
}

func TestStop_CancelsPendingAndBlocksNew(t *testing.T) {
	c, timers := newTestController(func(Echo) { t.Error("echo after Stop") })

	c.Schedule("water", 10, []string{"m"})
	c.Schedule("stretch", 20, []string{"m"})
	if c.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", c.Pending())
	}

	c.Stop()
	if c.Pending() != 0 {
		t.Errorf("pending = %d after Stop, want 0", c.Pending())
	}

	// Timers that were already expiring when Stop ran must not deliver.
	timers.fireAll()

	// And new schedules are dropped.
	c.Schedule("water", 10, []string{"m"})
	if c.Pending() != 0 {
		t.Errorf("pending = %d after post-Stop schedule, want 0", c.Pending())
	}
}

func TestSchedule_IndependentTimersPerDeferral(t *testing.T) {
	var mu sync.Mutex
	count := map[string]int{}
	c, timers := newTestController(func(e Echo) {
		mu.Lock()
		count[e.TaskName]++
		mu.Unlock()
	})

	c.Schedule("water", 10, []string{"m"})
	c.Schedule("water", 15, []string{"m"})
	c.Schedule("eye_rest", 5, []string{"m"})

	timers.fireAll()

	if count["water"] != 2 || count["eye_rest"] != 1 {
		t.Errorf("unexpected echo counts: %v", count)
	}
}
