// Package reschedule turns a busy response into a single future re-fire of
// the same reminder.
package reschedule

import (
	"sync"
	"time"

	"github.com/julianstephens/restwell/internal/logger"
	"github.com/julianstephens/restwell/internal/messages"
	"github.com/julianstephens/restwell/internal/models"
)

// Echo is the synthetic due-event raised when a reschedule timer expires.
// It carries a freshly chosen message rather than the original one.
type Echo struct {
	TaskName string
	Message  string
	Origin   models.Origin
}

// timerFunc matches time.AfterFunc and is swappable in tests.
type timerFunc func(d time.Duration, f func()) *time.Timer

// Controller owns the one-shot timers armed for deferred responses. Timers
// are registered so shutdown can cancel everything still pending; reschedules
// are otherwise fire-and-forget and do not survive a process restart.
type Controller struct {
	fire func(Echo)

	mu     sync.Mutex
	timers map[int]*time.Timer
	nextID int
	closed bool

	afterFunc timerFunc
}

// New creates a controller that delivers expired echoes through fire.
func New(fire func(Echo)) *Controller {
	return &Controller{
		fire:      fire,
		timers:    make(map[int]*time.Timer),
		afterFunc: time.AfterFunc,
	}
}

// Schedule arms exactly one timer re-firing taskName after delayMinutes.
// The echo message is freshly picked from pool for variety. Responses with
// no positive delay arm nothing.
func (c *Controller) Schedule(taskName string, delayMinutes int, pool []string) {
	if delayMinutes <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		logger.Warn("Reschedule requested after shutdown, dropping", "task", taskName)
		return
	}

	id := c.nextID
	c.nextID++

	delay := time.Duration(delayMinutes) * time.Minute
	c.timers[id] = c.afterFunc(delay, func() {
		c.mu.Lock()
		delete(c.timers, id)
		closed := c.closed
		c.mu.Unlock()
		if closed {
			return
		}

		logger.Info("Reschedule timer expired", "task", taskName, "delay_minutes", delayMinutes)
		c.fire(Echo{
			TaskName: taskName,
			Message:  "Rescheduled: " + messages.Pick(pool),
			Origin:   models.OriginReschedule,
		})
	})

	logger.Info("Reminder rescheduled", "task", taskName, "delay_minutes", delayMinutes)
}

// Pending returns the number of armed timers.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Stop cancels all outstanding timers. Pending reschedules are lost, which
// is accepted: they do not persist across restarts either.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
}
