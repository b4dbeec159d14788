// Package app wires the scheduler, escalation engine, reschedule controller,
// and rollover manager into the long-running reminder loop.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/julianstephens/restwell/internal/config"
	"github.com/julianstephens/restwell/internal/engine"
	"github.com/julianstephens/restwell/internal/logger"
	"github.com/julianstephens/restwell/internal/messages"
	"github.com/julianstephens/restwell/internal/models"
	"github.com/julianstephens/restwell/internal/prompt"
	"github.com/julianstephens/restwell/internal/reschedule"
	"github.com/julianstephens/restwell/internal/rollover"
	"github.com/julianstephens/restwell/internal/scheduler"
	"github.com/julianstephens/restwell/internal/storage"
)

// App is the run-loop orchestrator. One prompt is on screen at a time; due
// events arriving while the user is mid-prompt are dropped, not queued, so a
// long-ignored prompt does not cause a burst afterwards.
type App struct {
	cfg      config.Config
	store    storage.Provider
	prompter prompt.Prompter
	sched    *scheduler.Scheduler
	esc      *engine.Escalator
	resched  *reschedule.Controller
	roll     *rollover.Manager

	echoes chan reschedule.Echo

	busy     atomic.Bool
	handlers sync.WaitGroup

	motivationMu   sync.Mutex
	lastMotivation time.Time

	// now is swappable in tests
	now func() time.Time
}

func New(cfg config.Config, store storage.Provider, prompter prompt.Prompter) *App {
	a := &App{
		cfg:      cfg,
		store:    store,
		prompter: prompter,
		echoes:   make(chan reschedule.Echo, 8),
		now:      time.Now,
	}

	a.esc = engine.New(store,
		engine.WithThreshold(cfg.Settings.EscalationThreshold),
	)
	a.resched = reschedule.New(a.enqueueEcho)
	a.sched = scheduler.New(cfg)
	a.roll = rollover.New(store, cfg.Settings.DataRetentionDays, a.esc)

	return a
}

// Run drives the reminder loop until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a.roll.RunIfDue() {
		a.notifyBestEffort(messages.DailyMotivation())
	}
	a.notifyBestEffort(messages.Startup)

	go a.sched.Run(ctx)
	logger.Info("Reminder loop started", "reminders", len(a.cfg.Reminders))

	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			return nil
		case due := <-a.sched.Due():
			a.dispatch(due.TaskName, due.Message, due.Origin)
		case <-a.sched.Rollover():
			if a.roll.RunIfDue() {
				a.notifyBestEffort(messages.DailyMotivation())
			}
		case echo := <-a.echoes:
			a.dispatch(echo.TaskName, echo.Message, echo.Origin)
		}
	}
}

func (a *App) shutdown() {
	logger.Info("Shutting down reminder loop")
	a.resched.Stop()
	a.handlers.Wait()
}

func (a *App) enqueueEcho(e reschedule.Echo) {
	select {
	case a.echoes <- e:
	default:
		logger.Warn("Reschedule echo dropped, queue full", "task", e.TaskName)
	}
}

// dispatch hands one due reminder to a prompt worker. If a prompt is already
// open the event is dropped.
func (a *App) dispatch(taskName, message string, origin models.Origin) {
	if !a.busy.CompareAndSwap(false, true) {
		logger.Warn("Prompt already open, dropping reminder", "task", taskName)
		return
	}

	a.handlers.Add(1)
	go a.handle(taskName, message, origin)
}

func (a *App) handle(taskName, message string, origin models.Origin) {
	defer a.handlers.Done()
	defer a.busy.Store(false)

	resp, err := a.prompter.Ask(taskName, message)
	if err != nil {
		logger.Warn("Reminder prompt failed", "task", taskName, "error", err)
		return
	}

	ev := models.NewResponseEvent(taskName, origin, resp.Kind, resp.DelayMinutes, a.now())
	if err := a.store.AppendEvent(ev); err != nil {
		logger.Error("Failed to record response", "task", taskName, "error", err)
	}

	switch resp.Kind {
	case models.ResponseDeferred:
		if resp.DelayMinutes > 0 {
			a.resched.Schedule(taskName, resp.DelayMinutes, a.cfg.Reminders[taskName].Messages)
		}
	case models.ResponseSkipped:
		if a.esc.ShouldEscalate() {
			a.esc.LogIntervention()
			a.notifyMotivation(a.esc.MessageFor(a.esc.SkipsToday()))
		}
	case models.ResponseCompleted:
		if a.esc.ShouldShowEncouragement() {
			a.notifyBestEffort(messages.Encouragement())
		}
	}
}

// notifyMotivation shows an intervention popup unless one fired within the
// configured cooldown. The intervention entry is recorded either way; the
// cooldown only throttles the interruption.
func (a *App) notifyMotivation(message string) {
	cooldown := time.Duration(a.cfg.Settings.MotivationalCooldownMinutes) * time.Minute

	a.motivationMu.Lock()
	if cooldown > 0 && a.now().Sub(a.lastMotivation) < cooldown {
		a.motivationMu.Unlock()
		logger.Info("Motivational popup suppressed by cooldown")
		return
	}
	a.lastMotivation = a.now()
	a.motivationMu.Unlock()

	a.notifyBestEffort(message)
}

func (a *App) notifyBestEffort(message string) {
	if err := a.prompter.Notify(message); err != nil {
		logger.Warn("Notification failed", "error", err)
	}
}
