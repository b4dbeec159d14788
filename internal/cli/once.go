package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/restwell/internal/messages"
	"github.com/julianstephens/restwell/internal/models"
	"github.com/julianstephens/restwell/internal/prompt"
)

// OnceCmd fires a single reminder immediately and records the response.
// Useful for trying the prompt flow without waiting for a schedule.
type OnceCmd struct {
	Task string `arg:"" optional:"" default:"water" help:"Reminder to fire (default: water)."`
}

func (c *OnceCmd) Run(ctx *Context) error {
	reminder, ok := ctx.Config.Reminders[c.Task]
	if !ok {
		return fmt.Errorf("no reminder named %q in config", c.Task)
	}

	prompter := prompt.New(ctx.Config.Settings.BusyDelayOptions, ctx.Config.Settings.AutoCloseSeconds)
	resp, err := prompter.Ask(c.Task, messages.Pick(reminder.Messages))
	if err != nil {
		return err
	}

	ev := models.NewResponseEvent(c.Task, models.OriginUser, resp.Kind, resp.DelayMinutes, time.Now())
	if err := ctx.Store.AppendEvent(ev); err != nil {
		return fmt.Errorf("failed to record response: %w", err)
	}

	switch resp.Kind {
	case models.ResponseCompleted:
		fmt.Println("Recorded: completed. Nice.")
	case models.ResponseDeferred:
		fmt.Printf("Recorded: deferred by %d minutes. Delayed re-fires only run in `restwell run`.\n", resp.DelayMinutes)
	default:
		fmt.Println("Recorded: skipped.")
	}

	return nil
}
