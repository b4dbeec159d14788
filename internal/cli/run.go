package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/julianstephens/restwell/internal/app"
	"github.com/julianstephens/restwell/internal/logger"
	"github.com/julianstephens/restwell/internal/prompt"
)

type RunCmd struct{}

func (c *RunCmd) Run(ctx *Context) error {
	lock, err := app.AcquireLock(ctx.ConfigDir)
	if err != nil {
		if errors.Is(err, app.ErrAlreadyRunning) {
			return fmt.Errorf("restwell is already running; stop the other instance first")
		}
		return err
	}
	defer lock.Release()

	prompter := prompt.New(ctx.Config.Settings.BusyDelayOptions, ctx.Config.Settings.AutoCloseSeconds)
	a := app.New(ctx.Config, ctx.Store, prompter)

	runCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting restwell", "config_dir", ctx.ConfigDir)
	return a.Run(runCtx)
}
