package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/restwell/internal/cli"
	"github.com/julianstephens/restwell/internal/config"
	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/errors"
	"github.com/julianstephens/restwell/internal/logger"
	"github.com/julianstephens/restwell/internal/storage/sqlite"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Directory holding the config, database, and logs." type:"path"`
	Debug     bool   `help:"Verbose logging to stderr."`

	Init   cli.InitCmd   `cmd:"" help:"Initialize restwell storage and write the default config."`
	Run    cli.RunCmd    `cmd:"" help:"Start the reminder loop." default:"1"`
	Once   cli.OnceCmd   `cmd:"" help:"Fire a single reminder now and record the response."`
	Stats  cli.StatsCmd  `cmd:"" help:"Show today's numbers and completion rate."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Archive struct {
		Run  cli.ArchiveRunCmd  `cmd:"" help:"Archive data older than the retention window." default:"1"`
		List cli.ArchiveListCmd `cmd:"" help:"List archive artifacts."`
		Show cli.ArchiveShowCmd `cmd:"" help:"Print the contents of one archive artifact."`
	} `cmd:"" help:"Manage archived history."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Desk wellness reminders: water, eye rest, stretching, and a lunch away from the screen"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": "v0.2.0"},
	)

	configDir := CLI.ConfigDir
	if configDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot determine config dir: %v\n", err)
			os.Exit(1)
		}
		configDir = filepath.Join(base, constants.AppName)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot create config dir: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging unavailable: %v\n", err)
	}

	cfg, err := config.Load(filepath.Join(configDir, constants.ConfigFileName))
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Settings.Debug = true
	}

	store := sqlite.NewStore(filepath.Join(configDir, constants.DBFileName))
	defer store.Close()

	appCtx := &cli.Context{
		Store:     store,
		Config:    cfg,
		ConfigDir: configDir,
	}

	// Init handles its own schema creation; everything else needs an
	// existing database.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v (run `restwell init` first)\n", err)
			os.Exit(1)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
