package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/restwell/internal/config"
	"github.com/julianstephens/restwell/internal/constants"
)

type InitCmd struct {
	Force bool `help:"Reset by deleting the existing database before initialization."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized restwell storage at: %s\n", ctx.Store.GetConfigPath())

	configPath := filepath.Join(ctx.ConfigDir, constants.ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.Save(config.Default(), configPath); err != nil {
			return fmt.Errorf("failed to write default config: %w", err)
		}
		fmt.Printf("Wrote default config to: %s\n", configPath)
	} else {
		fmt.Printf("Config already present at: %s\n", configPath)
	}

	return nil
}
