// Package cli holds the kong command implementations.
package cli

import (
	"github.com/julianstephens/restwell/internal/config"
	"github.com/julianstephens/restwell/internal/storage"
)

// Context carries the shared dependencies into every command's Run.
type Context struct {
	Store     storage.Provider
	Config    config.Config
	ConfigDir string
}
