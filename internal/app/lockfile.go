package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/logger"
)

var findProcessFunc = ps.FindProcess

// ErrAlreadyRunning means another live restwell process holds the lock.
var ErrAlreadyRunning = errors.New("another restwell instance is already running")

// Lock is a pid-based single-instance guard. The lockfile holds
// "pid|executable"; a lockfile whose pid no longer maps to a restwell
// process is stale and gets replaced.
type Lock struct {
	path string
}

// AcquireLock claims the single-instance lock in configDir. It returns
// ErrAlreadyRunning when a live holder exists.
func AcquireLock(configDir string) (*Lock, error) {
	path := filepath.Join(configDir, constants.LockfileName)

	if content, err := os.ReadFile(path); err == nil {
		if holderAlive(string(content)) {
			return nil, ErrAlreadyRunning
		}
		logger.Warn("Removing stale lockfile", "path", path)
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}

	exe := constants.AppName
	if p, err := os.Executable(); err == nil {
		exe = filepath.Base(p)
	}
	content := fmt.Sprintf("%d|%s", os.Getpid(), exe)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}

	return &Lock{path: path}, nil
}

// Release removes the lockfile. Safe to call once at shutdown.
func (l *Lock) Release() {
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove lockfile", "path", l.path, "error", err)
	}
}

func holderAlive(content string) bool {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 2 {
		return false
	}

	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return false
	}

	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}

	// A recycled pid belonging to some other program does not hold our lock.
	return strings.HasPrefix(process.Executable(), strings.TrimSpace(parts[1])) ||
		strings.HasPrefix(process.Executable(), constants.AppName)
}
