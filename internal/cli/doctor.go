package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/storage/sqlite"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("FAIL  Database reachable\n      %v\n", err)
		hasError = true
	} else {
		fmt.Printf("OK    Database reachable\n")
		dbReachable = true
	}

	if err := ctx.Config.Validate(); err != nil {
		fmt.Printf("FAIL  Config valid\n      %v\n", err)
		hasError = true
	} else {
		fmt.Printf("OK    Config valid\n")
	}

	if dbReachable {
		if err := checkAggregateDrift(ctx); err != nil {
			fmt.Printf("FAIL  Daily stats consistent\n      %v\n", err)
			hasError = true
		} else {
			fmt.Printf("OK    Daily stats consistent\n")
		}
	} else {
		fmt.Printf("SKIP  Daily stats consistent (database not reachable)\n")
	}

	if err := checkLockfile(ctx); err != nil {
		fmt.Printf("WARN  Lockfile\n      %v\n", err)
	} else {
		fmt.Printf("OK    Lockfile\n")
	}

	if err := checkClock(); err != nil {
		fmt.Printf("FAIL  Clock sanity\n      %v\n", err)
		hasError = true
	} else {
		fmt.Printf("OK    Clock sanity\n")
	}

	fmt.Println()
	if hasError {
		return fmt.Errorf("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkDBReachable(ctx *Context) error {
	_, err := ctx.Store.SkipsToday()
	return err
}

// checkAggregateDrift replays today's event log and compares the result
// against the stored counters.
func checkAggregateDrift(ctx *Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil
	}

	day := time.Now().Format(constants.DateFormat)
	stored, err := ctx.Store.DailySummary(day)
	if err != nil {
		return err
	}

	for _, agg := range stored {
		if !agg.Consistent() {
			return fmt.Errorf("counter invariant broken for %s: total=%d, parts sum=%d",
				agg.TaskName, agg.TotalCount, agg.CompletedCount+agg.DeferredCount+agg.SkippedCount)
		}
		replayed, err := store.ReplayAggregate(day, agg.TaskName)
		if err != nil {
			return err
		}
		if replayed != agg {
			return fmt.Errorf("stats drift for %s: stored %+v, replay %+v", agg.TaskName, agg, replayed)
		}
	}
	return nil
}

func checkLockfile(ctx *Context) error {
	path := filepath.Join(ctx.ConfigDir, constants.LockfileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return fmt.Errorf("lockfile present at %s; a reminder loop may be running (stale locks are reclaimed on start)", path)
}

func checkClock() error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
