package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/restwell/internal/constants"
	"github.com/julianstephens/restwell/internal/tui"
)

type StatsCmd struct {
	Watch bool   `help:"Live dashboard that refreshes every 30 seconds."`
	Days  int    `help:"Completion-rate window in days." default:"7"`
	Task  string `help:"Show per-task performance for one reminder."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	if c.Watch {
		_, err := tea.NewProgram(tui.NewModel(ctx.Store), tea.WithAltScreen()).Run()
		return err
	}

	if c.Task != "" {
		perf, err := ctx.Store.TaskPerformance(c.Task, c.Days)
		if err != nil {
			return err
		}
		fmt.Printf("%s over the last %d days:\n", c.Task, c.Days)
		fmt.Printf("  completed: %d\n  deferred:  %d\n  skipped:   %d\n  total:     %d\n",
			perf.CompletedCount, perf.DeferredCount, perf.SkippedCount, perf.TotalCount)
		fmt.Printf("  completion rate: %.1f%%\n  skip rate:       %.1f%%\n",
			perf.CompletionRate, perf.SkipRate)
		return nil
	}

	day := time.Now().Format(constants.DateFormat)
	summaries, err := ctx.Store.DailySummary(day)
	if err != nil {
		return err
	}
	rate, err := ctx.Store.CompletionRate(c.Days)
	if err != nil {
		return err
	}
	skips, err := ctx.Store.SkipsToday()
	if err != nil {
		return err
	}
	run, err := ctx.Store.ConsecutiveSkipsToday()
	if err != nil {
		return err
	}

	fmt.Println(tui.RenderSummary(summaries, rate, skips, run))
	return nil
}
