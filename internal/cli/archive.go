package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/restwell/internal/archive"
	"github.com/julianstephens/restwell/internal/storage/sqlite"
)

// ArchiveRunCmd moves events older than the retention window into a JSON
// artifact and prunes them from the database.
type ArchiveRunCmd struct {
	RetentionDays int `help:"Override the configured retention window." default:"0"`
}

func (c *ArchiveRunCmd) Run(ctx *Context) error {
	days := c.RetentionDays
	if days <= 0 {
		days = ctx.Config.Settings.DataRetentionDays
	}

	path, err := ctx.Store.ArchiveOlderThan(days)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Printf("Nothing older than %d days to archive.\n", days)
		return nil
	}

	fmt.Printf("Archived data older than %d days to: %s\n", days, path)
	return nil
}

type ArchiveListCmd struct{}

func (c *ArchiveListCmd) Run(ctx *Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return fmt.Errorf("archive listing requires the sqlite store")
	}

	infos, err := store.Archives().List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No archives found.")
		return nil
	}

	for _, info := range infos {
		fmt.Printf("%s  (%d bytes)\n", info.Path, info.Size)
	}
	return nil
}

// ArchiveShowCmd prints the contents of one archive artifact.
type ArchiveShowCmd struct {
	Path string `arg:"" help:"Archive file to inspect."`
}

func (c *ArchiveShowCmd) Run(ctx *Context) error {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return fmt.Errorf("archive inspection requires the sqlite store")
	}

	artifact, err := store.Archives().Read(c.Path)
	if err != nil {
		return err
	}

	printArtifact(artifact)
	return nil
}

func printArtifact(a archive.Artifact) {
	fmt.Printf("Archived on %s, data before %s\n", a.ArchivedOn.Format(time.RFC3339), a.CutoffDay)
	fmt.Printf("  events:      %d\n", len(a.Events))
	fmt.Printf("  daily stats: %d\n", len(a.Aggregates))
	for _, agg := range a.Aggregates {
		fmt.Printf("    %s %-16s done=%d deferred=%d skipped=%d\n",
			agg.Day, agg.TaskName, agg.CompletedCount, agg.DeferredCount, agg.SkippedCount)
	}
}
