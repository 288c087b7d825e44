package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediascope/internal/connectors/filesystem"
	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
	"github.com/custodia-labs/mediascope/internal/logger"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Re-index media files as they change",
	Long: `Watches the directory (default: scan.root) and re-extracts and upserts every
media file that is created or modified. Removed files are reported; run
'mediascope index --rebuild' to drop them from the store.

Stops on interrupt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", filesystem.DefaultDebounce, "wait for changes to settle before indexing")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	settings, err := a.Settings()
	if err != nil {
		return err
	}
	root := settings.Scan.Root
	if len(args) > 0 {
		root = args[0]
	}

	scanner, err := a.Scanner(cmd.Context())
	if err != nil {
		return err
	}
	indexer, err := a.Indexer(cmd.Context(), true)
	if err != nil {
		return err
	}

	w := filesystem.New(root,
		filesystem.WithDebounce(watchDebounce),
		filesystem.WithExtensions(settings.Scan.Extensions),
	)
	defer w.Close()

	batches, err := w.Watch(cmd.Context())
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", root)

	for batch := range batches {
		applyChanges(cmd.Context(), cmd.OutOrStdout(), scanner, indexer, batch)
	}
	return nil
}

// applyChanges re-extracts changed files and indexes them in one batch.
func applyChanges(ctx context.Context, out io.Writer, scanner driving.ScanService, indexer driving.IndexService, batch []filesystem.Change) {
	st := newStyles(out)
	var records []domain.MediaRecord
	for _, c := range batch {
		if c.Type == filesystem.ChangeDeleted {
			fmt.Fprintln(out, st.Warning.Render("removed "+c.Path+" (stale until rebuild)"))
			continue
		}
		rec, err := scanner.ScanFile(ctx, c.Path)
		if err != nil {
			logger.Warn("rescan %s: %v", c.Path, err)
			continue
		}
		records = append(records, *rec)
	}
	if len(records) == 0 {
		return
	}

	report, err := indexer.Index(ctx, records)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(out, st.Error.Render("index failed: "+err.Error()))
		}
		return
	}
	for _, r := range records {
		fmt.Fprintf(out, "indexed %s\n", r.Path)
	}
	if report.Skipped > 0 {
		fmt.Fprintln(out, st.Warning.Render(fmt.Sprintf("skipped %d records", report.Skipped)))
	}
}
