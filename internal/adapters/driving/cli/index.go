package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

var (
	indexFrom    string
	indexFormat  string
	indexRebuild bool
)

var indexCmd = &cobra.Command{
	Use:   "index [root]",
	Short: "Index media metadata into the local store",
	Long: `Builds one document per media record and commits them to the configured
store (store.backend) in a single batch. Records come from a fresh scan of
root (default: scan.root) or from an export written by 'mediascope scan --out'.

Existing documents for the same file are replaced. Use --rebuild to clear
the store first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexFrom, "from", "", "index records from a scan export instead of scanning")
	indexCmd.Flags().StringVar(&indexFormat, "format", "", "export format of --from: json or yaml")
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "clear the store before indexing")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	if indexFrom != "" && len(args) > 0 {
		return fmt.Errorf("%w: use either --from or a root directory", domain.ErrInvalidInput)
	}

	records, err := loadRecords(cmd, a, args)
	if err != nil {
		return err
	}

	indexer, err := a.Indexer(cmd.Context(), true)
	if err != nil {
		return err
	}
	if indexRebuild {
		if err := indexer.Reset(cmd.Context()); err != nil {
			return fmt.Errorf("rebuild: %w", err)
		}
	}

	report, err := indexer.Index(cmd.Context(), records)
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}
	printIndexReport(cmd, report)
	return nil
}

func loadRecords(cmd *cobra.Command, a App, args []string) ([]domain.MediaRecord, error) {
	if indexFrom != "" {
		format, err := exportFormat(indexFormat, indexFrom)
		if err != nil {
			return nil, err
		}
		f, err := os.Open(indexFrom)
		if err != nil {
			return nil, fmt.Errorf("open export: %w", err)
		}
		defer f.Close()
		return a.Exporter().Import(f, format)
	}

	root, err := scanRoot(a, args)
	if err != nil {
		return nil, err
	}
	scanner, err := a.Scanner(cmd.Context())
	if err != nil {
		return nil, err
	}
	records, err := scanner.Scan(cmd.Context(), root)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	return records, nil
}

func printIndexReport(cmd *cobra.Command, report *domain.IndexReport) {
	st := newStyles(cmd.OutOrStdout())
	if report.Indexed == 0 && report.Skipped == 0 {
		cmd.Println(st.Muted.Render("Nothing to index."))
		return
	}
	msg := fmt.Sprintf("Indexed %d documents", report.Indexed)
	if report.Chunks > 0 {
		msg += fmt.Sprintf(" (%d sidecar chunks)", report.Chunks)
	}
	cmd.Println(st.Success.Render(msg))
	if report.Skipped > 0 {
		cmd.Println(st.Warning.Render(fmt.Sprintf("Skipped %d records:", report.Skipped)))
		for _, f := range report.Failures {
			cmd.Printf("  %s: %s\n", f.Path, f.Err)
		}
	}
}
