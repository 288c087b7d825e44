package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
)

var (
	scanOut    string
	scanFormat string
)

var scanCmd = &cobra.Command{
	Use:   "scan [root]",
	Short: "Extract metadata from a media directory",
	Long: `Walks the directory (default: scan.root) and extracts one record per media
file: container and tag metadata, image headers, archive listings and sidecar
text. Hidden files and directories are skipped.

Without --out the export is written to stdout. With --out a summary is
printed and the export can later be indexed with 'mediascope index --from'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "write the export to a file")
	scanCmd.Flags().StringVar(&scanFormat, "format", "", "export format: json or yaml (default from --out extension, else json)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	root, err := scanRoot(a, args)
	if err != nil {
		return err
	}
	format, err := exportFormat(scanFormat, scanOut)
	if err != nil {
		return err
	}

	scanner, err := a.Scanner(cmd.Context())
	if err != nil {
		return err
	}
	records, err := scanner.Scan(cmd.Context(), root)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanOut == "" {
		return a.Exporter().Export(cmd.OutOrStdout(), root, records, format)
	}

	f, err := os.Create(scanOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", scanOut, err)
	}
	if err := a.Exporter().Export(f, root, records, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", scanOut, err)
	}
	printScanSummary(cmd.OutOrStdout(), root, records)
	cmd.Printf("Export written to %s\n", scanOut)
	return nil
}

// scanRoot resolves the root argument, falling back to scan.root.
func scanRoot(a App, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	settings, err := a.Settings()
	if err != nil {
		return "", err
	}
	return settings.Scan.Root, nil
}

// exportFormat picks the explicit format, then the file extension, then JSON.
func exportFormat(flag, path string) (driving.ExportFormat, error) {
	switch strings.ToLower(flag) {
	case "json":
		return driving.ExportJSON, nil
	case "yaml", "yml":
		return driving.ExportYAML, nil
	case "":
	default:
		return "", fmt.Errorf("%w: unknown format %q (use json or yaml)", domain.ErrInvalidInput, flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return driving.ExportYAML, nil
	default:
		return driving.ExportJSON, nil
	}
}

func printScanSummary(w io.Writer, root string, records []domain.MediaRecord) {
	st := newStyles(w)
	byKind := make(map[domain.Kind]int)
	var total int64
	var sidecars, probeErrors int
	for i := range records {
		r := &records[i]
		byKind[r.Kind]++
		total += r.SizeBytes
		sidecars += len(r.Sidecars)
		if r.Meta != nil && r.Meta.Status().Error != "" {
			probeErrors++
		}
	}

	fmt.Fprintln(w, st.Title.Render(fmt.Sprintf("Scanned %d media files under %s", len(records), root)))
	for _, k := range []domain.Kind{domain.KindVideo, domain.KindAudio, domain.KindImage, domain.KindArchive} {
		if byKind[k] > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", k, byKind[k])
		}
	}
	fmt.Fprintf(w, "  %-8s %s\n", "size", humanSize(total))
	fmt.Fprintf(w, "  %-8s %d\n", "sidecars", sidecars)
	if probeErrors > 0 {
		fmt.Fprintln(w, st.Warning.Render(fmt.Sprintf("  %d files with extraction errors (see --verbose)", probeErrors)))
	}
}
