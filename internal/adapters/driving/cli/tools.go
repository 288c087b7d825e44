package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Report external tools and services",
	Long: `Checks the external probing binaries (ffprobe, 7z, unrar), pings the
embedding service and the explainer, and reports the index size and its last
run. Missing tools only reduce the metadata extracted; they are never fatal.`,
	Args: cobra.NoArgs,
	RunE: runTools,
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	st := newStyles(cmd.OutOrStdout())
	ok := func(available bool, detail string) string {
		if available {
			return st.Success.Render("available")
		}
		return st.Warning.Render(detail)
	}

	caps := a.Capabilities(cmd.Context())
	cmd.Println(st.Title.Render("Tools"))
	for _, t := range []struct {
		name   string
		status domain.ToolStatus
	}{
		{"ffprobe", caps.FFprobe},
		{"7z", caps.SevenZip},
		{"unrar", caps.Unrar},
	} {
		cmd.Printf("  %-10s %s\n", t.name, ok(t.status.Available, t.status.Error))
	}
	cmd.Println()

	cmd.Println(st.Title.Render("Services"))
	for _, s := range a.CheckServices(cmd.Context()) {
		var state string
		switch {
		case !s.Enabled:
			state = st.Muted.Render("disabled")
		case s.Err != nil:
			state = st.Error.Render(fmt.Sprintf("unreachable: %v", s.Err))
		default:
			state = st.Success.Render("reachable")
		}
		target := ""
		if s.Target != "" {
			target = " (" + s.Target + ")"
		}
		cmd.Printf("  %-10s %s%s\n", s.Name, state, target)
	}
	cmd.Println()

	cmd.Println(st.Title.Render("Index"))
	cmd.Printf("  %-10s %s\n", "documents", indexState(cmd.Context(), a, st))
	return nil
}

func indexState(ctx context.Context, a App, st styles) string {
	ix, err := a.Indexer(ctx, false)
	if err != nil {
		return st.Error.Render(fmt.Sprintf("unavailable: %v", err))
	}
	status, err := ix.Status(ctx)
	if err != nil {
		return st.Error.Render(fmt.Sprintf("unreadable: %v", err))
	}
	if !status.Available {
		return st.Warning.Render("no index (run mediascope index)")
	}
	line := fmt.Sprintf("%d", status.Documents)
	if run := status.LastRun; run != nil {
		line += fmt.Sprintf(", last run %s", run.CreatedAt.Local().Format("2006-01-02 15:04"))
		if run.Model != "" {
			line += " (" + run.Model + ")"
		}
	}
	return st.Success.Render(line)
}
