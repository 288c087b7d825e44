package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediascope/internal/adapters/driven/config/file"
	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `Shows the effective settings merged from the defaults, the config file,
.env and MEDIASCOPE_* environment variables (highest precedence).

Use 'settings set' to write a key to the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a setting to the config file",
	Long: `Writes one key to the config file. Lists are comma separated.

Examples:
  mediascope settings set store.backend bleve
  mediascope settings set explainer.timeout 45s
  mediascope settings set scan.extensions.video .mp4,.mkv`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys and their environment variables",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	settings, err := a.Settings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Printf("Config file: %s\n", a.SettingsService().ConfigPath())
	cmd.Println()
	printSettings(cmd.OutOrStdout(), settings)
	return nil
}

func printSettings(w io.Writer, s *domain.Settings) {
	section := func(name string, rows ...[2]string) {
		fmt.Fprintf(w, "[%s]\n", name)
		for _, r := range rows {
			fmt.Fprintf(w, "  %-16s %s\n", r[0]+":", r[1])
		}
		fmt.Fprintln(w)
	}
	row := func(k string, v any) [2]string { return [2]string{k, fmt.Sprint(v)} }

	section("scan",
		row("root", s.Scan.Root),
		row("workers", s.Scan.Workers),
	)
	exts := s.Scan.Extensions.ByKind()
	kinds := make([]string, 0, len(exts))
	for k := range exts {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	rows := make([][2]string, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, row(k, strings.Join(exts[domain.Kind(k)], " ")))
	}
	section("scan.extensions", rows...)
	section("archive",
		row("max_entries", s.Archive.MaxEntries),
		row("max_size_gb", s.Archive.MaxSizeGB),
	)
	section("text",
		row("max_size_bytes", s.Text.MaxSizeBytes),
		row("encoding_errors", s.Text.EncodingErrors),
	)
	section("chunk",
		row("strategy", s.Chunk.Strategy),
		row("size", s.Chunk.Size),
		row("overlap", s.Chunk.Overlap),
		row("max_chars", s.Chunk.MaxChars),
	)
	section("index", row("sidecar_chunks", s.Index.SidecarChunks))
	section("store",
		row("backend", s.Store.Backend),
		row("path", orNone(s.Store.Path)),
	)
	section("embedding",
		row("provider", s.Embedding.Provider),
		row("model", s.Embedding.Model),
		row("base_url", s.Embedding.BaseURL),
		row("dimensions", s.Embedding.Dimensions),
	)
	section("explainer",
		row("enabled", s.Explainer.Enabled),
		row("base_url", s.Explainer.BaseURL),
		row("model", s.Explainer.Model),
		row("temperature", s.Explainer.Temperature),
		row("timeout", s.Explainer.Timeout),
	)
	section("tools", row("rate_per_second", s.Tools.RatePerSecond))
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	key, raw := args[0], args[1]
	if err := a.SettingsService().Set(key, file.ParseValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s = %s\n", key, raw)
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	for _, k := range services.Keys() {
		cmd.Printf("  %-28s %s\n", k, services.EnvName(k))
	}
	return nil
}
