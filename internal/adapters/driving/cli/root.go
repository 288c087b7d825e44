// Package cli provides the mediascope command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediascope/internal/logger"
)

var (
	// version is set at build time with -ldflags.
	version = "dev"

	configPath string
	verbose    bool

	// app supplies services to commands. Tests set it before Execute.
	app App

	// newApp builds the runtime services for the --config path.
	newApp = NewRuntimeApp
)

var rootCmd = &cobra.Command{
	Use:   "mediascope",
	Short: "Index local media metadata and query it with evidence",
	Long: `mediascope walks a directory of video, audio, image and archive files,
extracts container and tag metadata plus sidecar text, and indexes one
document per file in a local store.

Queries retrieve candidate files and explain why they matched, using only
file names, paths and extracted metadata. Nothing is inferred about what a
file contains.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.mediascope/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	defer teardown(nil, nil)
	return rootCmd.ExecuteContext(ctx)
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if app != nil {
		return nil
	}
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	app = a
	ownsApp = true
	return nil
}

// ownsApp is true when setup built app and teardown must release it.
var ownsApp bool

func teardown(_ *cobra.Command, _ []string) {
	if !ownsApp || app == nil {
		return
	}
	app.Close()
	app = nil
	ownsApp = false
}

// requireApp returns app or an error when services are not configured.
func requireApp() (App, error) {
	if app == nil {
		return nil, errors.New("services not configured")
	}
	return app, nil
}
