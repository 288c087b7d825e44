// Command mediascope indexes local media metadata and answers questions about it.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/mediascope/internal/adapters/driving/cli"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, version)
	stop()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
