package tools

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// Binary names.
const (
	FFprobe  = "ffprobe"
	SevenZip = "7z"
	Unrar    = "unrar"
)

const versionTimeout = 5 * time.Second

// DetectCapabilities probes each external binary once. The result is
// passed to extractor constructors.
func DetectCapabilities(ctx context.Context, runner driven.ToolRunner) domain.Capabilities {
	caps := domain.Capabilities{
		FFprobe:  probeVersion(ctx, runner, FFprobe, "-version"),
		SevenZip: probePresence(runner, SevenZip),
		Unrar:    probePresence(runner, Unrar),
	}
	for name, st := range map[string]domain.ToolStatus{
		FFprobe: caps.FFprobe, SevenZip: caps.SevenZip, Unrar: caps.Unrar,
	} {
		if !st.Available {
			logger.Debug("tool %s unavailable: %s", name, st.Error)
		}
	}
	return caps
}

func probeVersion(ctx context.Context, runner driven.ToolRunner, name string, args ...string) domain.ToolStatus {
	if runner == nil {
		return domain.ToolStatus{Error: name + " not available"}
	}
	if _, err := runner.Run(ctx, versionTimeout, name, args...); err != nil {
		if errors.Is(err, domain.ErrToolTimeout) {
			return domain.ToolStatus{Error: name + " timeout"}
		}
		return domain.ToolStatus{Error: name + " not available"}
	}
	return domain.ToolStatus{Available: true}
}

// 7z and unrar exit non-zero without arguments, so presence is enough.
func probePresence(runner driven.ToolRunner, name string) domain.ToolStatus {
	if runner == nil {
		return domain.ToolStatus{Error: name + " command not found"}
	}
	if _, err := runner.LookPath(name); err != nil {
		return domain.ToolStatus{Error: name + " command not found"}
	}
	return domain.ToolStatus{Available: true}
}
