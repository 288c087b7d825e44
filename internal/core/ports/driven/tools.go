package driven

import (
	"context"
	"time"
)

// ToolRunner invokes external probing binaries (ffprobe, 7z, unrar).
type ToolRunner interface {
	// LookPath reports whether a binary is installed.
	LookPath(name string) (string, error)

	// Run executes a binary with a per-call timeout and returns stdout.
	// A missing binary wraps domain.ErrToolUnavailable and an expired
	// deadline wraps domain.ErrToolTimeout.
	Run(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error)
}
