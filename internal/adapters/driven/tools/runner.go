// Package tools runs external probing binaries (ffprobe, 7z, unrar) and
// reports which of them are installed.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// Ensure Runner implements the interface.
var _ driven.ToolRunner = (*Runner)(nil)

// Runner executes system binaries with a per-call deadline.
type Runner struct {
	limiter  *rate.Limiter
	lookPath func(string) (string, error)
}

// Option configures a Runner.
type Option func(*Runner)

// WithRate throttles invocations to perSecond calls. Zero disables throttling.
func WithRate(perSecond float64) Option {
	return func(r *Runner) {
		if perSecond > 0 {
			burst := int(perSecond)
			if burst < 1 {
				burst = 1
			}
			r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{lookPath: exec.LookPath}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LookPath reports whether a binary is installed.
func (r *Runner) LookPath(name string) (string, error) {
	p, err := r.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrToolUnavailable, name, err)
	}
	return p, nil
}

// Run executes name with args and returns stdout.
func (r *Runner) Run(ctx context.Context, timeout time.Duration, name string, args ...string) ([]byte, error) {
	bin, err := r.LookPath(name)
	if err != nil {
		return nil, err
	}
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for %s slot: %w", name, err)
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", domain.ErrToolTimeout, name, timeout)
		}
		return stdout.Bytes(), fmt.Errorf("%s failed: %w; out=%s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
