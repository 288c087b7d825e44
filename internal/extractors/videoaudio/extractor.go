// Package videoaudio extracts container metadata for video and audio files
// with ffprobe.
package videoaudio

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// DefaultTimeout bounds one ffprobe invocation.
const DefaultTimeout = 30 * time.Second

const ffprobe = "ffprobe"

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor probes containers with ffprobe.
type Extractor struct {
	runner    driven.ToolRunner
	available bool
	timeout   time.Duration
	kind      domain.Kind
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTimeout overrides the per-file probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithKind sets the kind this extractor registers for. Defaults to video.
func WithKind(k domain.Kind) Option {
	return func(e *Extractor) {
		e.kind = k
	}
}

// New creates an extractor. caps decides whether ffprobe is invoked at all.
func New(runner driven.ToolRunner, caps domain.Capabilities, opts ...Option) *Extractor {
	e := &Extractor{
		runner:    runner,
		available: caps.FFprobe.Available && runner != nil,
		timeout:   DefaultTimeout,
		kind:      domain.KindVideo,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kind returns the media kind this extractor handles.
func (e *Extractor) Kind() domain.Kind {
	return e.kind
}

// Available reports whether ffprobe can be invoked.
func (e *Extractor) Available() bool {
	return e.available
}

// Extract implements driven.Extractor.
func (e *Extractor) Extract(ctx context.Context, path string) domain.KindMeta {
	return e.Probe(ctx, path)
}

// Probe runs ffprobe on path.
func (e *Extractor) Probe(ctx context.Context, path string) *domain.VideoAudioMeta {
	out, status := e.run(ctx, path)
	if !status.OK() {
		return &domain.VideoAudioMeta{ProbeStatus: status}
	}
	meta, err := ParseProbe(out)
	if err != nil {
		return &domain.VideoAudioMeta{ProbeStatus: domain.ProbeStatus{Available: true, Error: err.Error()}}
	}
	return meta
}

// ProbeFormat runs ffprobe and returns container-level numbers only.
func (e *Extractor) ProbeFormat(ctx context.Context, path string) (FormatInfo, domain.ProbeStatus) {
	out, status := e.run(ctx, path)
	if !status.OK() {
		return FormatInfo{}, status
	}
	info, err := ParseFormat(out)
	if err != nil {
		return FormatInfo{}, domain.ProbeStatus{Available: true, Error: err.Error()}
	}
	return info, status
}

func (e *Extractor) run(ctx context.Context, path string) ([]byte, domain.ProbeStatus) {
	if !e.available {
		return nil, domain.ProbeStatus{Error: "ffprobe not available"}
	}
	out, err := e.runner.Run(ctx, e.timeout, ffprobe,
		"-v", "quiet", "-print_format", "json", "-show_format", "-show_streams", path)
	switch {
	case err == nil:
		return out, domain.ProbeStatus{Available: true}
	case errors.Is(err, domain.ErrToolTimeout):
		return nil, domain.ProbeStatus{Available: true, Error: "ffprobe timeout"}
	case errors.Is(err, domain.ErrToolUnavailable):
		return nil, domain.ProbeStatus{Error: "ffprobe not available"}
	default:
		return nil, domain.ProbeStatus{Available: true, Error: err.Error()}
	}
}
