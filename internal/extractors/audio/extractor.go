// Package audio extracts tags from audio files, falling back to the
// container probe when no tag reader succeeds.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/extractors/videoaudio"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Strategy is one way of reading audio metadata. Strategies are tried in
// order until one succeeds.
type Strategy interface {
	// Name identifies the strategy in logs and errors.
	Name() string

	// Try returns a fragment or an error that moves on to the next strategy.
	Try(ctx context.Context, path string) (domain.KindMeta, error)
}

// Extractor runs an ordered list of strategies.
type Extractor struct {
	strategies []Strategy
}

// New creates an extractor with the given strategies.
func New(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// NewDefault creates the tag-reader then ffprobe chain.
func NewDefault(prober *videoaudio.Extractor) *Extractor {
	return New(NewTagStrategy(prober), NewProbeStrategy(prober))
}

// Kind returns the media kind this extractor handles.
func (e *Extractor) Kind() domain.Kind {
	return domain.KindAudio
}

// Extract implements driven.Extractor.
func (e *Extractor) Extract(ctx context.Context, path string) domain.KindMeta {
	var errs []string
	for _, s := range e.strategies {
		meta, err := s.Try(ctx, path)
		if err == nil && meta != nil {
			return meta
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			logger.Debug("audio strategy %s failed for %s: %v", s.Name(), path, err)
		}
	}
	if len(errs) == 0 {
		errs = append(errs, "no audio strategy configured")
	}
	return &domain.AudioMeta{ProbeStatus: domain.ProbeStatus{Error: strings.Join(errs, "; ")}}
}

// TagStrategy reads embedded tags (ID3, MP4, Vorbis comments).
type TagStrategy struct {
	prober *videoaudio.Extractor
}

// NewTagStrategy creates a tag reader. prober may be nil; when set and
// available it supplies stream info.
func NewTagStrategy(prober *videoaudio.Extractor) *TagStrategy {
	return &TagStrategy{prober: prober}
}

// Name implements Strategy.
func (s *TagStrategy) Name() string { return "tags" }

// Try implements Strategy.
func (s *TagStrategy) Try(ctx context.Context, path string) (domain.KindMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	md, err := tag.ReadFrom(f)
	if err != nil {
		return nil, err
	}

	meta := &domain.AudioMeta{
		ProbeStatus: domain.ProbeStatus{Available: true},
		Tags:        ReadTags(md),
	}
	if s.prober != nil && s.prober.Available() {
		meta.Info = s.info(ctx, path)
	}
	return meta, nil
}

func (s *TagStrategy) info(ctx context.Context, path string) domain.AudioInfo {
	probe := s.prober.Probe(ctx, path)
	if !probe.OK() {
		return domain.AudioInfo{}
	}
	info := domain.AudioInfo{DurationSec: probe.DurationSec}
	if len(probe.Audio) > 0 {
		info.SampleRate = probe.Audio[0].SampleRate
		info.Channels = probe.Audio[0].Channels
		info.Bitrate = probe.Audio[0].Bitrate
	}
	return info
}

// ProbeStrategy falls back to the container probe.
type ProbeStrategy struct {
	prober *videoaudio.Extractor
}

// NewProbeStrategy creates the probe fallback.
func NewProbeStrategy(prober *videoaudio.Extractor) *ProbeStrategy {
	return &ProbeStrategy{prober: prober}
}

// Name implements Strategy.
func (s *ProbeStrategy) Name() string { return "ffprobe" }

// Try implements Strategy.
func (s *ProbeStrategy) Try(ctx context.Context, path string) (domain.KindMeta, error) {
	if s.prober == nil {
		return nil, errors.New("ffprobe not available")
	}
	meta := s.prober.Probe(ctx, path)
	if !meta.OK() {
		return nil, errors.New(meta.Error)
	}
	return meta, nil
}
