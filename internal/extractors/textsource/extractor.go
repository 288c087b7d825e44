// Package textsource locates sidecar files (subtitles, notes, metadata)
// next to a media file and decodes their text.
package textsource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// DefaultMaxSizeBytes is the sidecar size ceiling.
const DefaultMaxSizeBytes = 1 << 20

// Ensure Extractor implements the interface.
var _ driven.TextSourceReader = (*Extractor)(nil)

// Extractor reads sidecar text.
type Extractor struct {
	maxSize   int64
	encodings []string
	policy    domain.EncodingErrorPolicy
	cleaner   driven.NormaliserRegistry
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxSize sets the sidecar size ceiling in bytes.
func WithMaxSize(n int64) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxSize = n
		}
	}
}

// WithEncodings overrides the encoding trial order.
func WithEncodings(names ...string) Option {
	return func(e *Extractor) {
		if len(names) > 0 {
			e.encodings = names
		}
	}
}

// WithErrorPolicy sets what happens when no encoding decodes a file.
func WithErrorPolicy(p domain.EncodingErrorPolicy) Option {
	return func(e *Extractor) {
		if p.IsValid() {
			e.policy = p
		}
	}
}

// WithNormalisers cleans note and metadata sidecars in ReadFull.
func WithNormalisers(r driven.NormaliserRegistry) Option {
	return func(e *Extractor) {
		e.cleaner = r
	}
}

// New creates a sidecar extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		maxSize:   DefaultMaxSizeBytes,
		encodings: DefaultEncodings,
		policy:    domain.EncodingSkip,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Discover finds same-stem sidecars in the media file's directory.
func (e *Extractor) Discover(mediaPath string) map[string]domain.SidecarRef {
	dir := filepath.Dir(mediaPath)
	base := filepath.Base(mediaPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	refs := make(map[string]domain.SidecarRef)
	for _, st := range domain.SidecarTypes {
		for _, ext := range domain.SidecarExtensions(st) {
			for _, candidate := range []string{stem + ext, stem + strings.ToUpper(ext)} {
				p := filepath.Join(dir, candidate)
				if p == mediaPath {
					continue
				}
				info, err := os.Stat(p)
				if err != nil || !info.Mode().IsRegular() {
					continue
				}
				refs[domain.SidecarKey(st, ext)] = domain.SidecarRef{Path: p, Size: info.Size(), Type: st}
				break
			}
		}
	}
	return refs
}

// FromSidecars reads each sidecar and attaches a bounded preview.
// TotalTextSize uses full decoded lengths.
func (e *Extractor) FromSidecars(refs map[string]domain.SidecarRef) domain.TextExtraction {
	return e.extract(refs, true)
}

// FromPath discovers sidecars and attaches lengths only.
func (e *Extractor) FromPath(mediaPath string) domain.TextExtraction {
	return e.extract(e.Discover(mediaPath), false)
}

// ReadFull decodes a sidecar completely. Subtitles are reduced to their
// dialogue; other sidecars pass through the normalisers when configured.
func (e *Extractor) ReadFull(path string) (string, error) {
	text, _, err := e.read(path)
	if err != nil {
		return "", err
	}
	ext := filepath.Ext(path)
	switch {
	case isSubtitle(path):
		text, _ = SubtitleText(text, ext)
	case e.cleaner != nil:
		text = e.cleaner.Normalise(strings.ToLower(ext), text)
	}
	return text, nil
}

func (e *Extractor) extract(refs map[string]domain.SidecarRef, preview bool) domain.TextExtraction {
	result := domain.TextExtraction{Sources: []domain.TextSource{}, Errors: []string{}}

	for _, ref := range OrderedRefs(refs) {
		name := filepath.Base(ref.Path)
		text, enc, err := e.read(ref.Path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			logger.Debug("sidecar %s skipped: %v", ref.Path, err)
			continue
		}

		if text == "" {
			logger.Debug("sidecar %s skipped: empty", ref.Path)
			continue
		}

		// Lengths count the whole decoded file, not the dialogue preview.
		length := utf8.RuneCountInString(text)
		src := domain.TextSource{
			SourceType: ref.Type,
			Filename:   name,
			Path:       ref.Path,
			Extension:  strings.ToLower(filepath.Ext(name)),
			SizeBytes:  ref.Size,
			Encoding:   enc,
			TextLength: length,
		}
		if ref.Type == domain.SidecarSubtitle {
			text, src.Lines = SubtitleText(text, src.Extension)
		}
		if preview {
			src.Text = Preview(text, domain.PreviewChars)
		}
		result.TotalTextSize += length
		result.Sources = append(result.Sources, src)
	}
	return result
}

func (e *Extractor) read(path string) (text, enc string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", "", err
	}
	if info.Size() > e.maxSize {
		return "", "", fmt.Errorf("%w (%d bytes)", domain.ErrFileTooLarge, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	if text, enc, ok := decode(data, e.encodings); ok {
		return text, enc, nil
	}
	if e.policy == domain.EncodingReplace {
		return decodeReplacing(data), "utf-8-replace", nil
	}
	logger.Warn("sidecar %s: no configured encoding could decode it", path)
	return "", "", domain.ErrUndecodable
}

// OrderedRefs returns sidecars in lookup order: subtitle, note, meta, and
// extension order within each type.
func OrderedRefs(refs map[string]domain.SidecarRef) []domain.SidecarRef {
	out := make([]domain.SidecarRef, 0, len(refs))
	for _, st := range domain.SidecarTypes {
		for _, ext := range domain.SidecarExtensions(st) {
			if ref, ok := refs[domain.SidecarKey(st, ext)]; ok {
				out = append(out, ref)
			}
		}
	}
	return out
}

// Preview returns at most n characters of text.
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}

func isSubtitle(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range domain.SidecarExtensions(domain.SidecarSubtitle) {
		if ext == s {
			return true
		}
	}
	return false
}
