package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// Ensure Scanner implements the interface.
var _ driving.ScanService = (*Scanner)(nil)

// DefaultWorkers bounds parallel extraction.
const DefaultWorkers = 4

// Scanner walks a directory tree and extracts one record per media file.
type Scanner struct {
	extractors driven.ExtractorRegistry
	text       driven.TextSourceReader
	extensions domain.ExtensionMap
	workers    int
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithWorkers sets the extraction pool size.
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithExtensions overrides the extension to kind mapping.
func WithExtensions(m domain.ExtensionMap) ScannerOption {
	return func(s *Scanner) {
		if len(m) > 0 {
			s.extensions = m
		}
	}
}

// NewScanner creates a scanner. text may be nil to skip sidecar reading.
func NewScanner(extractors driven.ExtractorRegistry, text driven.TextSourceReader, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		extractors: extractors,
		text:       text,
		extensions: domain.DefaultExtensionMap(),
		workers:    DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// candidate is a walked file awaiting extraction.
type candidate struct {
	path string
	info fs.FileInfo
	kind domain.Kind
}

// Scan walks root and returns records in walk order. Hidden files and
// directories are skipped. Per-file failures are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]domain.MediaRecord, error) {
	logger.Section("Scan")
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	var files []candidate
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("walk %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		kind := s.extensions.KindFor(filepath.Ext(path))
		if kind == domain.KindUnknown {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			logger.Warn("stat %s: %v", path, err)
			return nil
		}
		files = append(files, candidate{path: path, info: fi, kind: kind})
		return ctx.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	logger.Info("found %d media files under %s", len(files), root)

	records := make([]domain.MediaRecord, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = s.extract(gctx, f)
			logger.Debug("extracted %s (%s)", f.path, f.kind)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return records, nil
}

// ScanFile extracts a single file.
func (s *Scanner) ScanFile(ctx context.Context, path string) (*domain.MediaRecord, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidInput, path)
	}
	kind := s.extensions.KindFor(filepath.Ext(path))
	if kind == domain.KindUnknown {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}
	rec := s.extract(ctx, candidate{path: path, info: info, kind: kind})
	return &rec, nil
}

func (s *Scanner) extract(ctx context.Context, f candidate) domain.MediaRecord {
	rec := domain.NewMediaRecord(f.path, f.info.Size(), f.info.ModTime(), f.kind)

	if s.text != nil {
		rec.Sidecars = s.text.Discover(f.path)
		if len(rec.Sidecars) > 0 {
			text := s.text.FromSidecars(rec.Sidecars)
			rec.TextSources = text.Sources
			rec.TotalTextSize = text.TotalTextSize
			rec.TextErrors = text.Errors
		}
	}

	if s.extractors != nil {
		meta := s.extractors.Extract(ctx, f.kind, f.path)
		if meta != nil && domain.MetaMatchesKind(meta, f.kind) {
			rec.Meta = meta
			if e := meta.Status().Error; e != "" {
				logger.Debug("%s: %s", f.path, e)
			}
		}
	}
	return rec
}
