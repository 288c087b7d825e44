// Package archive lists archive members without extracting them.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

// Defaults for listing limits.
const (
	DefaultMaxEntries = 50000
	DefaultMaxSizeGB  = 50.0

	listTimeout = 10 * time.Second
	gigabyte    = 1 << 30
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor lists zip and tar archives directly and defers 7z and rar to
// their command-line tools.
type Extractor struct {
	runner     driven.ToolRunner
	caps       domain.Capabilities
	maxEntries int
	maxSizeGB  float64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxEntries caps the number of listed entries.
func WithMaxEntries(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxEntries = n
		}
	}
}

// WithMaxSizeGB sets the uncompressed size that triggers a warning.
func WithMaxSizeGB(gb float64) Option {
	return func(e *Extractor) {
		if gb > 0 {
			e.maxSizeGB = gb
		}
	}
}

// New creates an archive extractor.
func New(runner driven.ToolRunner, caps domain.Capabilities, opts ...Option) *Extractor {
	e := &Extractor{
		runner:     runner,
		caps:       caps,
		maxEntries: DefaultMaxEntries,
		maxSizeGB:  DefaultMaxSizeGB,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Kind returns the media kind this extractor handles.
func (e *Extractor) Kind() domain.Kind {
	return domain.KindArchive
}

// Extract implements driven.Extractor.
func (e *Extractor) Extract(ctx context.Context, path string) domain.KindMeta {
	ext := strings.ToLower(filepath.Ext(path))
	var meta *domain.ArchiveMeta
	switch ext {
	case ".zip":
		meta = e.listZip(path)
	case ".tar", ".gz", ".tgz":
		meta = e.listTar(path, ext)
	case ".7z":
		meta = e.listExternal(ctx, path, "7z", e.caps.SevenZip, "l")
	case ".rar":
		meta = e.listExternal(ctx, path, "unrar", e.caps.Unrar, "l")
	default:
		return &domain.ArchiveMeta{
			ProbeStatus: domain.ProbeStatus{Error: "Unsupported archive format: " + ext},
			Entries:     []domain.ArchiveEntry{},
		}
	}
	return meta
}

// collector applies the entry cap, size accounting and traversal checks.
type collector struct {
	meta       *domain.ArchiveMeta
	maxEntries int
	total      int
	totalSize  int64
}

func (c *collector) add(entry domain.ArchiveEntry) {
	c.total++
	c.totalSize += entry.Size
	if c.total > c.maxEntries {
		return
	}
	if IsTraversal(entry.Name) {
		entry.Warning = "Possible path traversal"
		c.meta.Warnings = append(c.meta.Warnings, "Path traversal in: "+entry.Name)
	}
	c.meta.Entries = append(c.meta.Entries, entry)
}

func (e *Extractor) finish(c *collector) *domain.ArchiveMeta {
	m := c.meta
	m.EntryCount = len(m.Entries)
	if c.total > e.maxEntries {
		m.Truncated = true
		m.Warnings = append(m.Warnings,
			fmt.Sprintf("Archive truncated: %d entries, showing %d", c.total, e.maxEntries))
	}
	if gb := float64(c.totalSize) / gigabyte; gb > e.maxSizeGB {
		m.Warnings = append(m.Warnings, fmt.Sprintf("Large archive: %.1f GB", gb))
	}
	return m
}

func (e *Extractor) newCollector(format string) *collector {
	return &collector{
		meta: &domain.ArchiveMeta{
			ProbeStatus: domain.ProbeStatus{Available: true},
			Format:      format,
			Entries:     []domain.ArchiveEntry{},
		},
		maxEntries: e.maxEntries,
	}
}

func (e *Extractor) listZip(path string) *domain.ArchiveMeta {
	c := e.newCollector("zip")
	zr, err := zip.OpenReader(path)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		c.meta.Error = fmt.Sprintf("cannot read zip: %v", err)
		return c.meta
	}
	defer zr.Close()

	for _, f := range zr.File {
		c.add(domain.ArchiveEntry{
			Name:           f.Name,
			Size:           int64(f.UncompressedSize64),
			IsDir:          f.FileInfo().IsDir(),
			CompressedSize: domain.Ptr(int64(f.CompressedSize64)),
		})
	}
	return e.finish(c)
}

func (e *Extractor) listTar(path, ext string) *domain.ArchiveMeta {
	format := "tar"
	if ext != ".tar" {
		format = "tar.gz"
	}
	c := e.newCollector(format)

	f, err := os.Open(path)
	if err != nil {
		c.meta.Error = fmt.Sprintf("cannot open archive: %v", err)
		return c.meta
	}
	defer f.Close()

	var r io.Reader = f
	if ext != ".tar" {
		gz, err := gzip.NewReader(f)
		if err != nil {
			c.meta.Error = fmt.Sprintf("cannot read gzip: %v", err)
			return c.meta
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !errors.Is(err, tar.ErrInsecurePath) {
			// A corrupt tail keeps the entries read so far.
			c.meta.Warnings = append(c.meta.Warnings, fmt.Sprintf("Corrupt archive listing: %v", err))
			break
		}
		c.add(domain.ArchiveEntry{
			Name:  hdr.Name,
			Size:  hdr.Size,
			IsDir: hdr.Typeflag == tar.TypeDir,
		})
	}
	return e.finish(c)
}

// listExternal checks that the listing tool runs. Entry parsing for these
// formats is not implemented; the fragment only records availability.
func (e *Extractor) listExternal(ctx context.Context, path, tool string, status domain.ToolStatus, args ...string) *domain.ArchiveMeta {
	meta := &domain.ArchiveMeta{Format: strings.TrimPrefix(filepath.Ext(path), "."), Entries: []domain.ArchiveEntry{}}
	if !status.Available || e.runner == nil {
		meta.Error = tool + " command not found"
		return meta
	}
	meta.Available = true
	if _, err := e.runner.Run(ctx, listTimeout, tool, append(args, path)...); err != nil {
		if errors.Is(err, domain.ErrToolTimeout) {
			meta.Error = tool + " timeout"
		} else {
			meta.Error = tool + " command failed"
		}
		return meta
	}
	meta.Info = meta.Format + " listing available"
	return meta
}

// IsTraversal reports whether an entry name escapes the extraction root.
func IsTraversal(name string) bool {
	if strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return true
	}
	return strings.Contains(name, "..")
}
