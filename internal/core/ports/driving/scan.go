package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// ExportFormat selects the serialisation of a scan export.
type ExportFormat string

// Export formats.
const (
	ExportJSON ExportFormat = "json"
	ExportYAML ExportFormat = "yaml"
)

// ScanService walks a directory and extracts media records.
type ScanService interface {
	// Scan walks root and returns one record per media file, in walk order.
	Scan(ctx context.Context, root string) ([]domain.MediaRecord, error)

	// ScanFile extracts a single file. Non-media files return domain.ErrUnsupportedFormat.
	ScanFile(ctx context.Context, path string) (*domain.MediaRecord, error)
}

// ExportService persists scan results for later indexing.
type ExportService interface {
	// Export writes records to w.
	Export(w io.Writer, root string, records []domain.MediaRecord, format ExportFormat) error

	// Import reads records written by Export.
	Import(r io.Reader, format ExportFormat) ([]domain.MediaRecord, error)
}
