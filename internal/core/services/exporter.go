package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driving"
)

// Ensure Exporter implements the interface.
var _ driving.ExportService = (*Exporter)(nil)

// ExportVersion is the envelope format version.
const ExportVersion = 1

// Envelope is the self-describing container of an exported scan.
type Envelope struct {
	Version     int                  `json:"version"`
	GeneratedAt time.Time            `json:"generated_at"`
	Root        string               `json:"root"`
	Records     []domain.MediaRecord `json:"records"`
}

// Exporter writes and reads scan exports as JSON or YAML.
type Exporter struct {
	now func() time.Time
}

// NewExporter creates an exporter.
func NewExporter() *Exporter {
	return &Exporter{now: time.Now}
}

// Export writes records to w in the given format.
func (e *Exporter) Export(w io.Writer, root string, records []domain.MediaRecord, format driving.ExportFormat) error {
	if records == nil {
		records = []domain.MediaRecord{}
	}
	env := Envelope{
		Version:     ExportVersion,
		GeneratedAt: e.now().UTC().Truncate(time.Second),
		Root:        root,
		Records:     records,
	}

	switch format {
	case driving.ExportJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(env); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case driving.ExportYAML:
		// YAML mirrors the JSON field names and meta discriminator.
		tree, err := toTree(env)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: export format %q", domain.ErrInvalidInput, format)
	}
}

// Import reads records written by Export.
func (e *Exporter) Import(r io.Reader, format driving.ExportFormat) ([]domain.MediaRecord, error) {
	var env Envelope
	switch format {
	case driving.ExportJSON, "":
		if err := json.NewDecoder(r).Decode(&env); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case driving.ExportYAML:
		var tree any
		if err := yaml.NewDecoder(r).Decode(&tree); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		data, err := json.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("convert yaml: %w", err)
		}
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode yaml records: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: export format %q", domain.ErrInvalidInput, format)
	}

	if env.Version != ExportVersion {
		return nil, fmt.Errorf("%w: unsupported export version %d", domain.ErrInvalidInput, env.Version)
	}
	for i := range env.Records {
		if err := env.Records[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return env.Records, nil
}

// toTree converts v to generic maps via its JSON encoding. Integers stay
// integers so large sizes survive the YAML round trip.
func toTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("convert records: %w", err)
	}
	return normalizeNumbers(tree), nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeNumbers(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = normalizeNumbers(item)
		}
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	default:
		return v
	}
}
