// Package image extracts header-level metadata and an EXIF subset from
// image files without decoding pixel data.
package image

import (
	"context"
	"fmt"
	stdimage "image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"strings"

	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/custodia-labs/mediascope/internal/core/domain"
	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
	"github.com/custodia-labs/mediascope/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor reads image headers and EXIF.
type Extractor struct{}

// New creates an image extractor.
func New() *Extractor {
	return &Extractor{}
}

// Kind returns the media kind this extractor handles.
func (e *Extractor) Kind() domain.Kind {
	return domain.KindImage
}

// Extract implements driven.Extractor.
func (e *Extractor) Extract(_ context.Context, path string) domain.KindMeta {
	f, err := os.Open(path)
	if err != nil {
		return &domain.ImageMeta{ProbeStatus: domain.ProbeStatus{Available: true, Error: err.Error()}}
	}
	defer f.Close()

	cfg, format, err := stdimage.DecodeConfig(f)
	if err != nil {
		return &domain.ImageMeta{ProbeStatus: domain.ProbeStatus{
			Available: true,
			Error:     fmt.Sprintf("cannot read image header: %v", err),
		}}
	}

	meta := &domain.ImageMeta{
		ProbeStatus: domain.ProbeStatus{Available: true},
		Format:      strings.ToUpper(format),
		Width:       domain.Ptr(cfg.Width),
		Height:      domain.Ptr(cfg.Height),
		Mode:        colorMode(cfg.ColorModel),
	}

	exifData, warning := readEXIF(f, format)
	meta.EXIF = exifData
	if warning != "" {
		logger.Warn("%s: %s", path, warning)
		meta.Warnings = append(meta.Warnings, warning)
	}
	return meta
}

// colorMode names a colour model the way image tooling conventionally does.
func colorMode(m color.Model) string {
	if _, ok := m.(color.Palette); ok {
		return "P"
	}
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model, color.NYCbCrAModel:
		return "RGBA"
	case color.YCbCrModel:
		return "RGB"
	case color.GrayModel:
		return "L"
	case color.Gray16Model:
		return "I;16"
	case color.CMYKModel:
		return "CMYK"
	case color.AlphaModel, color.Alpha16Model:
		return "A"
	default:
		return ""
	}
}
