package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type recordJSON struct {
	Path           string                `json:"path"`
	Name           string                `json:"name"`
	NameWithoutExt string                `json:"name_without_ext"`
	Extension      string                `json:"ext"`
	SizeBytes      int64                 `json:"size"`
	ModifiedAt     time.Time             `json:"mtime"`
	Kind           Kind                  `json:"kind"`
	Sidecars       map[string]SidecarRef `json:"sidecar_files"`
	MetaVariant    MetaVariant           `json:"meta_variant,omitempty"`
	Meta           json.RawMessage       `json:"meta,omitempty"`
	TextSources    []TextSource          `json:"text_sources,omitempty"`
	TotalTextSize  int                   `json:"total_text_size"`
	TextErrors     []string              `json:"extraction_errors,omitempty"`
}

// MarshalJSON encodes the record with a variant discriminator for Meta.
func (r MediaRecord) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		Path:           r.Path,
		Name:           r.Name,
		NameWithoutExt: r.NameWithoutExt,
		Extension:      r.Extension,
		SizeBytes:      r.SizeBytes,
		ModifiedAt:     r.ModifiedAt,
		Kind:           r.Kind,
		Sidecars:       r.Sidecars,
		TextSources:    r.TextSources,
		TotalTextSize:  r.TotalTextSize,
		TextErrors:     r.TextErrors,
	}
	if r.Meta != nil {
		raw, err := json.Marshal(r.Meta)
		if err != nil {
			return nil, fmt.Errorf("marshal %s meta: %w", r.Meta.Variant(), err)
		}
		out.MetaVariant = r.Meta.Variant()
		out.Meta = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a record, restoring the Meta variant.
func (r *MediaRecord) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = MediaRecord{
		Path:           in.Path,
		Name:           in.Name,
		NameWithoutExt: in.NameWithoutExt,
		Extension:      in.Extension,
		SizeBytes:      in.SizeBytes,
		ModifiedAt:     in.ModifiedAt,
		Kind:           in.Kind,
		Sidecars:       in.Sidecars,
		TextSources:    in.TextSources,
		TotalTextSize:  in.TotalTextSize,
		TextErrors:     in.TextErrors,
	}
	if r.Sidecars == nil {
		r.Sidecars = map[string]SidecarRef{}
	}
	if len(in.Meta) == 0 || string(in.Meta) == "null" {
		return nil
	}
	variant := in.MetaVariant
	if variant == "" {
		variant = defaultVariant(in.Kind)
	}
	meta, ok := NewMetaForVariant(variant)
	if !ok {
		return fmt.Errorf("%w: unknown meta variant %q", ErrInvalidInput, variant)
	}
	if err := json.Unmarshal(in.Meta, meta); err != nil {
		return fmt.Errorf("unmarshal %s meta: %w", variant, err)
	}
	r.Meta = meta
	return nil
}

func defaultVariant(k Kind) MetaVariant {
	switch k {
	case KindVideo:
		return VariantVideoAudio
	case KindAudio:
		return VariantAudio
	case KindImage:
		return VariantImage
	case KindArchive:
		return VariantArchive
	default:
		return ""
	}
}
