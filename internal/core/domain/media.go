package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Kind classifies a scanned file by media family.
type Kind string

// Supported media kinds.
const (
	KindVideo   Kind = "video"
	KindAudio   Kind = "audio"
	KindImage   Kind = "image"
	KindArchive Kind = "archive"
	KindUnknown Kind = "unknown"
)

// IsValid returns true if the kind is recognised.
func (k Kind) IsValid() bool {
	switch k {
	case KindVideo, KindAudio, KindImage, KindArchive, KindUnknown:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// ExtensionMap maps a lower-case extension (with leading dot) to a kind.
type ExtensionMap map[string]Kind

// DefaultExtensionMap returns the built-in extension classification.
func DefaultExtensionMap() ExtensionMap {
	return NewExtensionMap(DefaultExtensions())
}

// NewExtensionMap builds a classification from extensions grouped by kind.
// Extensions are lower-cased and given a leading dot when missing.
func NewExtensionMap(byKind map[Kind][]string) ExtensionMap {
	m := ExtensionMap{}
	for kind, exts := range byKind {
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			m[ext] = kind
		}
	}
	return m
}

// DefaultExtensions returns the built-in extensions grouped by kind.
func DefaultExtensions() map[Kind][]string {
	return map[Kind][]string{
		KindVideo:   {".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpg", ".mpeg", ".ts"},
		KindAudio:   {".mp3", ".flac", ".wav", ".aac", ".ogg", ".m4a", ".wma", ".opus"},
		KindImage:   {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".tif", ".webp", ".heic"},
		KindArchive: {".zip", ".tar", ".gz", ".tgz", ".7z", ".rar"},
	}
}

// KindFor classifies an extension. Unknown extensions yield KindUnknown.
func (m ExtensionMap) KindFor(ext string) Kind {
	if k, ok := m[strings.ToLower(ext)]; ok {
		return k
	}
	return KindUnknown
}

// ByKind groups the mapped extensions by kind, each list sorted.
func (m ExtensionMap) ByKind() map[Kind][]string {
	out := make(map[Kind][]string)
	for ext, kind := range m {
		out[kind] = append(out[kind], ext)
	}
	for _, exts := range out {
		sort.Strings(exts)
	}
	return out
}

// SidecarType is the provenance tag of a same-stem companion file.
type SidecarType string

// Sidecar types.
const (
	SidecarSubtitle SidecarType = "subtitle"
	SidecarNote     SidecarType = "note"
	SidecarMeta     SidecarType = "meta"
)

// SidecarTypes lists sidecar types in lookup order.
var SidecarTypes = []SidecarType{SidecarSubtitle, SidecarNote, SidecarMeta}

// SidecarExtensions returns the extensions recognised for a sidecar type.
func SidecarExtensions(t SidecarType) []string {
	switch t {
	case SidecarSubtitle:
		return []string{".srt", ".vtt", ".ass"}
	case SidecarNote:
		return []string{".txt", ".md"}
	case SidecarMeta:
		return []string{".nfo", ".json", ".xml"}
	default:
		return nil
	}
}

// SidecarTypeFor returns the sidecar type of an extension, matched
// case-insensitively.
func SidecarTypeFor(ext string) (SidecarType, bool) {
	ext = strings.ToLower(ext)
	for _, t := range SidecarTypes {
		for _, e := range SidecarExtensions(t) {
			if e == ext {
				return t, true
			}
		}
	}
	return "", false
}

// SidecarRef describes a sidecar file found next to a media file.
type SidecarRef struct {
	// Path is the absolute sidecar path.
	Path string `json:"path"`

	// Size is the sidecar size in bytes.
	Size int64 `json:"size"`

	// Type is the sidecar kind.
	Type SidecarType `json:"type"`
}

// SidecarKey returns the map key for a sidecar, e.g. "subtitle.srt".
func SidecarKey(t SidecarType, ext string) string {
	return string(t) + strings.ToLower(ext)
}

// MediaRecord is one scanned file. Path is the unique key; re-scanning
// the same path replaces the record.
type MediaRecord struct {
	// Path is the absolute path.
	Path string

	// Name is the base name including extension.
	Name string

	// NameWithoutExt is the base name stem.
	NameWithoutExt string

	// Extension is the lower-case extension with leading dot.
	Extension string

	// SizeBytes is the file size.
	SizeBytes int64

	// ModifiedAt is the file modification time.
	ModifiedAt time.Time

	// Kind is the media family.
	Kind Kind

	// Sidecars maps "<type><ext>" to the sidecar descriptor.
	Sidecars map[string]SidecarRef

	// Meta is the kind-specific metadata fragment. May be nil.
	Meta KindMeta

	// TextSources are the sidecar texts in discovery order.
	TextSources []TextSource

	// TotalTextSize is the full decoded length of all text sources.
	TotalTextSize int

	// TextErrors records sidecars that could not be read.
	TextErrors []string
}

// NewMediaRecord builds a record from stat information.
func NewMediaRecord(path string, size int64, modTime time.Time, kind Kind) MediaRecord {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	return MediaRecord{
		Path:           path,
		Name:           name,
		NameWithoutExt: strings.TrimSuffix(name, filepath.Ext(name)),
		Extension:      ext,
		SizeBytes:      size,
		ModifiedAt:     modTime,
		Kind:           kind,
		Sidecars:       map[string]SidecarRef{},
	}
}

// Validate checks the record invariants.
func (r *MediaRecord) Validate() error {
	if r.Path == "" {
		return fmt.Errorf("%w: record without path", ErrInvalidInput)
	}
	if r.SizeBytes < 0 {
		return fmt.Errorf("%w: negative size for %s", ErrInvalidInput, r.Path)
	}
	if r.ModifiedAt.IsZero() {
		return fmt.Errorf("%w: record without mtime: %s", ErrInvalidInput, r.Path)
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, r.Kind)
	}
	if r.Meta != nil && !MetaMatchesKind(r.Meta, r.Kind) {
		return fmt.Errorf("%w: %s metadata on %s record", ErrInvalidInput, r.Meta.Variant(), r.Kind)
	}
	return nil
}

// TextSourceTypes returns the sorted, de-duplicated sidecar types that
// contributed text.
func (r *MediaRecord) TextSourceTypes() []string {
	seen := make(map[string]bool, len(r.TextSources))
	var out []string
	for i := range r.TextSources {
		st := string(r.TextSources[i].SourceType)
		if st == "" || seen[st] {
			continue
		}
		seen[st] = true
		out = append(out, st)
	}
	sort.Strings(out)
	return out
}
