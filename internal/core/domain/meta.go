package domain

// MetaVariant names a KindMeta implementation.
type MetaVariant string

// Metadata variants.
const (
	VariantVideoAudio MetaVariant = "video_audio"
	VariantImage      MetaVariant = "image"
	VariantAudio      MetaVariant = "audio"
	VariantArchive    MetaVariant = "archive"
)

// KindMeta is the closed set of kind-specific metadata fragments.
// Only types in this package implement it.
type KindMeta interface {
	// Variant identifies the concrete fragment type.
	Variant() MetaVariant

	// Status reports probe availability and any extraction error.
	Status() ProbeStatus

	sealed()
}

// MetaMatchesKind reports whether a fragment may be attached to a record
// of the given kind. Audio records also accept the probe variant produced
// by the tag-reader fallback.
func MetaMatchesKind(m KindMeta, k Kind) bool {
	switch m.Variant() {
	case VariantVideoAudio:
		return k == KindVideo || k == KindAudio
	case VariantImage:
		return k == KindImage
	case VariantAudio:
		return k == KindAudio
	case VariantArchive:
		return k == KindArchive
	default:
		return false
	}
}

// ProbeStatus is the normalised outcome of a probing mechanism.
type ProbeStatus struct {
	// Available is true when the underlying tool or library could run.
	Available bool `json:"available"`

	// Error is empty on success.
	Error string `json:"error,omitempty"`
}

// OK reports whether the fragment carries usable fields.
func (s ProbeStatus) OK() bool {
	return s.Available && s.Error == ""
}

// MediaTags are the common container tags.
type MediaTags struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Date   string `json:"date,omitempty"`
	Genre  string `json:"genre,omitempty"`
}

// VideoStream describes the first video stream of a container.
type VideoStream struct {
	Codec   string   `json:"codec,omitempty"`
	Width   *int     `json:"width"`
	Height  *int     `json:"height"`
	FPS     *float64 `json:"fps"`
	Bitrate *int64   `json:"bitrate"`
}

// Resolution returns "WxH" or "" when either dimension is unknown.
func (v *VideoStream) Resolution() string {
	if v == nil || v.Width == nil || v.Height == nil {
		return ""
	}
	return FormatResolution(*v.Width, *v.Height)
}

// AudioStream describes one audio stream of a container.
type AudioStream struct {
	Codec      string `json:"codec,omitempty"`
	SampleRate *int   `json:"sample_rate"`
	Channels   *int   `json:"channels"`
	Bitrate    *int64 `json:"bitrate"`
	Language   string `json:"language,omitempty"`
}

// VideoAudioMeta is the container probe result for video and audio files.
type VideoAudioMeta struct {
	ProbeStatus

	DurationSec *float64      `json:"duration_sec"`
	Tags        MediaTags     `json:"tags"`
	Video       *VideoStream  `json:"video"`
	Audio       []AudioStream `json:"audio"`
}

// Variant implements KindMeta.
func (*VideoAudioMeta) Variant() MetaVariant { return VariantVideoAudio }

// Status implements KindMeta.
func (m *VideoAudioMeta) Status() ProbeStatus { return m.ProbeStatus }

func (*VideoAudioMeta) sealed() {}

// ImageMeta is the header and EXIF summary of an image.
type ImageMeta struct {
	ProbeStatus

	Format string            `json:"format,omitempty"`
	Width  *int              `json:"width"`
	Height *int              `json:"height"`
	Mode   string            `json:"mode,omitempty"`
	EXIF   map[string]string `json:"exif,omitempty"`

	// Warnings records metadata that was present but skipped.
	Warnings []string `json:"warnings,omitempty"`
}

// Resolution returns "WxH" or "" when either dimension is unknown.
func (m *ImageMeta) Resolution() string {
	if m.Width == nil || m.Height == nil {
		return ""
	}
	return FormatResolution(*m.Width, *m.Height)
}

// Variant implements KindMeta.
func (*ImageMeta) Variant() MetaVariant { return VariantImage }

// Status implements KindMeta.
func (m *ImageMeta) Status() ProbeStatus { return m.ProbeStatus }

func (*ImageMeta) sealed() {}

// EXIFFields is the whitelist of EXIF tags kept on ImageMeta.
var EXIFFields = []string{
	"DateTime", "DateTimeOriginal", "Model", "Make", "Orientation", "GPSInfo", "Software",
}

// AudioInfo is stream-level information for a tagged audio file.
type AudioInfo struct {
	DurationSec *float64 `json:"duration_sec"`
	Bitrate     *int64   `json:"bitrate"`
	SampleRate  *int     `json:"sample_rate"`
	Channels    *int     `json:"channels"`
}

// AudioMeta is the tag-reader result for audio files.
type AudioMeta struct {
	ProbeStatus

	Tags MediaTags `json:"tags"`
	Info AudioInfo `json:"info"`
}

// Variant implements KindMeta.
func (*AudioMeta) Variant() MetaVariant { return VariantAudio }

// Status implements KindMeta.
func (m *AudioMeta) Status() ProbeStatus { return m.ProbeStatus }

func (*AudioMeta) sealed() {}

// ArchiveEntry is one listed member of an archive.
type ArchiveEntry struct {
	Name           string `json:"name"`
	Size           int64  `json:"size"`
	IsDir          bool   `json:"is_dir"`
	CompressedSize *int64 `json:"compressed_size,omitempty"`
	Warning        string `json:"warning,omitempty"`
}

// ArchiveMeta is the listing of an archive.
type ArchiveMeta struct {
	ProbeStatus

	Format     string         `json:"format,omitempty"`
	EntryCount int            `json:"entry_count"`
	Entries    []ArchiveEntry `json:"entries"`
	Warnings   []string       `json:"warnings,omitempty"`
	Truncated  bool           `json:"truncated,omitempty"`
	Info       string         `json:"info,omitempty"`
}

// Variant implements KindMeta.
func (*ArchiveMeta) Variant() MetaVariant { return VariantArchive }

// Status implements KindMeta.
func (m *ArchiveMeta) Status() ProbeStatus { return m.ProbeStatus }

func (*ArchiveMeta) sealed() {}

// NewMetaForVariant returns an empty fragment for a variant name.
func NewMetaForVariant(v MetaVariant) (KindMeta, bool) {
	switch v {
	case VariantVideoAudio:
		return &VideoAudioMeta{}, true
	case VariantImage:
		return &ImageMeta{}, true
	case VariantAudio:
		return &AudioMeta{}, true
	case VariantArchive:
		return &ArchiveMeta{}, true
	default:
		return nil, false
	}
}
