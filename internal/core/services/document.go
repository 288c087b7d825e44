package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// documentSeparator joins the parts of a search document.
const documentSeparator = " | "

// maxListedEntries is the number of archive entry names written into a document.
const maxListedEntries = 10

// mediaNamespace scopes document ids derived from file paths.
var mediaNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mediascope:media"))

// DocumentID returns the stable store id for a media path.
// Re-indexing the same path yields the same id.
func DocumentID(path string) string {
	return "media_" + uuid.NewSHA1(mediaNamespace, []byte(path)).String()
}

// ChunkDocumentID returns the store id of the n-th sidecar chunk of a sidecar file.
func ChunkDocumentID(sidecarPath string, n int) string {
	return DocumentID(sidecarPath) + "_chunk_" + strconv.Itoa(n)
}

// BuildDocument flattens a record into its search text. Field order is
// fixed and absent fields are omitted, so equal records give equal output.
func BuildDocument(r *domain.MediaRecord) string {
	parts := []string{
		"type: " + r.Kind.String(),
		"name: " + r.Name,
		"path: " + r.Path,
		fmt.Sprintf("size: %d bytes", r.SizeBytes),
	}

	switch r.Kind {
	case domain.KindVideo:
		if m, ok := r.Meta.(*domain.VideoAudioMeta); ok {
			parts = append(parts, videoParts(m)...)
		}
	case domain.KindImage:
		if m, ok := r.Meta.(*domain.ImageMeta); ok {
			parts = append(parts, imageParts(m)...)
		}
	case domain.KindAudio:
		parts = append(parts, audioParts(r.Meta)...)
	case domain.KindArchive:
		if m, ok := r.Meta.(*domain.ArchiveMeta); ok {
			parts = append(parts, archiveParts(m)...)
		}
	}

	if types := r.TextSourceTypes(); len(types) > 0 {
		parts = append(parts, "has_text: "+strings.Join(types, ", "))
	}
	return strings.Join(parts, documentSeparator)
}

func videoParts(m *domain.VideoAudioMeta) []string {
	var parts []string
	if m.DurationSec != nil {
		parts = append(parts, "duration: "+domain.FormatSeconds(*m.DurationSec)+" seconds")
	}
	if v := m.Video; v != nil {
		if res := v.Resolution(); res != "" {
			parts = append(parts, "resolution: "+res)
		}
		if v.FPS != nil {
			parts = append(parts, "fps: "+domain.FormatSeconds(*v.FPS))
		}
		if v.Codec != "" {
			parts = append(parts, "codec: "+v.Codec)
		}
	}
	return appendTag(appendTag(parts, "title", m.Tags.Title), "artist", m.Tags.Artist)
}

func imageParts(m *domain.ImageMeta) []string {
	var parts []string
	if res := m.Resolution(); res != "" {
		parts = append(parts, "resolution: "+res)
	}
	if m.Format != "" {
		parts = append(parts, "format: "+m.Format)
	}
	if d := m.EXIF["DateTime"]; d != "" {
		parts = append(parts, "date: "+d)
	}
	if c := m.EXIF["Model"]; c != "" {
		parts = append(parts, "camera: "+c)
	}
	return parts
}

func audioParts(meta domain.KindMeta) []string {
	duration, tags, ok := audioFields(meta)
	if !ok {
		return nil
	}
	var parts []string
	if duration != nil {
		parts = append(parts, "duration: "+domain.FormatSeconds(*duration)+" seconds")
	}
	parts = appendTag(parts, "title", tags.Title)
	parts = appendTag(parts, "artist", tags.Artist)
	return appendTag(parts, "album", tags.Album)
}

func archiveParts(m *domain.ArchiveMeta) []string {
	parts := []string{fmt.Sprintf("contains: %d items", m.EntryCount)}
	if len(m.Entries) > 0 {
		n := min(len(m.Entries), maxListedEntries)
		names := make([]string, n)
		for i := range n {
			names[i] = m.Entries[i].Name
		}
		parts = append(parts, "entries: "+strings.Join(names, ", "))
	}
	return parts
}

// audioFields reads duration and tags from either audio variant.
func audioFields(meta domain.KindMeta) (*float64, domain.MediaTags, bool) {
	switch m := meta.(type) {
	case *domain.AudioMeta:
		return m.Info.DurationSec, m.Tags, true
	case *domain.VideoAudioMeta:
		return m.DurationSec, m.Tags, true
	default:
		return nil, domain.MediaTags{}, false
	}
}

func appendTag(parts []string, key, value string) []string {
	if value == "" {
		return parts
	}
	return append(parts, key+": "+value)
}

// BuildMetadata flattens a record into string-typed store metadata.
func BuildMetadata(r *domain.MediaRecord) map[string]string {
	md := map[string]string{
		domain.MetaKeyKind:       r.Kind.String(),
		domain.MetaKeyPath:       r.Path,
		domain.MetaKeySize:       strconv.FormatInt(r.SizeBytes, 10),
		domain.MetaKeyMTime:      r.ModifiedAt.UTC().Format(time.RFC3339),
		domain.MetaKeySourceType: domain.SourceTypeMetadata,
	}
	set := func(key, value string) {
		if value != "" {
			md[key] = value
		}
	}

	switch r.Kind {
	case domain.KindVideo:
		if m, ok := r.Meta.(*domain.VideoAudioMeta); ok {
			set(domain.MetaKeyResolution, m.Video.Resolution())
			if m.DurationSec != nil {
				set(domain.MetaKeyDuration, domain.FormatSeconds(*m.DurationSec))
			}
			set(domain.MetaKeyTitle, m.Tags.Title)
			set(domain.MetaKeyArtist, m.Tags.Artist)
			set(domain.MetaKeyAlbum, m.Tags.Album)
		}
	case domain.KindImage:
		if m, ok := r.Meta.(*domain.ImageMeta); ok {
			set(domain.MetaKeyResolution, m.Resolution())
			set(domain.MetaKeyFormat, m.Format)
		}
	case domain.KindAudio:
		if duration, tags, ok := audioFields(r.Meta); ok {
			if duration != nil {
				set(domain.MetaKeyDuration, domain.FormatSeconds(*duration))
			}
			set(domain.MetaKeyTitle, tags.Title)
			set(domain.MetaKeyArtist, tags.Artist)
			set(domain.MetaKeyAlbum, tags.Album)
		}
	case domain.KindArchive:
		if m, ok := r.Meta.(*domain.ArchiveMeta); ok {
			set(domain.MetaKeyEntries, strconv.Itoa(m.EntryCount))
			set(domain.MetaKeyFormat, m.Format)
		}
	}

	set(domain.MetaKeyHasText, strings.Join(r.TextSourceTypes(), ","))
	return md
}

// BuildIndexDocument builds the store document for a record.
func BuildIndexDocument(r *domain.MediaRecord) (domain.IndexDocument, error) {
	if err := r.Validate(); err != nil {
		return domain.IndexDocument{}, err
	}
	return domain.IndexDocument{
		ID:       DocumentID(r.Path),
		Document: BuildDocument(r),
		Metadata: BuildMetadata(r),
	}, nil
}
