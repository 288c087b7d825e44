package audio

import (
	"fmt"
	"strconv"

	"github.com/dhowden/tag"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// Tag aliases per field, in lookup order. ID3v2.3/2.4, ID3v2.2, Vorbis and
// APE-style names, then MP4 atoms (raw 0xA9 byte and UTF-8 forms).
var (
	titleKeys  = []string{"TIT2", "TT2", "Title", "TITLE", "title", "\xa9nam", "©nam"}
	artistKeys = []string{"TPE1", "TP1", "Artist", "ARTIST", "artist", "\xa9ART", "©ART"}
	albumKeys  = []string{"TALB", "TAL", "Album", "ALBUM", "album", "\xa9alb", "©alb"}
	dateKeys   = []string{"TDRC", "TYER", "TYE", "Date", "DATE", "date", "\xa9day", "©day"}
	genreKeys  = []string{"TCON", "TCO", "Genre", "GENRE", "genre", "\xa9gen", "©gen"}
)

// ReadTags maps a tag reader result onto MediaTags.
func ReadTags(md tag.Metadata) domain.MediaTags {
	raw := md.Raw()
	tags := domain.MediaTags{
		Title:  FirstTag(raw, titleKeys),
		Artist: FirstTag(raw, artistKeys),
		Album:  FirstTag(raw, albumKeys),
		Date:   FirstTag(raw, dateKeys),
		Genre:  FirstTag(raw, genreKeys),
	}
	if tags.Title == "" {
		tags.Title = md.Title()
	}
	if tags.Artist == "" {
		tags.Artist = md.Artist()
	}
	if tags.Album == "" {
		tags.Album = md.Album()
	}
	if tags.Genre == "" {
		tags.Genre = md.Genre()
	}
	if tags.Date == "" && md.Year() > 0 {
		tags.Date = strconv.Itoa(md.Year())
	}
	return tags
}

// FirstTag returns the first alias present in raw, stringified. List
// values use their first element.
func FirstTag(raw map[string]interface{}, aliases []string) string {
	for _, key := range aliases {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s := stringify(v); s != "" {
			return s
		}
	}
	return ""
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []string:
		if len(t) == 0 {
			return ""
		}
		return t[0]
	case []interface{}:
		if len(t) == 0 {
			return ""
		}
		return stringify(t[0])
	case *tag.Comm:
		return t.Text
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
