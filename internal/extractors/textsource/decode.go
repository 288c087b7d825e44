package textsource

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
)

// Encoding names, in default trial order.
const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-sig"
	EncodingSJIS    = "shift_jis"
	EncodingCP1252  = "cp1252"
	EncodingLatin1  = "latin-1"
)

// DefaultEncodings is the UTF-8 family followed by common legacy encodings.
var DefaultEncodings = []string{EncodingUTF8BOM, EncodingUTF8, EncodingSJIS, EncodingCP1252, EncodingLatin1}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var legacy = map[string]encoding.Encoding{
	EncodingSJIS:   japanese.ShiftJIS,
	EncodingCP1252: charmap.Windows1252,
	EncodingLatin1: charmap.ISO8859_1,
}

// decode tries each encoding in order and returns the text and the name
// of the encoding that produced it. ok is false when all fail.
func decode(data []byte, encodings []string) (text, name string, ok bool) {
	for _, enc := range encodings {
		switch enc {
		case EncodingUTF8BOM:
			if bytes.HasPrefix(data, utf8BOM) && utf8.Valid(data[len(utf8BOM):]) {
				return string(data[len(utf8BOM):]), enc, true
			}
		case EncodingUTF8:
			if utf8.Valid(data) {
				return string(data), enc, true
			}
		default:
			codec, known := legacy[enc]
			if !known {
				continue
			}
			out, err := codec.NewDecoder().Bytes(data)
			if err != nil {
				continue
			}
			// Decoders substitute U+FFFD for invalid input rather than failing.
			if bytes.ContainsRune(out, utf8.RuneError) {
				continue
			}
			return string(out), enc, true
		}
	}
	return "", "", false
}

// decodeReplacing decodes as UTF-8, replacing invalid sequences.
func decodeReplacing(data []byte) string {
	return strings.ToValidUTF8(string(bytes.TrimPrefix(data, utf8BOM)), "\uFFFD")
}
