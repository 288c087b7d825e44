package image

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

const (
	// maxTIFFBytes bounds how much of a TIFF file is buffered for EXIF.
	maxTIFFBytes = 16 << 20

	// maxIFDs bounds the directory chain of one TIFF block.
	maxIFDs = 16

	// maxIFDDepth bounds sub-directory nesting (Exif, GPS, Interop).
	maxIFDDepth = 3
)

var errNoEXIF = errors.New("no exif")

// exifFields are the string-valued fields copied from EXIF.
var exifFields = []exif.FieldName{exif.DateTime, exif.DateTimeOriginal, exif.Model, exif.Make, exif.Software}

// tiffTypeSizes maps TIFF field types to their element size in bytes.
var tiffTypeSizes = map[uint16]uint64{
	1: 1, 2: 1, 3: 2, 4: 4, 5: 8, 6: 1, 7: 1, 8: 2, 9: 4, 10: 8, 11: 4, 12: 8,
}

// subIFDTags point at nested directories decoded by the EXIF reader.
var subIFDTags = map[uint16]bool{0x8769: true, 0x8825: true, 0xA005: true}

// readEXIF returns the whitelisted EXIF fields and a warning when EXIF
// is present but malformed. Missing EXIF yields neither.
func readEXIF(f *os.File, format string) (map[string]string, string) {
	var (
		block []byte
		err   error
	)
	switch format {
	case "jpeg":
		block, err = jpegEXIF(f)
	case "tiff":
		block, err = tiffBytes(f)
	default:
		return nil, ""
	}
	if errors.Is(err, errNoEXIF) {
		return nil, ""
	}
	if err == nil {
		err = checkTIFF(block)
	}
	if err != nil {
		return nil, "EXIF skipped: " + err.Error()
	}

	out, err := decodeEXIF(block, format == "jpeg")
	if err != nil {
		return nil, "EXIF skipped: " + err.Error()
	}
	if len(out) == 0 {
		return nil, ""
	}
	return out, ""
}

// jpegEXIF returns the TIFF block of the first Exif APP1 segment.
func jpegEXIF(r io.ReadSeeker) ([]byte, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	var soi [2]byte
	if _, err := io.ReadFull(r, soi[:]); err != nil || soi != [2]byte{0xFF, 0xD8} {
		return nil, errNoEXIF
	}

	var hdr [4]byte
	for {
		if _, err := io.ReadFull(r, hdr[:2]); err != nil {
			return nil, errNoEXIF
		}
		if hdr[0] != 0xFF {
			return nil, errNoEXIF
		}
		marker := hdr[1]
		switch {
		case marker == 0xFF:
			// Fill byte; the marker follows.
			if _, err := r.Seek(-1, io.SeekCurrent); err != nil {
				return nil, errNoEXIF
			}
			continue
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			continue
		case marker == 0xDA || marker == 0xD9:
			return nil, errNoEXIF
		}

		if _, err := io.ReadFull(r, hdr[2:]); err != nil {
			return nil, errNoEXIF
		}
		length := int(binary.BigEndian.Uint16(hdr[2:]))
		if length < 2 {
			return nil, fmt.Errorf("bad segment length %d", length)
		}
		if marker != 0xE1 {
			if _, err := r.Seek(int64(length-2), io.SeekCurrent); err != nil {
				return nil, errNoEXIF
			}
			continue
		}

		seg := make([]byte, length-2)
		if _, err := io.ReadFull(r, seg); err != nil {
			return nil, fmt.Errorf("truncated APP1 segment")
		}
		if bytes.HasPrefix(seg, []byte("Exif\x00\x00")) {
			return seg[6:], nil
		}
	}
}

// tiffBytes buffers a whole TIFF file when it is small enough.
func tiffBytes(f *os.File) ([]byte, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.Size() > maxTIFFBytes {
		return nil, fmt.Errorf("file too large for EXIF read (%d bytes)", info.Size())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(io.LimitReader(f, maxTIFFBytes))
}

// ifdWalker checks that every directory entry of a TIFF block stays
// inside the block.
type ifdWalker struct {
	b    []byte
	bo   binary.ByteOrder
	seen map[uint64]bool
}

// checkTIFF validates the directory structure of a TIFF block so that no
// entry claims more data than the block holds.
func checkTIFF(b []byte) error {
	if len(b) < 8 {
		return errors.New("short TIFF header")
	}
	var bo binary.ByteOrder
	switch string(b[:2]) {
	case "II":
		bo = binary.LittleEndian
	case "MM":
		bo = binary.BigEndian
	default:
		return errors.New("bad byte order")
	}
	if bo.Uint16(b[2:]) != 42 {
		return errors.New("bad TIFF magic")
	}
	w := &ifdWalker{b: b, bo: bo, seen: map[uint64]bool{}}
	return w.chain(uint64(bo.Uint32(b[4:])))
}

func (w *ifdWalker) chain(off uint64) error {
	for n := 0; off != 0; n++ {
		if n >= maxIFDs {
			return errors.New("too many IFDs")
		}
		next, err := w.dir(off, 0)
		if err != nil {
			return err
		}
		off = next
	}
	return nil
}

// dir checks one directory and returns the offset of the next one.
func (w *ifdWalker) dir(off uint64, depth int) (uint64, error) {
	size := uint64(len(w.b))
	if w.seen[off] {
		return 0, fmt.Errorf("IFD loop at offset %d", off)
	}
	w.seen[off] = true
	if off+2 > size {
		return 0, fmt.Errorf("IFD offset %d out of range", off)
	}
	count := uint64(w.bo.Uint16(w.b[off:]))
	end := off + 2 + count*12
	if end+4 > size {
		return 0, fmt.Errorf("IFD at %d overruns block", off)
	}

	for i := uint64(0); i < count; i++ {
		e := w.b[off+2+i*12:]
		tag := w.bo.Uint16(e)
		n := uint64(w.bo.Uint32(e[4:]))
		if n > size {
			return 0, fmt.Errorf("tag 0x%04x count %d exceeds block", tag, n)
		}
		if elem, ok := tiffTypeSizes[w.bo.Uint16(e[2:])]; ok {
			if bytesLen := n * elem; bytesLen > 4 {
				valOff := uint64(w.bo.Uint32(e[8:]))
				if bytesLen > size || valOff+bytesLen > size {
					return 0, fmt.Errorf("tag 0x%04x value overruns block", tag)
				}
			}
		}
		if subIFDTags[tag] {
			if depth >= maxIFDDepth {
				return 0, errors.New("IFD nesting too deep")
			}
			if _, err := w.dir(uint64(w.bo.Uint32(e[8:])), depth+1); err != nil {
				return 0, err
			}
		}
	}
	return uint64(w.bo.Uint32(w.b[end:])), nil
}

// decodeEXIF parses a validated TIFF block. Decoder panics are reported
// as errors.
func decodeEXIF(block []byte, fromJPEG bool) (out map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()

	src := block
	if fromJPEG {
		src = wrapAPP1(block)
	}
	x, err := exif.Decode(bytes.NewReader(src))
	if err != nil {
		// Missing EXIF fields are reported as errors too; treat as absent.
		return nil, nil
	}

	out = make(map[string]string)
	for _, name := range exifFields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		if s, err := tag.StringVal(); err == nil {
			if s = strings.TrimSpace(strings.TrimRight(s, "\x00")); s != "" {
				out[string(name)] = s
			}
		}
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			out[string(exif.Orientation)] = strconv.Itoa(v)
		}
	}
	if lat, long, err := x.LatLong(); err == nil {
		out["GPSInfo"] = fmt.Sprintf("%.6f,%.6f", lat, long)
	}
	return out, nil
}

// wrapAPP1 rebuilds a minimal JPEG stream holding only the Exif segment.
func wrapAPP1(block []byte) []byte {
	payload := len(block) + 6 + 2
	out := make([]byte, 0, payload+6)
	out = append(out, 0xFF, 0xD8, 0xFF, 0xE1, byte(payload>>8), byte(payload))
	out = append(out, "Exif\x00\x00"...)
	out = append(out, block...)
	return append(out, 0xFF, 0xD9)
}
