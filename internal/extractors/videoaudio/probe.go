package videoaudio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/mediascope/internal/core/domain"
)

// number accepts JSON numbers and numeric strings. Anything else leaves
// it unset rather than failing the whole document.
type number struct {
	val   float64
	valid bool
}

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	s := string(data)
	if s[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n.val, n.valid = v, true
	return nil
}

func (n number) float() *float64 {
	if !n.valid {
		return nil
	}
	return domain.Ptr(n.val)
}

func (n number) int() *int {
	if !n.valid {
		return nil
	}
	return domain.Ptr(int(n.val))
}

func (n number) int64() *int64 {
	if !n.valid {
		return nil
	}
	return domain.Ptr(int64(n.val))
}

type probeStream struct {
	CodecType  string            `json:"codec_type"`
	CodecName  string            `json:"codec_name"`
	Width      number            `json:"width"`
	Height     number            `json:"height"`
	RFrameRate string            `json:"r_frame_rate"`
	BitRate    number            `json:"bit_rate"`
	SampleRate number            `json:"sample_rate"`
	Channels   number            `json:"channels"`
	Tags       map[string]string `json:"tags"`
}

type probeFormat struct {
	FormatName string            `json:"format_name"`
	Duration   number            `json:"duration"`
	BitRate    number            `json:"bit_rate"`
	Tags       map[string]string `json:"tags"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// ParseProbe converts `ffprobe -print_format json -show_format -show_streams`
// output into a fragment. Malformed numeric fields become nil.
func ParseProbe(data []byte) (*domain.VideoAudioMeta, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}

	meta := &domain.VideoAudioMeta{
		ProbeStatus: domain.ProbeStatus{Available: true},
		DurationSec: out.Format.Duration.float(),
		Tags: domain.MediaTags{
			Title:  tag(out.Format.Tags, "title"),
			Artist: tag(out.Format.Tags, "artist"),
			Album:  tag(out.Format.Tags, "album"),
			Date:   tag(out.Format.Tags, "date"),
		},
		Audio: []domain.AudioStream{},
	}

	for i := range out.Streams {
		s := &out.Streams[i]
		switch s.CodecType {
		case "video":
			if meta.Video != nil {
				continue
			}
			meta.Video = &domain.VideoStream{
				Codec:   s.CodecName,
				Width:   s.Width.int(),
				Height:  s.Height.int(),
				FPS:     ParseFrameRate(s.RFrameRate),
				Bitrate: s.BitRate.int64(),
			}
		case "audio":
			meta.Audio = append(meta.Audio, domain.AudioStream{
				Codec:      s.CodecName,
				SampleRate: s.SampleRate.int(),
				Channels:   s.Channels.int(),
				Bitrate:    s.BitRate.int64(),
				Language:   tag(s.Tags, "language"),
			})
		}
	}
	return meta, nil
}

// FormatInfo holds the container-level numbers of a probe.
type FormatInfo struct {
	DurationSec *float64
	Bitrate     *int64
}

// ParseFormat extracts container-level duration and bitrate.
func ParseFormat(data []byte) (FormatInfo, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return FormatInfo{}, fmt.Errorf("JSON parse error: %w", err)
	}
	return FormatInfo{
		DurationSec: out.Format.Duration.float(),
		Bitrate:     out.Format.BitRate.int64(),
	}, nil
}

// ParseFrameRate parses an "n/d" rate. A zero denominator or malformed
// input yields nil.
func ParseFrameRate(s string) *float64 {
	num, den, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		v, err := strconv.ParseFloat(num, 64)
		if err != nil || v <= 0 {
			return nil
		}
		return domain.Ptr(v)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return nil
	}
	return domain.Ptr(n / d)
}

// tag looks a key up case-insensitively; containers disagree on case.
func tag(tags map[string]string, key string) string {
	if v, ok := tags[key]; ok {
		return v
	}
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}
