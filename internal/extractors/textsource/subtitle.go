package textsource

import (
	"strings"
)

// assTextField is the zero-based index of the Text field in an ASS
// Dialogue event.
const assTextField = 9

// SubtitleText returns the readable text of a subtitle file and its line
// count. SRT and VTT are returned verbatim; ASS keeps only the dialogue
// text of the [Events] section.
func SubtitleText(text, ext string) (string, int) {
	if strings.EqualFold(ext, ".ass") {
		lines := assDialogue(text)
		return strings.Join(lines, "\n"), len(lines)
	}
	return text, strings.Count(text, "\n")
}

func assDialogue(text string) []string {
	var out []string
	inEvents := false
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			inEvents = strings.EqualFold(trimmed, "[Events]")
			continue
		}
		if !inEvents || !strings.HasPrefix(line, "Dialogue:") {
			continue
		}
		parts := strings.SplitN(line, ",", assTextField+1)
		if len(parts) <= assTextField {
			continue
		}
		out = append(out, strings.TrimSpace(parts[assTextField]))
	}
	return out
}
