package chunker

import "unicode"

// span is a half-open rune range of the input.
type span struct {
	start, end int
}

func isTerminator(r rune) bool {
	switch r {
	case '。', '！', '？', '.', '!', '?':
		return true
	}
	return false
}

// splitSentences cuts at sentence terminators (kept with the sentence) and
// at newlines. Whitespace-only pieces are dropped.
func splitSentences(runes []rune) []span {
	var out []span
	start := 0
	emit := func(end int) {
		if !blank(runes[start:end]) {
			out = append(out, span{start, end})
		}
		start = end
	}
	for i, r := range runes {
		if isTerminator(r) || r == '\n' {
			emit(i + 1)
		}
	}
	if start < len(runes) {
		emit(len(runes))
	}
	return out
}

func blank(rs []rune) bool {
	for _, r := range rs {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
