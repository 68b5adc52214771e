package segment

import (
	"regexp"
	"strings"
	"unicode"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t\r\f\v]*\n`)

// splitWords splits text on single spaces with no further normalization.
// Consecutive spaces yield empty units; span content is keyed on them.
func splitWords(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, " ")
}

// splitParagraphs splits text on blank lines and trims each paragraph.
func splitParagraphs(text string) []string {
	var out []string
	for _, p := range paragraphBreak.Split(text, -1) {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSentences breaks text after '.', '!' or '?' (and any closing quotes or
// brackets) when followed by whitespace, and at paragraph breaks. Trailing
// text without terminal punctuation forms its own sentence.
func splitSentences(text string) []string {
	var out []string
	for _, para := range splitParagraphs(text) {
		runes := []rune(para)
		start := 0
		for i := 0; i < len(runes); i++ {
			if !isTerminal(runes[i]) {
				continue
			}
			end := i + 1
			for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
				end++
			}
			if end < len(runes) && !unicode.IsSpace(runes[end]) {
				i = end - 1
				continue
			}
			if s := strings.TrimSpace(string(runes[start:end])); s != "" {
				out = append(out, collapseLines(s))
			}
			start = end
			i = end - 1
		}
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			out = append(out, collapseLines(s))
		}
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

// collapseLines replaces line breaks inside a sentence with spaces so that
// sentences joined with a space still read as prose.
func collapseLines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}

// normalizeWhitespace trims every line, collapses inner runs of whitespace
// and keeps blank lines as paragraph breaks.
func normalizeWhitespace(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if len(out) > 0 && !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
