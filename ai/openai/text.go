package openai

import (
	"strconv"
	"strings"
)

// cleanCompletion trims whitespace and a surrounding markdown fence from a
// model completion.
func cleanCompletion(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") && strings.HasSuffix(s, "```") && len(s) >= 6 {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimPrefix(s, "```")
		// drop a language tag on the opening fence
		if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.ContainsAny(s[:i], " \t") {
			s = s[i+1:]
		}
	}
	return strings.TrimSpace(s)
}

// rankerInput lays out one query and passage pair for the ranker model.
func rankerInput(query, passage string) string {
	return "Query: " + strings.TrimSpace(query) + "\n\nPassage: " + strings.TrimSpace(passage)
}

// parseRelevance reads the first number in reply and scales it from
// [0,scale] to [0,1], clamping out of range values. It reports false when
// reply holds no number.
func parseRelevance(reply string, scale float64) (float64, bool) {
	start := strings.IndexFunc(reply, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(reply) && (reply[end] >= '0' && reply[end] <= '9' || reply[end] == '.') {
		end++
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(reply[start:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return min(max(value/scale, 0), 1), true
}
