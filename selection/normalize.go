package selection

import (
	"regexp"
	"strings"
)

// noise matches text that highlighting should not try to locate: email
// addresses, URLs, runs of spaced single characters and citation markers.
var noise = []*regexp.Regexp{
	regexp.MustCompile(`\w+@\w+(\.[a-z]{2,})+`),
	regexp.MustCompile(`http(s)?:\/\/\S+`),
	regexp.MustCompile(`(^|\s)(\w\s+){3,}`),
	regexp.MustCompile(`(\[\d+\],?\s?){3,}(\.|,)?`),
	regexp.MustCompile(`\[[\d,\s]+\]`),
	regexp.MustCompile(`(\(\d+\)\s){3,}`),
}

var (
	repeatedSpaceOrDots = regexp.MustCompile(` {2,}|\.{2,}`)
	nonAlphanumeric     = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// NormalizeForMatch reduces text to its ASCII letters and digits after
// dropping noise, so a unit can be found again in rendered text regardless
// of spacing and punctuation.
func NormalizeForMatch(text string) string {
	for _, re := range noise {
		text = re.ReplaceAllString(text, " ")
	}
	text = repeatedSpaceOrDots.ReplaceAllString(text, " ")
	return nonAlphanumeric.ReplaceAllString(strings.TrimSpace(text), "")
}
