package routing

import (
	"strings"
	"unicode"
)

// NormalizeKeyword lowercases and trims a configured rule keyword.
func NormalizeKeyword(kw string) string {
	return strings.ToLower(strings.TrimSpace(kw))
}

// Keywords tokenizes free-form input into a normalized keyword set. Tokens
// are runs of letters and digits; everything else separates.
func Keywords(input string) []string {
	fields := strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	var out []string
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

// keywordSet builds a lookup set from already-extracted keywords, applying
// the same normalization as NormalizeKeyword.
func keywordSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		if n := NormalizeKeyword(kw); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}
