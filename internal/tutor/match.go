package tutor

import (
	"regexp"
	"strings"
)

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

func normalizeUtterance(s string) string {
	s = punctuation.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// matchChoice resolves a spoken or typed utterance against the current
// multiple-choice options by case-insensitive substring containment after
// stripping punctuation. "B" matches "B) dog"; "the answer is b dog" matches
// too. First match wins.
func matchChoice(utterance string, choices []string) (int, bool) {
	norm := normalizeUtterance(utterance)
	if norm == "" {
		return 0, false
	}
	for i, choice := range choices {
		cn := normalizeUtterance(choice)
		if cn == "" {
			continue
		}
		if strings.Contains(cn, norm) || strings.Contains(norm, cn) {
			return i, true
		}
	}
	return 0, false
}
