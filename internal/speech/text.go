package speech

import (
	"regexp"
	"strings"
)

var (
	decimalPattern  = regexp.MustCompile(`(\d+)\.(\d+)`)
	useWordPattern  = regexp.MustCompile(`(?i)\buse\b`)
	multiSpaceRegex = regexp.MustCompile(`\s+`)
)

// normalizeForSynthesis rewrites raw text so the voice engine pronounces it
// naturally. Applied only to what is synthesized; stored and displayed text
// is never touched.
//
// Decimal numbers are rewritten so the fractional part is spoken digit by
// digit ("2.5" reads as "2 point 5", not "two point fifty"). The word "use"
// is respelled because the target engines otherwise pronounce it like the
// noun.
func normalizeForSynthesis(raw string) string {
	out := decimalPattern.ReplaceAllStringFunc(raw, func(m string) string {
		parts := strings.SplitN(m, ".", 2)
		return parts[0] + " point " + spellDigits(parts[1])
	})
	out = useWordPattern.ReplaceAllString(out, "yuuzh")
	out = multiSpaceRegex.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func spellDigits(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
