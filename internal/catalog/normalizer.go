package catalog

import (
	"regexp"
	"strings"
)

// maxNormalizedRunes caps the stored comparison form. Catalog scrapes
// occasionally glue a paragraph of marketing copy onto a program title.
const maxNormalizedRunes = 120

var (
	parenthetical = regexp.MustCompile(`\([^)]*\)`)
	nonAlnum      = regexp.MustCompile(`[^a-z0-9 ]+`)
	multiSpace    = regexp.MustCompile(`\s+`)
)

// Normalize produces the canonical comparison form of a program or occupation
// name: lowercase, parenthetical qualifiers stripped, punctuation removed,
// whitespace collapsed, length capped. The result is for comparison only,
// never for display. Normalize is idempotent.
func Normalize(name string) string {
	s := strings.ToLower(name)
	s = parenthetical.ReplaceAllString(s, " ")
	s = nonAlnum.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) > maxNormalizedRunes {
		s = strings.TrimSpace(string(runes[:maxNormalizedRunes]))
	}
	return s
}

// FoldForTokens is the lighter canonical form used for keyword extraction.
// Unlike Normalize it keeps parenthetical content inline, because catalog
// names and regulatory occupation names often carry the acronym there
// ("Certified Nurse Aide (CNA) Training") and that acronym is exactly the
// token that matches catalog shorthand.
func FoldForTokens(name string) string {
	s := strings.ToLower(name)
	s = nonAlnum.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
