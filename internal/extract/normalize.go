package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold decomposes accented runes and drops the combining marks, so
// "powierzchnia działki" becomes "powierzchnia dzialki". Compatibility
// decomposition also folds forms like the m² superscript down to "m2".
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC)

// Runes that do not decompose under NFKD and need an explicit mapping.
var foldReplacer = strings.NewReplacer(
	"ł", "l",
	"Ł", "L",
	"ø", "o",
	"Ø", "O",
	"đ", "d",
	"Đ", "D",
)

// StripDiacritics converts accented text to its plain ASCII form.
// Runes that still fall outside ASCII after folding are dropped.
func StripDiacritics(s string) string {
	folded, _, err := transform.String(asciiFold, foldReplacer.Replace(s))
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeKey derives a stable map key from a group label: the separator
// and space characters become underscores, the result is lower-cased and
// folded to ASCII. The function is pure and idempotent.
func NormalizeKey(label string) string {
	k := strings.ReplaceAll(label, " / ", "_")
	k = strings.ReplaceAll(k, " ", "_")
	k = strings.ToLower(k)
	return StripDiacritics(k)
}

// NormalizeValue trims surrounding whitespace and folds the text to ASCII.
func NormalizeValue(text string) string {
	return StripDiacritics(strings.TrimSpace(text))
}
