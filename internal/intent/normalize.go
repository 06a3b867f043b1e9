package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks and recomposes, so
// "não" and "nao" normalize to the same string.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the text, removes diacritics and collapses whitespace.
// Normalize(Normalize(t)) == Normalize(t) for any t.
func Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}
	if out, _, err := transform.String(stripMarks, text); err == nil {
		text = out
	}
	return strings.Join(strings.Fields(text), " ")
}
