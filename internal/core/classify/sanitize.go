package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// unstorable matches control runes other than \n \r \t, and invalid UTF-8
// (which runes hands over as RuneError). Postgres text rejects NUL outright.
var unstorable = runes.Predicate(func(r rune) bool {
	switch r {
	case '\n', '\r', '\t':
		return false
	case utf8.RuneError:
		return true
	}
	return unicode.IsControl(r)
})

// Sanitize drops control characters and invalid bytes from post content.
// Clean input is returned as is.
func Sanitize(s string) string {
	if strings.IndexFunc(s, unstorable.Contains) < 0 {
		return s
	}
	out, _, err := transform.String(runes.Remove(unstorable), s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if unstorable.Contains(r) {
				return -1
			}
			return r
		}, s)
	}
	return out
}
