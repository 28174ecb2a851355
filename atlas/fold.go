package atlas

import (
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folded memoizes fold results for non-ASCII runes.
var folded sync.Map // map[rune]rune

// Fold maps r onto the printable ASCII range the atlas covers. Accented
// letters lose their marks (é → e); anything else becomes '?'.
func Fold(r rune) rune {
	if r >= firstCode && r <= lastCode {
		return r
	}
	if v, ok := folded.Load(r); ok {
		return v.(rune)
	}
	out := rune('?')
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if s, _, err := transform.String(t, string(r)); err == nil {
		rs := []rune(s)
		if len(rs) == 1 && rs[0] >= firstCode && rs[0] <= lastCode {
			out = rs[0]
		}
	}
	folded.Store(r, out)
	return out
}
