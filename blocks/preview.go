// blocks/preview.go
package blocks

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// Preview returns text with markup removed and whitespace collapsed, cut to at most n runes.
// A cut preview ends with an ellipsis. n <= 0 disables truncation.
func Preview(text string, n int) string {
	plain := html.UnescapeString(stripPolicy.Sanitize(text))
	plain = strings.Join(strings.Fields(plain), " ")

	if n <= 0 {
		return plain
	}
	runes := []rune(plain)
	if len(runes) <= n {
		return plain
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
