// internal/app/system/htmlsanitize/htmlsanitize.go
// Package htmlsanitize strips markup from member-supplied text.
//
// Chat messages and profile bios are plain text in this API; anything
// that looks like HTML is removed, not escaped, so stored text never
// contains markup for a client to mis-render.
package htmlsanitize

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes all HTML elements and attributes from s and returns
// the remaining text with entities decoded, so literal characters like
// "<" or "&" survive as themselves.
func PlainText(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}
