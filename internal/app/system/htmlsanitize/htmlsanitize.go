// Package htmlsanitize reduces user-supplied free text to plain text.
//
// Bios, request messages, review comments and responses are stored and
// returned as plain text; any markup a client sends is stripped before the
// value reaches the database.
package htmlsanitize

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Field length limits, in characters.
const (
	MaxShort  = 200  // subjects, titles, reasons
	MaxMedium = 2000 // request messages, review comments and responses
	MaxLong   = 5000 // bios, session notes
)

var strict = bluemonday.StrictPolicy()

// PlainText strips all markup, trims surrounding whitespace and truncates
// the result to max characters (max <= 0 means no limit).
func PlainText(s string, max int) string {
	if s == "" {
		return ""
	}
	out := html.UnescapeString(strict.Sanitize(s))
	out = strings.TrimSpace(out)
	if max > 0 && utf8.RuneCountInString(out) > max {
		out = strings.TrimSpace(string([]rune(out)[:max]))
	}
	return out
}
