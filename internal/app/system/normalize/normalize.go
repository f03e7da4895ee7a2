// Package normalize canonicalizes user-entered identifiers and labels before
// they are stored or compared.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Email lower-cases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses inner runs of whitespace.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FullName joins first and last names, skipping blanks.
func FullName(first, last string) string {
	return Name(first + " " + last)
}

// Label trims a free-form label such as a branch, industry or rank.
func Label(s string) string {
	return Name(s)
}

// Tags trims, drops blanks and de-duplicates a tag list (case-insensitively,
// first spelling wins). It returns the cleaned tags and their folded forms.
func Tags(in []string) (tags []string, folded []string) {
	seen := make(map[string]struct{}, len(in))
	for _, raw := range in {
		t := Name(raw)
		if t == "" {
			continue
		}
		f := text.Fold(t)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tags = append(tags, t)
		folded = append(folded, f)
	}
	return tags, folded
}
