package resolve

import "strings"

// Normalize repairs text-extraction artifacts in a raw institution name.
// Only U+2010 HYPHEN is rewritten (to '-'); every other correction belongs to
// the cascade so that it stays auditable.
func Normalize(raw string) string {
	return strings.ReplaceAll(raw, "\u2010", "-")
}
