package blobstore

import (
	"strings"
	"unicode"
)

// Sanitize converts an arbitrary name into a storage-safe blob name:
// surrounding whitespace is trimmed, word separators become single
// hyphens, everything outside [0-9a-z-] is dropped and leading or
// trailing hyphens are removed.
//
// Only whitespace, '-' and '_' count as separators. Case boundaries do
// not: "MyFile" flattens to "myfile", not "my-file".
//
// The function is total: it never fails, and may return an empty
// string for pathological input. Callers must handle that.
func Sanitize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(name))

	hyphenPending := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if hyphenPending && b.Len() > 0 {
				b.WriteByte('-')
			}
			hyphenPending = false
			b.WriteRune(r)
		case r == '-' || r == '_' || unicode.IsSpace(r):
			hyphenPending = true
		}
	}

	return b.String()
}
