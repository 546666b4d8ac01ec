package fragment

import (
	"strings"
	"unicode"
)

// Slug converts a knowledge base name into a key- and index-safe identifier.
func Slug(kb string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(kb)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// IndexName returns the search index name of kb.
func IndexName(prefix, kb string) string { return prefix + Slug(kb) }

// KeyPrefix returns the hash key prefix of kb's fragments.
func KeyPrefix(prefix, kb string) string { return prefix + Slug(kb) + ":" }

// nameVariants lists exact, lower-cased and slug spellings of kb without duplicates.
func nameVariants(kb string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range []string{kb, strings.ToLower(kb), Slug(kb)} {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
