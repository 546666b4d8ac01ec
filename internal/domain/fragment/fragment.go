// Package fragment models indexed content units and their classification.
package fragment

import (
	"path/filepath"
	"strings"
)

const (
	// UnknownPage is used when the source did not record a page number.
	UnknownPage = "unknown"
	// UnknownSource is the display name for fragments without a source file.
	UnknownSource = "unknown.pdf"
)

// Fragment is one indexed content unit of a knowledge base.
// ID is the 1-based position within a single full-corpus retrieval.
type Fragment struct {
	ID            int
	Body          string
	Source        string
	Page          string
	KnowledgeBase string
	Metadata      map[string]string
}

// SourceName returns the base file name of the source document.
func (f Fragment) SourceName() string {
	if f.Source == "" {
		return UnknownSource
	}
	return filepath.Base(f.Source)
}

// PageLabel returns the page or UnknownPage.
func (f Fragment) PageLabel() string {
	if strings.TrimSpace(f.Page) == "" {
		return UnknownPage
	}
	return f.Page
}

// MentionsKnowledgeBase reports whether any metadata key or value refers to kb.
// Matching is a case-insensitive substring test over the flattened metadata.
func (f Fragment) MentionsKnowledgeBase(kb string) bool {
	needle := strings.ToLower(kb)
	if needle == "" {
		return false
	}
	for k, v := range f.Metadata {
		if strings.Contains(strings.ToLower(k), needle) || strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(f.Source), needle)
}

// Renumber assigns sequential 1-based IDs in slice order.
func Renumber(fragments []Fragment) {
	for i := range fragments {
		fragments[i].ID = i + 1
	}
}
