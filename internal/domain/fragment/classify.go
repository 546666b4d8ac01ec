package fragment

import "strings"

// Type is the display category of a fragment.
type Type int

// Fragment types.
const (
	Text Type = iota
	Image
	Table
)

func (t Type) String() string {
	switch t {
	case Image:
		return "image"
	case Table:
		return "table"
	default:
		return "text"
	}
}

// Title returns the capitalized type name used in rendered context.
func (t Type) Title() string {
	switch t {
	case Image:
		return "Image"
	case Table:
		return "Table"
	default:
		return "Text"
	}
}

var (
	imageKeywords = []string{"diagram", "figure", "fig", "image", "chart", "graph", "flow"}
	tableKeywords = []string{"table", "|", "---", "parameter", "value"}
)

// metadata keys carrying an explicit element type, checked in order
var typeKeys = []string{"category", "element_type"}

// Classify derives the type of f from its metadata, then from body keywords.
func Classify(f Fragment) Type {
	for _, want := range []struct {
		label string
		typ   Type
	}{{"image", Image}, {"table", Table}} {
		for _, k := range typeKeys {
			if strings.EqualFold(strings.TrimSpace(f.Metadata[k]), want.label) {
				return want.typ
			}
		}
	}

	if truthy(f.Metadata["has_images"]) {
		return Image
	}

	body := strings.ToLower(f.Body)
	if countKeywords(body, imageKeywords) >= 1 {
		return Image
	}
	if countKeywords(body, tableKeywords) >= 2 {
		return Table
	}
	return Text
}

func countKeywords(body string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(body, kw) {
			n++
		}
	}
	return n
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "no", "none", "null":
		return false
	default:
		return true
	}
}

// Counts is the per-type breakdown of a fragment list.
type Counts struct {
	Text  int
	Image int
	Table int
}

// Total returns the number of counted fragments.
func (c Counts) Total() int { return c.Text + c.Image + c.Table }

// Breakdown classifies every fragment and counts the types.
func Breakdown(fragments []Fragment) Counts {
	var c Counts
	for _, f := range fragments {
		switch Classify(f) {
		case Image:
			c.Image++
		case Table:
			c.Table++
		default:
			c.Text++
		}
	}
	return c
}
