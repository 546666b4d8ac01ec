// Package assembly renders grouped fragments into the context document
// handed to lesson, doubt and mentor prompts.
package assembly

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/kailas-cloud/coach/internal/domain/fragment"
	"github.com/kailas-cloud/coach/internal/domain/grouping"
)

// DefaultImagesRoot is where page images extracted from source PDFs live.
const DefaultImagesRoot = "extracted_images"

var (
	heavyRule = strings.Repeat("=", 120)
	groupRule = strings.Repeat("#", 120)
	bodyRule  = strings.Repeat("=", 80)
)

// Assembler renders grouping results. It is stateless and safe for concurrent use.
type Assembler struct {
	imagesRoot string
}

// New creates an assembler that points image annotations at imagesRoot.
func New(imagesRoot string) *Assembler {
	if imagesRoot == "" {
		imagesRoot = DefaultImagesRoot
	}
	return &Assembler{imagesRoot: imagesRoot}
}

// Render produces the context document. Output depends only on the arguments.
// The breakdown counts all fragments; groups render largest first with ties
// in their given order, members in membership order with full bodies.
func (a *Assembler) Render(kb, level string, fragments []fragment.Fragment, groups []grouping.Group) string {
	counts := fragment.Breakdown(fragments)
	total := len(fragments)

	var b strings.Builder
	writeLines(&b,
		heavyRule,
		fmt.Sprintf("LLM-ORGANIZED: %s - %s LEVEL", strings.ToUpper(kb), strings.ToUpper(level)),
		fmt.Sprintf("TOTAL: %d CHUNKS | %d INTELLIGENT GROUPS", total, len(groups)),
		heavyRule,
		"",
		fmt.Sprintf("BREAKDOWN: Text=%d | Images=%d | Tables=%d", counts.Text, counts.Image, counts.Table),
		"",
		"LLM-ORGANIZED GROUPS (Use these exact groups):",
		"",
	)

	for n, g := range SortBySize(groups) {
		writeLines(&b,
			"",
			groupRule,
			fmt.Sprintf("GROUP %d: %s", n+1, g.Name),
			fmt.Sprintf("%d FULL CHUNKS", g.Size()),
			groupRule,
			"",
		)
		for i, f := range g.Members {
			a.writeFragment(&b, kb, f, i+1, g.Size())
		}
	}

	writeLines(&b,
		"",
		heavyRule,
		fmt.Sprintf("VERIFICATION: %d/%d chunks | %d groups preserved", total, total, len(groups)),
	)
	b.WriteString(heavyRule)
	return b.String()
}

func (a *Assembler) writeFragment(b *strings.Builder, kb string, f fragment.Fragment, pos, size int) {
	typ := fragment.Classify(f)
	writeLines(b,
		"",
		fmt.Sprintf("  CHUNK %d/%d", pos, size),
		fmt.Sprintf("  %s | Page %s | Type: %s", f.SourceName(), f.PageLabel(), typ.Title()),
	)
	switch typ {
	case fragment.Image:
		writeLines(b, "  IMAGE: "+a.ImagePattern(kb, f))
	case fragment.Table:
		writeLines(b, "  TABLE DATA:")
	}
	writeLines(b,
		"  "+bodyRule,
		"  "+strings.TrimSpace(f.Body),
		"  "+bodyRule,
	)
}

// ImagePattern returns the glob of page images extracted for an image fragment.
func (a *Assembler) ImagePattern(kb string, f fragment.Fragment) string {
	stem := strings.TrimSuffix(f.SourceName(), ".pdf")
	return path.Join(a.imagesRoot, kb, fmt.Sprintf("%s_page_%s_*.png", stem, f.PageLabel()))
}

// SortBySize returns a copy of groups ordered by member count, largest first.
// Equal sizes keep their relative order.
func SortBySize(groups []grouping.Group) []grouping.Group {
	out := slices.Clone(groups)
	slices.SortStableFunc(out, func(x, y grouping.Group) int {
		return y.Size() - x.Size()
	})
	return out
}

func writeLines(b *strings.Builder, lines ...string) {
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
}
