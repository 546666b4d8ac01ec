package grouping

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/coach/internal/domain/fragment"
)

const (
	manifestSeparator = "\n---\n"
	truncationMarker  = "\n...[TRUNCATED - ALL CHUNKS ANALYZED]"
)

// Manifest lists every fragment as `CHUNK i [TYPE] source: preview`.
// Past budget runes the text is cut and the truncation marker appended.
func Manifest(fragments []fragment.Fragment, previewChars, budget int) string {
	lines := make([]string, len(fragments))
	for i, f := range fragments {
		lines[i] = fmt.Sprintf("CHUNK %d [%s] %s: %s",
			i+1,
			strings.ToUpper(fragment.Classify(f).String()),
			f.SourceName(),
			strings.TrimSpace(truncateRunes(f.Body, previewChars)),
		)
	}

	out := strings.Join(lines, manifestSeparator)
	if budget > 0 && len([]rune(out)) > budget {
		out = truncateRunes(out, budget) + truncationMarker
	}
	return out
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func groupingPrompt(kb string, total int, manifest string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a telecom training architect. Organize ALL %d %s chunks "+
		"into 5-12 meaningful business topics.\n\n", total, kb)
	b.WriteString("ALL CHUNKS (Text/Images/Tables, analyze the complete list):\n")
	b.WriteString(manifest)
	b.WriteString("\n\nOUTPUT EXACTLY this JSON:\n")
	b.WriteString(`{
  "groups": [
    {"name": "MML Command Syntax & Examples", "chunk_indices": [1, 5, 12]},
    {"name": "Network Flow Diagrams", "chunk_indices": [2, 8, 19]}
  ]
}`)
	fmt.Fprintf(&b, "\n\nIMPORTANT: Use ALL chunk numbers (1-%d). Images/Tables first.\n", total)
	return b.String()
}
