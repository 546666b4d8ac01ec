package lesson

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/coach/internal/domain/level"
)

func lessonPrompt(kb string, p level.Profile, topic, docs string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior telecom training architect specializing in %s. "+
		"Create a comprehensive, well-structured training lesson for %s level learners.\n\n", kb, p.Level)

	b.WriteString("SOURCE DOCUMENTS (use ALL provided content, keep it accurate, do not invent facts):\n\n")
	b.WriteString(docs)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "TRAINING LEVEL: %s (%s depth)\n", p.Level, p.Depth)
	fmt.Fprintf(&b, "INSTRUCTIONS: %s\n", p.Instructions)
	if topic = strings.TrimSpace(topic); topic != "" {
		fmt.Fprintf(&b, "FOCUS TOPIC: %s\n", topic)
	}

	b.WriteString("\nREQUIRED STRUCTURE (use these markdown sections in order):\n")
	for i, s := range p.Sections {
		fmt.Fprintf(&b, "## %d. %s\n", i+1, s)
	}

	b.WriteString(`
REQUIREMENTS:
1. Do not mention "group" or "chunk" labels. Turn the raw content into natural prose.
2. Use clear markdown headers (##, ###) for every section.
3. Match depth and complexity to the training level.
4. Describe architectural flows with ASCII diagrams or precise text when relevant.
5. Use bullet points, numbered lists, code blocks and tables where they help.
6. Synthesize information from all provided content into coherent sections.

OUTPUT: a complete, professional training lesson following the structure above.
`)
	return b.String()
}

func doubtPrompt(kb, question, lessonText, docs string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DOUBT RESOLUTION using the %s knowledge base groups.\n\n", kb)
	fmt.Fprintf(&b, "DOUBT: %s\n\n", question)
	if lessonText = strings.TrimSpace(lessonText); lessonText != "" {
		fmt.Fprintf(&b, "LESSON THE LEARNER IS READING:\n%s\n\n", lessonText)
	}
	b.WriteString("ORGANIZED CONTEXT:\n")
	b.WriteString(docs)
	b.WriteString(`

EXPECTED FORMAT:
1. Direct Answer (one line)
2. Relevant Group (quote the exact group name)
3. Step-by-Step Resolution
4. MML Commands (if applicable)
5. Image/Table References
6. Verification Steps

Answer using ONLY these groups.
`)
	return b.String()
}
