// Package level defines training depth tiers and their instruction profiles.
package level

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/coach/internal/domain"
)

// Level is a training depth tier.
type Level string

// Known levels.
const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
	Architecture Level = "architecture"
)

// Profile tunes generation for one level.
type Profile struct {
	Level        Level
	Depth        string
	Instructions string
	Sections     []string
}

var profiles = map[Level]Profile{
	Beginner: {
		Level: Beginner,
		Depth: "basic",
		Instructions: "Use simple, clear language with step-by-step explanations. " +
			"Focus on foundational concepts and basic understanding. Avoid jargon or explain it clearly when used.",
		Sections: []string{"Introduction", "Fundamentals", "Key Concepts", "Basic Examples", "Summary", "References"},
	},
	Intermediate: {
		Level: Intermediate,
		Depth: "practical",
		Instructions: "Provide practical examples, real-world scenarios, and troubleshooting guidance. " +
			"Include hands-on exercises and common use cases.",
		Sections: []string{
			"Overview", "Core Concepts", "Practical Applications", "Common Scenarios",
			"Troubleshooting", "Best Practices", "References",
		},
	},
	Advanced: {
		Level: Advanced,
		Depth: "expert",
		Instructions: "Dive deep into technical details, edge cases, optimization techniques, and advanced configurations. " +
			"Include performance considerations and complex scenarios.",
		Sections: []string{
			"Advanced Overview", "Deep Dive Concepts", "Advanced Configurations", "Performance Optimization",
			"Edge Cases & Troubleshooting", "Best Practices & Patterns", "References",
		},
	},
	Architecture: {
		Level: Architecture,
		Depth: "system",
		Instructions: "Focus on system design, architectural patterns, data flows, integration points, scalability, " +
			"and high-level design decisions. Include architectural diagrams and design rationale.",
		Sections: []string{
			"Architectural Overview", "System Architecture", "Architectural Flow & Diagrams", "Design Details",
			"Integration Points", "Scalability & Performance", "Design Patterns", "References",
		},
	},
}

// Parse normalizes s and returns the matching level.
func Parse(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := profiles[l]; !ok {
		return "", fmt.Errorf("%w: %q (want beginner, intermediate, advanced or architecture)", domain.ErrInvalidLevel, s)
	}
	return l, nil
}

// ProfileFor returns the profile of l. Unknown levels get the beginner profile.
func ProfileFor(l Level) Profile {
	if p, ok := profiles[l]; ok {
		return p
	}
	return profiles[Beginner]
}

// Label returns the upper-cased level name used in rendered headers.
func (l Level) Label() string { return strings.ToUpper(string(l)) }
