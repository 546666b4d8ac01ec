// Package grouping holds topic groups of fragments and cached grouping snapshots.
package grouping

import (
	"time"

	"github.com/kailas-cloud/coach/internal/domain/fragment"
)

// Strategy records how a grouping was produced.
type Strategy string

// Grouping strategies.
const (
	StrategyModel    Strategy = "model"
	StrategyFallback Strategy = "fallback"
)

// Fallback group names, one per fragment type.
const (
	NameDiagrams   = "Diagrams & Flowcharts"
	NameTables     = "Reference Tables & Codes"
	NameProcedures = "Procedures & Commands"
	NameUnnamed    = "Unnamed Group"
)

// Group is a named, ordered collection of fragments covering one topic.
type Group struct {
	Name    string
	Members []fragment.Fragment
}

// Size returns the member count.
func (g Group) Size() int { return len(g.Members) }

// Result is the output of one grouping pass.
// Uncovered counts fragments assigned to no group.
type Result struct {
	Groups    []Group
	Strategy  Strategy
	Uncovered int
}

// Uncovered returns how many of total fragment IDs appear in no group.
func Uncovered(groups []Group, total int) int {
	seen := make(map[int]struct{}, total)
	for _, g := range groups {
		for _, m := range g.Members {
			seen[m.ID] = struct{}{}
		}
	}
	n := 0
	for id := 1; id <= total; id++ {
		if _, ok := seen[id]; !ok {
			n++
		}
	}
	return n
}

// Entry is a persisted grouping snapshot for one knowledge base.
type Entry struct {
	KnowledgeBase  string
	TotalFragments int
	Groups         []Group
	Strategy       Strategy
	CreatedAt      time.Time
}

// NewEntry snapshots a grouping result for kb taken over total fragments.
func NewEntry(kb string, total int, r Result, now time.Time) Entry {
	return Entry{
		KnowledgeBase:  kb,
		TotalFragments: total,
		Groups:         r.Groups,
		Strategy:       r.Strategy,
		CreatedAt:      now.UTC(),
	}
}

// ValidFor reports whether the entry can be reused for a corpus of liveCount fragments.
func (e Entry) ValidFor(liveCount int) bool {
	return e.TotalFragments == liveCount
}

// Result converts the entry back into a grouping result.
func (e Entry) Result() Result {
	return Result{
		Groups:    e.Groups,
		Strategy:  e.Strategy,
		Uncovered: Uncovered(e.Groups, e.TotalFragments),
	}
}
