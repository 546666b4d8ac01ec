package grouping

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/coach/internal/domain/fragment"
	"github.com/kailas-cloud/coach/internal/domain/grouping"
)

type rawResponse struct {
	Groups []rawGroup `json:"groups"`
}

type rawGroup struct {
	Name    any   `json:"name"`
	Indices []any `json:"chunk_indices"`
}

// ParseGroups resolves a model grouping response against fragments.
// Indices outside 1..len(fragments) and repeats within a group are dropped,
// groups left empty are discarded and groups sharing a name are merged.
func ParseGroups(raw string, fragments []fragment.Fragment) grouping.ParseOutcome {
	body := extractObject(stripFences(raw))
	if body == "" {
		return grouping.Unparsable("no JSON object in response")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var resp rawResponse
	if err := dec.Decode(&resp); err != nil {
		return grouping.Unparsable(fmt.Sprintf("decode: %v", err))
	}
	if len(resp.Groups) == 0 {
		return grouping.Unparsable("no groups")
	}

	var out []grouping.Group
	byName := make(map[string]int)
	for _, rg := range resp.Groups {
		name := groupName(rg.Name)
		pos, merged := byName[name]
		if !merged {
			pos = len(out)
			byName[name] = pos
			out = append(out, grouping.Group{Name: name})
		}
		out[pos].Members = appendMembers(out[pos].Members, rg.Indices, fragments)
	}

	kept := out[:0]
	for _, g := range out {
		if g.Size() > 0 {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		return grouping.Unparsable("no group has a resolvable index")
	}
	return grouping.Parsed(kept)
}

func appendMembers(members []fragment.Fragment, indices []any, fragments []fragment.Fragment) []fragment.Fragment {
	seen := make(map[int]bool, len(members))
	for _, m := range members {
		seen[m.ID] = true
	}
	for _, v := range indices {
		i, ok := toIndex(v)
		if !ok || i < 1 || i > len(fragments) || seen[i] {
			continue
		}
		seen[i] = true
		members = append(members, fragments[i-1])
	}
	return members
}

func groupName(v any) string {
	var name string
	switch t := v.(type) {
	case string:
		name = t
	case json.Number:
		name = t.String()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return grouping.NameUnnamed
	}
	return name
}

// toIndex accepts integers, integral floats and numeric strings.
func toIndex(v any) (int, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	default:
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// stripFences removes a surrounding markdown code fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// extractObject returns the span from the first '{' to the last '}'.
func extractObject(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
