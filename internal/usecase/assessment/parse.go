package assessment

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	domassessment "github.com/kailas-cloud/coach/internal/domain/assessment"
)

var scorePattern = regexp.MustCompile(`(?i)score["']?\s*:\s*(\d+)`)

type resultDTO struct {
	Feedback       *string  `json:"feedback"`
	Score          *float64 `json:"score"`
	Strengths      []string `json:"strengths"`
	Improvements   []string `json:"improvements"`
	TechnicalNotes string   `json:"technical_notes"`
}

// Parse decodes a model assessment. The second result reports whether the
// text was valid JSON; otherwise the raw text is the feedback and the score
// is recovered from a "score: N" mention when present.
func Parse(raw string) (domassessment.Result, bool) {
	var dto resultDTO
	if err := json.Unmarshal([]byte(stripFences(raw)), &dto); err != nil {
		return domassessment.Result{
			Feedback: raw,
			Score:    domassessment.ClampScore(scoreFromText(raw)),
		}, false
	}

	res := domassessment.Result{
		Feedback:       raw,
		Score:          domassessment.DefaultScore,
		Strengths:      dto.Strengths,
		Improvements:   dto.Improvements,
		TechnicalNotes: dto.TechnicalNotes,
	}
	if dto.Feedback != nil {
		res.Feedback = *dto.Feedback
	}
	if dto.Score != nil {
		res.Score = domassessment.ClampScore(int(math.Round(*dto.Score)))
	}
	return res, true
}

func scoreFromText(raw string) int {
	m := scorePattern.FindStringSubmatch(raw)
	if m == nil {
		return domassessment.DefaultScore
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return domassessment.DefaultScore
	}
	return n
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
