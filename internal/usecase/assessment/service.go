// Package assessment scores a learner's approach to a scenario.
package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/coach/internal/domain"
	domassessment "github.com/kailas-cloud/coach/internal/domain/assessment"
	"github.com/kailas-cloud/coach/internal/domain/level"
	"github.com/kailas-cloud/coach/internal/logger"
	"github.com/kailas-cloud/coach/internal/usecase/generation"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

const noKnowledge = "No specific knowledge base content found. Assess based on general telecom best practices."

// Request is a learner submission. Response is optional.
type Request struct {
	Scenario string
	Response string
}

// Service assesses learner submissions.
type Service struct {
	contexts retrieval.Contexter
	gen      domain.Generator
	kbs      []string
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// New creates an assessment service consulting kbs.
func New(contexts retrieval.Contexter, gen domain.Generator, kbs []string, logger *zap.Logger) *Service {
	return &Service{
		contexts: contexts,
		gen:      gen,
		kbs:      kbs,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// Assess grounds the submission in the configured knowledge bases and
// parses the model's scored feedback.
func (s *Service) Assess(ctx context.Context, req Request) (domassessment.Result, error) {
	scenario := strings.TrimSpace(req.Scenario)
	if scenario == "" {
		return domassessment.Result{}, fmt.Errorf("%w: scenario is required", domain.ErrInvalidRequest)
	}

	contexts, err := retrieval.Gather(ctx, s.contexts, s.kbs, string(level.Advanced), scenario)
	if err != nil {
		return domassessment.Result{}, fmt.Errorf("gather contexts: %w", err)
	}
	knowledge := retrieval.Sections(contexts)
	if knowledge == "" {
		knowledge = noKnowledge
	}

	gen, err := s.gen.Generate(ctx, prompt(scenario, strings.TrimSpace(req.Response), knowledge))
	if err != nil {
		return domassessment.Result{}, fmt.Errorf("generate assessment: %w", generation.Failed(err))
	}

	res, structured := Parse(gen.Text)
	if !structured {
		logger.FromContextOr(ctx, s.logger).Warn("Assessment response is not JSON, using raw text",
			zap.Int("score", res.Score),
		)
	}
	res.ID = s.newID()
	res.CreatedAt = s.now().UTC()
	return res, nil
}

func prompt(scenario, response, knowledge string) string {
	var b strings.Builder
	b.WriteString("You are an expert telecom training assessor evaluating a learner's approach to a technical scenario.\n\n")
	fmt.Fprintf(&b, "SCENARIO / USER'S APPROACH: %s\n\n", scenario)
	if response != "" {
		fmt.Fprintf(&b, "USER'S RESPONSE: %s\n\n", response)
	}
	fmt.Fprintf(&b, "RELEVANT KNOWLEDGE BASE CONTENT:\n%s\n\n", knowledge)
	b.WriteString(`YOUR TASK: provide a comprehensive assessment with:
1. Strengths - what the learner did well
2. Areas for Improvement - specific gaps or issues
3. Technical Accuracy - correctness of approach, commands, procedures
4. Best Practices Alignment - how well it follows industry standards
5. Risk Assessment - potential issues or risks in the approach
6. Recommendations - specific actionable improvements

SCORING CRITERIA (0-100):
- Technical Accuracy: 30 points
- Best Practices: 25 points
- Completeness: 20 points
- Risk Awareness: 15 points
- Innovation/Problem-Solving: 10 points

OUTPUT FORMAT (JSON):
{
    "feedback": "Detailed feedback text covering all assessment points",
    "score": <integer 0-100>,
    "strengths": ["strength1", "strength2"],
    "improvements": ["improvement1", "improvement2"],
    "technical_notes": "Specific technical observations"
}

RESPONSE (JSON only, no markdown):
`)
	return b.String()
}
