package coach

import (
	"context"
	"fmt"
	"time"

	domassessment "github.com/kailas-cloud/coach/internal/domain/assessment"
	assessmentuc "github.com/kailas-cloud/coach/internal/usecase/assessment"
	lessonuc "github.com/kailas-cloud/coach/internal/usecase/lesson"
	mentoruc "github.com/kailas-cloud/coach/internal/usecase/mentor"
	"github.com/kailas-cloud/coach/internal/usecase/retrieval"
)

// Context returns the assembled context of kb. An unavailable knowledge
// base yields ErrKnowledgeBaseUnavailable listing the available ones.
func (c *Client) Context(ctx context.Context, kb string, level Level, topic string) (out Context, err error) {
	start := time.Now()
	defer func() { c.obs.observe(call{op: "context", kb: kb}, start, err) }()

	ac, err := c.contexts.Context(ctx, retrieval.Request{KnowledgeBase: kb, Level: string(level), Topic: topic})
	if err != nil {
		return Context{}, fmt.Errorf("context %s: %w", kb, err)
	}
	if err = ac.Err(); err != nil {
		return Context{}, err
	}
	return Context{
		KnowledgeBase: ac.KnowledgeBase,
		Level:         Level(ac.Level),
		Topic:         ac.Topic,
		Text:          ac.Text,
		Fragments:     ac.TotalFragments,
		Groups:        ac.GroupCount,
		Uncovered:     ac.Uncovered,
		Strategy:      string(ac.Strategy),
		Cached:        ac.Cached,
	}, nil
}

// KnowledgeBases lists the knowledge bases the fragment source can load.
func (c *Client) KnowledgeBases(ctx context.Context) (names []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe(call{op: "knowledge_bases"}, start, err) }()

	names, err = c.contexts.KnowledgeBases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list knowledge bases: %w", err)
	}
	return names, nil
}

// Warm makes sure a valid grouping of kb is cached.
func (c *Client) Warm(ctx context.Context, kb string) (out WarmResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe(call{op: "warm", kb: kb}, start, err) }()

	r, err := c.contexts.Warm(ctx, kb)
	if err != nil {
		return WarmResult{}, fmt.Errorf("warm %s: %w", kb, err)
	}
	return WarmResult{
		KnowledgeBase: r.KnowledgeBase,
		Fragments:     r.Fragments,
		Groups:        r.Groups,
		Strategy:      string(r.Strategy),
		Cached:        r.Cached,
	}, nil
}

// Lesson generates a lesson on kb at level. An empty kb uses the default
// knowledge base.
func (c *Client) Lesson(ctx context.Context, kb string, level Level, topic string) (out Lesson, err error) {
	start := time.Now()
	defer func() {
		kbUsed := firstNonEmpty(out.Source.KnowledgeBase, kb)
		c.obs.observe(call{op: "lesson", kb: kbUsed, tokens: out.Tokens}, start, err)
	}()

	l, err := c.lessons.Lesson(ctx, lessonuc.Request{KnowledgeBase: kb, Level: string(level), Topic: topic})
	if err != nil {
		return Lesson{}, fmt.Errorf("lesson: %w", err)
	}
	return Lesson{
		Content:   l.Content,
		Level:     Level(l.Level),
		Sections:  l.Sections,
		Source:    sourceFrom(l.Source),
		Tokens:    l.Tokens,
		CreatedAt: l.CreatedAt,
	}, nil
}

// Doubt answers a question about kb, optionally about a lesson just read.
func (c *Client) Doubt(ctx context.Context, kb, question, lesson string) (out Answer, err error) {
	start := time.Now()
	defer func() {
		kbUsed := firstNonEmpty(out.Source.KnowledgeBase, kb)
		c.obs.observe(call{op: "doubt", kb: kbUsed, tokens: out.Tokens}, start, err)
	}()

	a, err := c.lessons.Doubt(ctx, lessonuc.DoubtRequest{KnowledgeBase: kb, Question: question, Lesson: lesson})
	if err != nil {
		return Answer{}, fmt.Errorf("doubt: %w", err)
	}
	return Answer{Content: a.Content, Source: sourceFrom(a.Source), Tokens: a.Tokens, CreatedAt: a.CreatedAt}, nil
}

// Mentor answers a free-form question from the consulted knowledge bases.
func (c *Client) Mentor(ctx context.Context, query string) (out MentorAnswer, err error) {
	start := time.Now()
	defer func() { c.obs.observe(call{op: "mentor", tokens: out.Tokens}, start, err) }()

	r, err := c.mentor.Answer(ctx, mentoruc.Request{Query: query})
	if err != nil {
		return MentorAnswer{}, fmt.Errorf("mentor: %w", err)
	}
	return MentorAnswer{
		Content:        r.Content,
		KnowledgeBases: r.KnowledgeBases,
		Tokens:         r.Tokens,
		CreatedAt:      r.CreatedAt,
	}, nil
}

// Assess scores a learner's approach to scenario. response may be empty.
func (c *Client) Assess(ctx context.Context, scenario, response string) (out Assessment, err error) {
	start := time.Now()
	defer func() { c.obs.observe(call{op: "assess"}, start, err) }()

	r, err := c.assessor.Assess(ctx, assessmentuc.Request{Scenario: scenario, Response: response})
	if err != nil {
		return Assessment{}, fmt.Errorf("assess: %w", err)
	}
	return assessmentFrom(r), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func sourceFrom(s lessonuc.Source) Source {
	return Source{
		KnowledgeBase: s.KnowledgeBase,
		Fragments:     s.TotalFragments,
		Groups:        s.GroupCount,
		Strategy:      string(s.Strategy),
		Cached:        s.Cached,
	}
}

func assessmentFrom(r domassessment.Result) Assessment {
	return Assessment{
		ID:             r.ID,
		Feedback:       r.Feedback,
		Score:          r.Score,
		Strengths:      r.Strengths,
		Improvements:   r.Improvements,
		TechnicalNotes: r.TechnicalNotes,
		CreatedAt:      r.CreatedAt,
	}
}
