package coach

import "time"

// Level selects the depth of a lesson.
type Level string

// Level constants.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelArchitecture Level = "architecture"
)

// Context is the assembled context of one knowledge base.
type Context struct {
	KnowledgeBase string
	Level         Level
	Topic         string
	Text          string
	Fragments     int
	Groups        int
	Uncovered     int
	Strategy      string // "model" or "fallback"
	Cached        bool
}

// Source describes the context a response was generated from.
type Source struct {
	KnowledgeBase string
	Fragments     int
	Groups        int
	Strategy      string
	Cached        bool
}

// Lesson is a generated training lesson.
type Lesson struct {
	Content   string
	Level     Level
	Sections  []string
	Source    Source
	Tokens    int
	CreatedAt time.Time
}

// Answer resolves a learner doubt.
type Answer struct {
	Content   string
	Source    Source
	Tokens    int
	CreatedAt time.Time
}

// MentorAnswer is senior-engineer guidance drawn from several knowledge bases.
type MentorAnswer struct {
	Content        string
	KnowledgeBases []string
	Tokens         int
	CreatedAt      time.Time
}

// Assessment is scored feedback on a learner's approach.
type Assessment struct {
	ID             string
	Feedback       string
	Score          int // 0..100
	Strengths      []string
	Improvements   []string
	TechnicalNotes string
	CreatedAt      time.Time
}

// WarmResult reports the cached grouping of a warmed knowledge base.
type WarmResult struct {
	KnowledgeBase string
	Fragments     int
	Groups        int
	Strategy      string
	Cached        bool
}
