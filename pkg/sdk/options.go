package coach

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	fragmentRoots []string
	indexPrefix   string
	useIndex      bool

	generator    Generator
	model        string
	dailyLimit   int64
	monthLimit   int64
	rejectOver   bool
	imagesRoot   string
	defaultKB    string
	mentorKBs    []string
	assessKBs    []string
	previewSize  int
	groupTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func (c *clientConfig) fragmentIndexPrefix() string {
	if c.indexPrefix == "" {
		return defaultIndexPrefix
	}
	return c.indexPrefix
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithFragmentDir reads knowledge bases from parquet files under roots.
// Default: "indexes" plus the legacy locations "." and "faiss_indexes".
func WithFragmentDir(roots ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.useIndex = false
		c.fragmentRoots = roots
	})
}

// WithFragmentIndex reads knowledge bases from search indexes named prefix+kb.
// Default prefix: "coach:idx:".
func WithFragmentIndex(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.useIndex = true
		c.indexPrefix = prefix
	})
}

// WithGenerator sets the language model used for grouping and generation.
// model labels metrics and may be empty.
func WithGenerator(g Generator, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
		c.model = model
	})
}

// WithTokenBudget limits generation tokens per day and month (0 = unlimited).
// Over budget calls fail with ErrGenerationQuotaExceeded when reject is set,
// otherwise they are only logged. Counters persist in the store.
func WithTokenBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyLimit = daily
		c.monthLimit = monthly
		c.rejectOver = reject
	})
}

// WithImagesRoot sets the directory image references point into.
// Default: "extracted_images".
func WithImagesRoot(root string) Option {
	return optionFunc(func(c *clientConfig) {
		c.imagesRoot = root
	})
}

// WithKnowledgeBases sets the lesson default and the knowledge bases the
// mentor and assessment consult. Defaults: "mml" and [mml, alarm_handling].
func WithKnowledgeBases(defaultKB string, consulted ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultKB = defaultKB
		c.mentorKBs = consulted
		c.assessKBs = consulted
	})
}

// WithPreviewChars sets how many characters of each fragment the grouping
// manifest shows the model. Default: 250.
func WithPreviewChars(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.previewSize = n
	})
}

// WithGroupingTimeout bounds each grouping call to the model. When it
// expires the knowledge base is grouped by fragment type instead.
// Default: 120s.
func WithGroupingTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.groupTimeout = d
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
