package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the coach service configuration.
type Config struct {
	HTTP           HTTPConfig          `yaml:"http"`
	Database       DatabaseConfig      `yaml:"database"`
	LLM            LLMConfig           `yaml:"llm"`
	Fragments      FragmentsConfig     `yaml:"fragments"`
	Grouping       GroupingConfig      `yaml:"grouping"`
	Assembly       AssemblyConfig      `yaml:"assembly"`
	KnowledgeBases KnowledgeBaseConfig `yaml:"knowledge_bases"`
	Warmup         WarmupConfig        `yaml:"warmup"`
	Auth           AuthConfig          `yaml:"auth"`
	Logging        LoggingConfig       `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds connection settings for the Redis/Valkey store.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LLM provider modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// LLMConfig holds settings of the OpenAI-compatible generation provider.
type LLMConfig struct {
	Mode               string       `yaml:"mode"` // local (Ollama) or remote
	BaseURL            string       `yaml:"base_url"`
	APIKey             string       `yaml:"api_key"`
	Model              string       `yaml:"model"`
	Temperature        float32      `yaml:"temperature"`
	MaxTokens          int          `yaml:"max_tokens"`
	TimeoutSec         int          `yaml:"timeout_sec"`
	GroupingTimeoutSec int          `yaml:"grouping_timeout_sec"`
	TLSSkipVerify      bool         `yaml:"tls_skip_verify"`
	Budget             BudgetConfig `yaml:"budget"`
}

// Provider names the generation provider for budget keys and usage reports.
func (l LLMConfig) Provider() string {
	if l.Mode == ModeLocal {
		return "ollama"
	}
	return "openai"
}

// BudgetConfig holds generation token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// Fragment source kinds.
const (
	SourceDir   = "dir"
	SourceIndex = "index"
)

// FragmentsConfig selects and locates the fragment store.
type FragmentsConfig struct {
	Source      string   `yaml:"source"`       // dir (parquet files) or index (FT search)
	Roots       []string `yaml:"roots"`        // searched with exact and lower-cased names
	LegacyRoots []string `yaml:"legacy_roots"` // searched with exact names only
	FileName    string   `yaml:"file_name"`
	IndexPrefix string   `yaml:"index_prefix"`
	KeyPrefix   string   `yaml:"key_prefix"`
}

// GroupingConfig tunes the model-assisted grouping manifest.
type GroupingConfig struct {
	ManifestBudget int `yaml:"manifest_budget"` // characters
	PreviewChars   int `yaml:"preview_chars"`
}

// AssemblyConfig holds context rendering settings.
type AssemblyConfig struct {
	ImagesRoot string `yaml:"images_root"`
}

// KnowledgeBaseConfig lists knowledge bases known to the agents.
type KnowledgeBaseConfig struct {
	Default    string   `yaml:"default"`
	Mentor     []string `yaml:"mentor"`
	Assessment []string `yaml:"assessment"`
}

// All returns the distinct configured knowledge bases in declaration order.
func (k KnowledgeBaseConfig) All() []string {
	seen := make(map[string]bool)
	var out []string
	for _, kb := range append(append([]string{k.Default}, k.Mentor...), k.Assessment...) {
		if kb == "" || seen[kb] {
			continue
		}
		seen[kb] = true
		out = append(out, kb)
	}
	return out
}

// WarmupConfig schedules grouping cache warm-up.
type WarmupConfig struct {
	Schedule   string `yaml:"schedule"` // cron expression, empty disables
	RunOnStart bool   `yaml:"run_on_start"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML with ${VAR} expansion, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	c.applyLLMDefaults()

	// lessons are generated synchronously, the write deadline must outlive the model call
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = c.LLM.TimeoutSec + 30
	}

	if c.Fragments.Source == "" {
		c.Fragments.Source = SourceDir
	}
	if len(c.Fragments.Roots) == 0 {
		c.Fragments.Roots = []string{"indexes"}
	}
	if len(c.Fragments.LegacyRoots) == 0 {
		c.Fragments.LegacyRoots = []string{".", "faiss_indexes"}
	}
	if c.Fragments.FileName == "" {
		c.Fragments.FileName = "fragments.parquet"
	}
	if c.Fragments.IndexPrefix == "" {
		c.Fragments.IndexPrefix = "coach:idx:"
	}
	if c.Fragments.KeyPrefix == "" {
		c.Fragments.KeyPrefix = "coach:frag:"
	}
	if c.Grouping.ManifestBudget <= 0 {
		c.Grouping.ManifestBudget = 8000
	}
	if c.Grouping.PreviewChars <= 0 {
		c.Grouping.PreviewChars = 250
	}
	if c.Assembly.ImagesRoot == "" {
		c.Assembly.ImagesRoot = "extracted_images"
	}
	if c.KnowledgeBases.Default == "" {
		c.KnowledgeBases.Default = "mml"
	}
	if len(c.KnowledgeBases.Mentor) == 0 {
		c.KnowledgeBases.Mentor = []string{"mml", "alarm_handling"}
	}
	if len(c.KnowledgeBases.Assessment) == 0 {
		c.KnowledgeBases.Assessment = c.KnowledgeBases.Mentor
	}
}

func (c *Config) applyLLMDefaults() {
	l := &c.LLM
	if l.Mode == "" {
		l.Mode = ModeLocal
	}
	if l.Model == "" {
		l.Model = "qwen2.5:7b"
	}
	if l.BaseURL == "" && l.Mode == ModeLocal {
		l.BaseURL = "http://localhost:11434/v1"
	}
	if l.APIKey == "" && l.Mode == ModeLocal {
		l.APIKey = "ollama"
	}
	if l.MaxTokens <= 0 && l.Mode == ModeLocal {
		l.MaxTokens = 2000
	}
	if l.TimeoutSec <= 0 {
		if l.Mode == ModeLocal {
			l.TimeoutSec = 450
		} else {
			l.TimeoutSec = 600
		}
	}
	if l.GroupingTimeoutSec <= 0 {
		l.GroupingTimeoutSec = 120
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis", "valkey":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"valkey\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.LLM.Mode {
	case ModeLocal, ModeRemote:
	default:
		return fmt.Errorf("llm.mode must be %q or %q, got %q", ModeLocal, ModeRemote, c.LLM.Mode)
	}
	if c.LLM.Mode == ModeRemote && c.LLM.BaseURL == "" {
		return fmt.Errorf("llm.base_url is required in remote mode")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2, got %v", c.LLM.Temperature)
	}
	switch c.LLM.Budget.Action {
	case "", "warn", "reject":
	default:
		return fmt.Errorf("llm.budget.action must be \"warn\" or \"reject\", got %q", c.LLM.Budget.Action)
	}
	switch c.Fragments.Source {
	case SourceDir, SourceIndex:
	default:
		return fmt.Errorf("fragments.source must be %q or %q, got %q", SourceDir, SourceIndex, c.Fragments.Source)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// relative to this source file, for tests and go run
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
