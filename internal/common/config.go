package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider names accepted by LLMConfig.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// PDF back-end names accepted by PDFConfig.Backend.
const (
	PDFBackendTabula     = "tabula"
	PDFBackendLedongthuc = "ledongthuc"
)

// Output write modes accepted by OutputConfig.Mode.
const (
	WriteModeOverwrite = "overwrite"
	WriteModeCreate    = "create"
	WriteModeAppend    = "append"
)

// Config holds all application configuration
type Config struct {
	Batch  BatchConfig  `yaml:"batch"`
	PDF    PDFConfig    `yaml:"pdf"`
	LLM    LLMConfig    `yaml:"llm"`
	Output OutputConfig `yaml:"output"`
	Ledger LedgerConfig `yaml:"ledger"`
	Log    LogConfig    `yaml:"log"`
}

// BatchConfig holds batch-runner configuration
type BatchConfig struct {
	PapersDir      string        `yaml:"papers_dir"`
	InterCallDelay time.Duration `yaml:"inter_call_delay"`
}

// UnmarshalYAML reads inter_call_delay (or inter_call_delay_seconds) as a
// bare number of seconds or a Go duration, like INTER_CALL_DELAY.
func (b *BatchConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		PapersDir             *string `yaml:"papers_dir"`
		InterCallDelay        *string `yaml:"inter_call_delay"`
		InterCallDelaySeconds *string `yaml:"inter_call_delay_seconds"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw.PapersDir != nil {
		b.PapersDir = *raw.PapersDir
	}
	for _, v := range []*string{raw.InterCallDelay, raw.InterCallDelaySeconds} {
		if v == nil {
			continue
		}
		d, err := ParseSeconds(*v)
		if err != nil {
			return fmt.Errorf("batch.inter_call_delay: %w", err)
		}
		b.InterCallDelay = d
	}
	return nil
}

// PDFConfig holds excerpt extraction configuration
type PDFConfig struct {
	Backend         string `yaml:"backend"`
	MaxPages        int    `yaml:"max_pages"`
	MaxExcerptChars int    `yaml:"max_excerpt_chars"`
}

// LLMConfig holds completion-service configuration. Credentials are only
// read from the environment.
type LLMConfig struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	OpenAIAPIKey string        `yaml:"-"`
	GeminiAPIKey string        `yaml:"-"`
}

// OutputConfig holds table output configuration
type OutputConfig struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode"`
}

// LedgerConfig holds the optional run-ledger database configuration
type LedgerConfig struct {
	DSN string `yaml:"dsn"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Batch: BatchConfig{
			PapersDir:      "./Papers",
			InterCallDelay: 500 * time.Millisecond,
		},
		PDF: PDFConfig{
			Backend:         PDFBackendTabula,
			MaxPages:        3,
			MaxExcerptChars: 8000,
		},
		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			Timeout:  45 * time.Second,
		},
		Output: OutputConfig{
			Path: "./papers_affiliations.csv",
			Mode: WriteModeOverwrite,
		},
		Log: LogConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// LoadConfigFile layers defaults, the YAML file at path (skipped when path is
// empty) and then environment variables.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ConfigurationError("reading config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, ConfigurationError("parsing config YAML", err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Batch.PapersDir = getEnv("PAPERS_DIR", cfg.Batch.PapersDir)
	cfg.Batch.InterCallDelay = getEnvAsSeconds("INTER_CALL_DELAY", cfg.Batch.InterCallDelay)

	cfg.PDF.Backend = getEnv("PDF_BACKEND", cfg.PDF.Backend)
	cfg.PDF.MaxPages = getEnvAsInt("MAX_PAGES", cfg.PDF.MaxPages)
	cfg.PDF.MaxExcerptChars = getEnvAsInt("MAX_EXCERPT_CHARS", cfg.PDF.MaxExcerptChars)

	cfg.LLM.Provider = getEnv("LLM_PROVIDER", cfg.LLM.Provider)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", cfg.LLM.Timeout)
	cfg.LLM.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.LLM.OpenAIAPIKey)
	cfg.LLM.GeminiAPIKey = getEnv("GEMINI_API_KEY", getEnv("GOOGLE_API_KEY", cfg.LLM.GeminiAPIKey))

	cfg.Output.Path = getEnv("OUTPUT_PATH", cfg.Output.Path)
	cfg.Output.Mode = getEnv("OUTPUT_MODE", cfg.Output.Mode)

	cfg.Ledger.DSN = getEnv("LEDGER_DSN", cfg.Ledger.DSN)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
}

// APIKey returns the credential for the configured provider.
func (c LLMConfig) APIKey() string {
	switch strings.ToLower(c.Provider) {
	case ProviderGemini:
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// ModelName returns the configured model or the provider default.
func (c LLMConfig) ModelName() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	if strings.ToLower(c.Provider) == ProviderGemini {
		return "gemini-2.0-flash"
	}
	return "gpt-4o-mini"
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsSeconds accepts either a Go duration ("500ms") or a bare number of
// seconds ("0.5").
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := ParseSeconds(value); err == nil {
		return d
	}
	return defaultValue
}

// ParseSeconds parses "1.5" as seconds and anything else as a Go duration.
func ParseSeconds(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(f * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", value, err)
	}
	return d, nil
}

// Validate validates the loaded configuration, including the credential of
// the selected provider.
func (c *Config) Validate() error {
	if err := c.ValidateSettings(); err != nil {
		return err
	}
	if c.LLM.APIKey() == "" {
		envVar := "OPENAI_API_KEY"
		if strings.ToLower(c.LLM.Provider) == ProviderGemini {
			envVar = "GEMINI_API_KEY"
		}
		return ConfigurationError(envVar+" is required", nil)
	}
	return nil
}

// ValidateSettings checks everything but credentials; commands that never
// call the model use it.
func (c *Config) ValidateSettings() error {
	v := NewValidator()
	v.Field("batch.papers_dir", c.Batch.PapersDir, Required)
	v.Field("batch.inter_call_delay", c.Batch.InterCallDelay, NonNegativeDuration)
	v.Field("pdf.backend", c.PDF.Backend, OneOf(PDFBackendTabula, PDFBackendLedongthuc))
	v.Field("pdf.max_pages", c.PDF.MaxPages, Positive)
	v.Field("pdf.max_excerpt_chars", c.PDF.MaxExcerptChars, Positive)
	v.Field("llm.provider", c.LLM.Provider, OneOf(ProviderOpenAI, ProviderGemini))
	v.Field("llm.timeout", c.LLM.Timeout, NonNegativeDuration)
	v.Field("output.path", c.Output.Path, Required)
	v.Field("output.mode", c.Output.Mode, OneOf(WriteModeOverwrite, WriteModeCreate, WriteModeAppend))
	return ValidateAndReturnError(v)
}
