package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PAPERS_DIR", "INTER_CALL_DELAY", "PDF_BACKEND", "MAX_PAGES", "MAX_EXCERPT_CHARS",
		"LLM_PROVIDER", "LLM_MODEL", "LLM_BASE_URL", "LLM_TIMEOUT",
		"OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY",
		"OUTPUT_PATH", "OUTPUT_MODE", "LEDGER_DSN", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigFile_Defaults(t *testing.T) {
	clearConfigEnv(t)
	cfg, err := LoadConfigFile("")
	require.NoError(t, err)

	assert.Equal(t, "./Papers", cfg.Batch.PapersDir)
	assert.Equal(t, 500*time.Millisecond, cfg.Batch.InterCallDelay)
	assert.Equal(t, PDFBackendTabula, cfg.PDF.Backend)
	assert.Equal(t, 3, cfg.PDF.MaxPages)
	assert.Equal(t, 8000, cfg.PDF.MaxExcerptChars)
	assert.Equal(t, ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.ModelName())
	assert.Equal(t, "./papers_affiliations.csv", cfg.Output.Path)
	assert.Equal(t, WriteModeOverwrite, cfg.Output.Mode)
	assert.Empty(t, cfg.Ledger.DSN)

	require.NoError(t, cfg.ValidateSettings())
	err = cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadConfigFile_Layering(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "scholarscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
batch:
  papers_dir: /data/papers
  inter_call_delay: 2s
pdf:
  backend: ledongthuc
  max_pages: 2
llm:
  provider: gemini
  model: gemini-file-model
output:
  path: out.xlsx
`), 0o644))

	t.Setenv("LLM_MODEL", "gemini-env-model")
	t.Setenv("INTER_CALL_DELAY", "0.25")
	t.Setenv("GOOGLE_API_KEY", "g-key")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/papers", cfg.Batch.PapersDir)
	assert.Equal(t, 250*time.Millisecond, cfg.Batch.InterCallDelay, "env overrides file")
	assert.Equal(t, PDFBackendLedongthuc, cfg.PDF.Backend)
	assert.Equal(t, 2, cfg.PDF.MaxPages)
	assert.Equal(t, 8000, cfg.PDF.MaxExcerptChars, "unset keys keep defaults")
	assert.Equal(t, "gemini-env-model", cfg.LLM.ModelName())
	assert.Equal(t, "g-key", cfg.LLM.APIKey())
	assert.Equal(t, "out.xlsx", cfg.Output.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFile_Errors(t *testing.T) {
	clearConfigEnv(t)

	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfiguration)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("batch: [unterminated"), 0o644))
	_, err = LoadConfigFile(bad)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLoadConfigFile_DelayFormats(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    time.Duration
		wantErr bool
	}{
		{name: "float seconds", yaml: "inter_call_delay: 0.5", want: 500 * time.Millisecond},
		{name: "integer seconds", yaml: "inter_call_delay: 2", want: 2 * time.Second},
		{name: "duration string", yaml: "inter_call_delay: 750ms", want: 750 * time.Millisecond},
		{name: "seconds key", yaml: "inter_call_delay_seconds: 1.5", want: 1500 * time.Millisecond},
		{name: "not a delay", yaml: "inter_call_delay: soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			path := filepath.Join(t.TempDir(), "scholarscout.yaml")
			require.NoError(t, os.WriteFile(path, []byte("batch:\n  papers_dir: ./in\n  "+tt.yaml+"\n"), 0o644))

			cfg, err := LoadConfigFile(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Batch.InterCallDelay)
			assert.Equal(t, "./in", cfg.Batch.PapersDir)
		})
	}
}

func TestLoadConfigFile_IgnoresUnparsableEnv(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("MAX_PAGES", "many")
	t.Setenv("INTER_CALL_DELAY", "later")

	cfg, err := LoadConfigFile("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.PDF.MaxPages)
	assert.Equal(t, 500*time.Millisecond, cfg.Batch.InterCallDelay)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero delay", mutate: func(c *Config) { c.Batch.InterCallDelay = 0 }},
		{name: "empty papers dir", mutate: func(c *Config) { c.Batch.PapersDir = " " }, wantErr: "batch.papers_dir"},
		{name: "negative delay", mutate: func(c *Config) { c.Batch.InterCallDelay = -time.Second }, wantErr: "batch.inter_call_delay"},
		{name: "unknown backend", mutate: func(c *Config) { c.PDF.Backend = "ocr" }, wantErr: "pdf.backend"},
		{name: "zero pages", mutate: func(c *Config) { c.PDF.MaxPages = 0 }, wantErr: "pdf.max_pages"},
		{name: "negative chars", mutate: func(c *Config) { c.PDF.MaxExcerptChars = -5 }, wantErr: "pdf.max_excerpt_chars"},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "anthropic" }, wantErr: "llm.provider"},
		{name: "unknown mode", mutate: func(c *Config) { c.Output.Mode = "merge" }, wantErr: "output.mode"},
		{name: "empty output", mutate: func(c *Config) { c.Output.Path = "" }, wantErr: "output.path"},
		{name: "gemini without key", mutate: func(c *Config) { c.LLM.Provider = ProviderGemini }, wantErr: "GEMINI_API_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.LLM.OpenAIAPIKey = "sk-test"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "0.5", want: 500 * time.Millisecond},
		{in: " 2 ", want: 2 * time.Second},
		{in: "750ms", want: 750 * time.Millisecond},
		{in: "1m", want: time.Minute},
		{in: "soon", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeconds(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
