package gemini

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Arupreza/ScholarScout/internal/common"
)

const DefaultModel = "gemini-2.0-flash"

// Config for the Gemini client.
type Config struct {
	APIKey  string
	BaseURL string // optional endpoint override
	Model   string
	Timeout time.Duration // per call
}

// Client implements llm.Completer on the Gemini API.
type Client struct {
	client *genai.Client
	cfg    Config
	logger *slog.Logger
}

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, common.ConfigurationError("GEMINI_API_KEY is required", nil)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, common.ConfigurationError("create gemini client", err)
	}
	return &Client{client: client, cfg: cfg, logger: logger}, nil
}

// Model returns the model identifier requests are sent with.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete sends prompt with temperature 0 and a JSON response MIME type.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.logger.Info("llm.complete.start",
		"run_id", common.RunIDFromContext(ctx),
		"paper", common.PaperNameFromContext(ctx),
		"provider", "gemini",
		"model", c.cfg.Model,
		"prompt_len", len(prompt),
	)

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		c.logger.Error("llm.complete.http_error",
			"provider", "gemini", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.ServiceError("gemini generate content", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", common.ServiceError("no candidates in gemini response", nil)
	}

	content := strings.TrimSpace(resp.Text())
	c.logger.Info("llm.complete.ok",
		"provider", "gemini",
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}
