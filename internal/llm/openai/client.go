package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/llm"
)

const systemPrompt = "You are a precise information extraction assistant. You answer with JSON only."

// Complete implements llm.Completer using chat/completions with temperature 0
// and the json_object response format. Every call is a fresh request.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.complete.start",
		"req_id", rid,
		"run_id", common.RunIDFromContext(ctx),
		"paper", common.PaperNameFromContext(ctx),
		"provider", "openai",
		"model", c.cfg.Model,
		"prompt_len", len(prompt),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     0,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.PostJSON(ctx, c.http, llm.Request{URL: endpoint, Body: body, Headers: headers, ID: rid}, c.logger)
	if err != nil {
		var se *llm.StatusError
		status := 0
		if errors.As(err, &se) {
			status = se.Status
		}
		c.logger.Error("llm.complete.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		if se != nil {
			return "", common.ServiceError(fmt.Sprintf("openai status %d: %s", se.Status, apiErrorMessage(se.Body)), err)
		}
		return "", common.ServiceError("openai request failed", err)
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.ServiceError("decode openai response", err)
	}
	if cc.Error != nil {
		return "", common.ServiceError("openai error: "+cc.Error.Message, nil)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.complete.no_choices",
			"req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.ServiceError("no choices in openai response", nil)
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.logger.Info("llm.complete.ok",
		"req_id", rid,
		"provider", "openai",
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// apiErrorMessage pulls error.message out of an OpenAI error body, falling
// back to the first bytes of the body.
func apiErrorMessage(raw []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
