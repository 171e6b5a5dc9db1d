package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Request is one JSON POST to a completion endpoint.
type Request struct {
	URL     string
	Body    any
	Headers map[string]string
	// ID ties the transport log lines to the caller's; generated when empty.
	ID string
}

// StatusError is a non-2xx answer from the endpoint. Body keeps the response
// so providers can surface their own error message.
type StatusError struct {
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint returned status %d", e.Status)
}

// PostJSON sends req and returns the response body. Transport failures are
// returned as is, non-2xx answers as *StatusError, and bodies over
// maxResponseBytes as an error. Nothing is retried.
func PostJSON(ctx context.Context, client *http.Client, req Request, logger *slog.Logger) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 45 * time.Second}
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	start := time.Now()

	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")
	for k, v := range req.Headers {
		hreq.Header.Set(k, v)
	}

	resp, err := client.Do(hreq)
	if err != nil {
		logger.Debug("llm.http.send_error", "req_id", req.ID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", req.ID, "error", cerr)
		}
	}()

	// one byte over the cap tells a full body from a clipped one
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	logger.Debug("llm.http.exchange",
		"req_id", req.ID,
		"status", resp.StatusCode,
		"request_bytes", len(payload),
		"response_bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if len(raw) > maxResponseBytes {
		return nil, fmt.Errorf("response larger than %d bytes", maxResponseBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Status: resp.StatusCode, Body: raw}
	}
	return raw, nil
}
