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

	"github.com/aoperat/centumbob/internal/common"
)

const (
	defaultVisionTimeout = 90 * time.Second
	// failed vision calls echo the provider's error document; keep only its head
	maxErrorBody = 2 << 10
)

// StatusError is a non-2xx reply from a vision provider.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider replied %d: %s", e.Status, e.Body)
}

// Retryable reports whether the provider was throttling or failing rather than rejecting
// the request.
func (e *StatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// Unwrap lets throttled and failing providers surface as common.ErrUnavailable.
func (e *StatusError) Unwrap() error {
	if e.Retryable() {
		return common.ErrUnavailable
	}
	return nil
}

// SendJSON POSTs body as JSON to url and returns the raw reply with its status code.
// The request id of ctx, when present, tags every log line so a vision call can be
// traced back to the HTTP request or inbox job that caused it.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultVisionTimeout}
	}
	callID := common.RequestIDFromContext(ctx)
	if callID == "" {
		callID = uuid.NewString()
	}
	log := logger.With("req_id", callID)

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode vision request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("build vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	log.Debug("llm.http.request", "url", url, "payload_bytes", len(payload))
	resp, err := client.Do(req)
	if err != nil {
		log.Error("llm.http.send.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, fmt.Errorf("send vision request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read vision reply: %w", err)
	}
	log.Info("llm.http.response", "status", resp.StatusCode, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		head := raw
		if len(head) > maxErrorBody {
			head = head[:maxErrorBody]
		}
		return raw, resp.StatusCode, &StatusError{Status: resp.StatusCode, Body: string(head)}
	}
	return raw, resp.StatusCode, nil
}
