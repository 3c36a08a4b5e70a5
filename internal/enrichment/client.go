// Package enrichment proxies evidence images to the external analysis
// service. The service is best-effort: every failure mode degrades to a
// fallback payload and the caller's request still succeeds.
package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"sitewise/internal/platform/metrics"
	"sitewise/pkg/platform/circuit"
)

// FallbackAnalysis is returned whenever the analysis service cannot produce
// a usable result. The wire shape is fixed; clients key off ai_observation.
var FallbackAnalysis = json.RawMessage(`{"ai_observation":"AI Analysis Unavailable","suggested_severity":null}`)

// FallbackChatAnswer is the degraded chat response.
const FallbackChatAnswer = "Error connecting to AI Assistant."

const maxResponseBytes = 1 << 20

// Client calls the analysis service over HTTP with a bounded timeout. A
// breaker tracks consecutive upstream failures so sustained outages surface
// as a single state change in the logs instead of one warning per request.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
	breaker *circuit.Breaker
}

func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
		metrics: m,
		breaker: circuit.New("analysis", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(2)),
	}
}

// Degraded reports whether the analysis service is currently considered down.
func (c *Client) Degraded() bool {
	return c.breaker.IsOpen()
}

// Analyze sends the stored file's local path to the analyzer and returns the
// upstream JSON verbatim. On any failure it returns FallbackAnalysis; it
// never returns an error because enrichment must not fail the upload.
func (c *Client) Analyze(ctx context.Context, filePath string) json.RawMessage {
	payload, err := c.post(ctx, "/analyze", map[string]string{"file_path": filePath})
	if err != nil {
		c.degrade(ctx, "analyze", err)
		return FallbackAnalysis
	}
	return payload
}

// ChatResponse is the analyzer's answer payload.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// Chat forwards a free-text query to the analyzer's assistant endpoint,
// degrading to a fixed answer on failure.
func (c *Client) Chat(ctx context.Context, query string) ChatResponse {
	payload, err := c.post(ctx, "/chat", map[string]string{"query": query})
	if err != nil {
		c.degrade(ctx, "chat", err)
		return ChatResponse{Answer: FallbackChatAnswer}
	}
	var resp ChatResponse
	if err := json.Unmarshal(payload, &resp); err != nil || resp.Answer == "" {
		c.degrade(ctx, "chat", fmt.Errorf("malformed chat payload"))
		return ChatResponse{Answer: FallbackChatAnswer}
	}
	return resp
}

// post issues one bounded call and validates that the body is JSON. The
// context deadline also cancels the in-flight call so nothing outlives the
// timeout.
func (c *Client) post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call analysis service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("analysis service returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("malformed analysis payload")
	}

	if _, change := c.breaker.RecordSuccess(); change.Closed && c.logger != nil {
		c.logger.InfoContext(ctx, "analysis service recovered", "breaker", c.breaker.Name())
	}
	return json.RawMessage(raw), nil
}

func (c *Client) degrade(ctx context.Context, op string, err error) {
	if c.metrics != nil {
		c.metrics.EnrichmentFallbacks.Inc()
	}
	if _, change := c.breaker.RecordFailure(); change.Opened && c.logger != nil {
		c.logger.ErrorContext(ctx, "analysis service circuit opened",
			"breaker", c.breaker.Name(),
		)
	}
	if c.logger != nil {
		c.logger.WarnContext(ctx, "analysis service degraded to fallback",
			"op", op,
			"error", err.Error(),
		)
	}
}
