// Package reasoning is the single abstraction over the external LLM
// service: one chat-completions call per invocation, plus extraction of a
// JSON payload from the free-text response. It owns translation of
// upstream failures into the service's error taxonomy.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/BRANOPODCAST/ReviewScope/internal/logging"
)

// systemInstruction constrains every stage call: JSON only, never
// accusatory. This is a content contract enforced by convention, not
// structurally verifiable.
const systemInstruction = "You are an expert analyst specializing in review integrity assessment. " +
	"Always respond with valid JSON only. Never accuse reviews of being fake - " +
	"focus on patterns and signals."

const defaultTimeout = 120 * time.Second

// Invoker is the stage-facing interface. Satisfied by *Client and by test
// stubs.
type Invoker interface {
	// Ready reports whether the invoker is configured to make calls.
	// Callers check it before spending quota or starting a stage.
	Ready() error
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Config holds client construction options.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
	// RequestsPerSec paces outbound calls so bursts of concurrent
	// analyses do not trip the provider's limiter. Zero disables pacing.
	RequestsPerSec int
}

// Client invokes the chat-completions endpoint. Synchronous: one upstream
// call in flight per invocation, no batching or streaming.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logging.Logger
}

// NewClient creates a reasoning client. The API key may be empty here;
// Invoke reports ErrMissingAPIKey so the failure surfaces per-request.
func NewClient(cfg Config, logger logging.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.RequestsPerSec)
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

// Ready reports ErrMissingAPIKey when the client has no credential to
// send. A deployment defect, not a transient upstream condition.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Invoke sends one chat request and returns the model's free-text
// response. Failures are mapped to the package's error kinds and never
// retried here.
func (c *Client) Invoke(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("wait for outbound pacing: %w", err)
		}
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Reasoning service unreachable", logging.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.logger.Warn("Reasoning service error",
			logging.Int("status", resp.StatusCode),
			logging.String("body", string(errText)),
		)
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", ErrRateLimited
		case http.StatusPaymentRequired:
			return "", ErrQuotaExhausted
		default:
			return "", &UpstreamError{StatusCode: resp.StatusCode}
		}
	}

	var chat chatResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&chat); decodeErr != nil {
		return "", fmt.Errorf("decode chat response: %w", decodeErr)
	}

	content := ""
	if len(chat.Choices) > 0 {
		content = chat.Choices[0].Message.Content
	}

	c.logger.Debug("Reasoning call complete",
		logging.Duration("elapsed", time.Since(start)),
		logging.Int("response_chars", len(content)),
	)
	return content, nil
}
