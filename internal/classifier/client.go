// Package classifier submits file contents to the classification oracle.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/panelscan/internal/ratelimit"
	"github.com/scan-io-git/panelscan/pkg/shared/config"
	"github.com/scan-io-git/panelscan/pkg/shared/errors"
	"github.com/scan-io-git/panelscan/pkg/shared/httpclient"
)

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	http        *resty.Client
	model       string
	maxAttempts int
	logger      hclog.Logger
}

// NewClient builds an oracle client from the global configuration. Every attempt passes the shared pacing gate.
func NewClient(cfg *config.Config, limiter *ratelimit.Limiter, logger hclog.Logger) *Client {
	rc := httpclient.InitializeRestyClient(logger, cfg).
		SetBaseURL(cfg.Oracle.BaseURL).
		SetAuthToken(cfg.Oracle.APIKey).
		SetHeader("Content-Type", "application/json")

	attempts := cfg.Oracle.MaxAttempts
	if attempts < 1 {
		attempts = config.DefaultMaxAttempts
	}

	return &Client{
		http:        limiter.Attach(rc),
		model:       cfg.Oracle.Model,
		maxAttempts: attempts,
		logger:      logger,
	}
}

// Classify scores text. Failures of any kind are retried up to the attempt budget and
// then collapse to Indeterminate; Classify never returns an error.
func (c *Client) Classify(ctx context.Context, text string) Result {
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			c.logger.Warn("classification cancelled", "attempt", attempt, "error", ctx.Err())
			break
		}

		result, err := c.classifyOnce(ctx, text)
		if err == nil {
			return result
		}
		c.logger.Warn("classification attempt failed", "attempt", attempt, "max_attempts", c.maxAttempts, "error", err)
	}
	return Indeterminate()
}

func (c *Client) classifyOnce(ctx context.Context, text string) (Result, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: SystemPrompt},
				{Role: "user", Content: text},
			},
		}).
		Post("/chat/completions")
	if err != nil {
		return Result{}, fmt.Errorf("call oracle: %w", err)
	}
	if !resp.IsSuccess() {
		return Result{}, errors.NewAPIError(resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.String())
	}

	var chat chatResponse
	if err := json.Unmarshal(resp.Body(), &chat); err != nil {
		return Result{}, fmt.Errorf("decode oracle response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return Result{}, fmt.Errorf("oracle response had no choices")
	}

	return ParseVerdict(chat.Choices[0].Message.Content)
}
