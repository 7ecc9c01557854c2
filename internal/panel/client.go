// Package panel is the REST adapter for the hosting panel API.
package panel

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

const defaultPerPage = 100

// Client talks to the panel with two tokens of distinct scope: the application
// token manages servers, the client token reads their files. Every request
// passes the shared pacing gate.
type Client struct {
	application *resty.Client
	files       *resty.Client
	logger      hclog.Logger
	perPage     int
}

// NewClient builds a panel client from the global configuration.
func NewClient(cfg *config.Config, limiter *ratelimit.Limiter, logger hclog.Logger) *Client {
	return &Client{
		application: newRestyClient(cfg, cfg.Panel.ApplicationToken, limiter, logger),
		files:       newRestyClient(cfg, cfg.Panel.ClientToken, limiter, logger),
		logger:      logger,
		perPage:     defaultPerPage,
	}
}

func newRestyClient(cfg *config.Config, token string, limiter *ratelimit.Limiter, logger hclog.Logger) *resty.Client {
	client := httpclient.InitializeRestyClient(logger, cfg).
		SetBaseURL(cfg.Panel.BaseURL).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return limiter.Attach(client)
}

// checkResponse turns transport failures and non-2xx answers into errors.
func checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return errors.NewAPIError(resp.Request.Method, resp.Request.URL, resp.StatusCode(), resp.String())
	}
	return nil
}

// unmarshalResponse is a generic function to parse JSON body from response into the provided type.
func unmarshalResponse[T any](resp *resty.Response, out *T) error {
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) request(ctx context.Context, rc *resty.Client) *resty.Request {
	return rc.R().SetContext(ctx)
}
