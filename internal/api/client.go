// Package api is the HTTP client for the fleet monitoring backend.
//
// All calls go through a resty client with a bounded per-request timeout and
// a single retry on transport errors or 5xx responses. Non-2xx responses are
// returned as NETWORK errors; undecodable bodies as DECODE errors.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/rileyhilliard/ccdash/internal/errors"
)

// Endpoint paths.
const (
	AgentsPath     = "/api/agents"
	HistoryPath    = "/api/reports/history/"
	ServerInfoPath = "/api/server/info"
	TransferPath   = "/api/transfer/host-to-client"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultBaseURL = "http://127.0.0.1:5000"
	DefaultTimeout = 5 * time.Second
	DefaultRange   = "30m"
)

const bodySnippetLen = 200

// Config holds the client settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Retries is the number of extra attempts after a failed request.
	// Negative disables retries.
	Retries int
}

// Client talks to the monitoring backend.
type Client struct {
	baseURL    string
	timeout    time.Duration
	retries    int
	httpClient *resty.Client
	logger     zerolog.Logger
}

// NewClient creates a client for cfg.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(retries).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		AddRetryCondition(retryCondition)

	return &Client{
		baseURL:    baseURL,
		timeout:    timeout,
		retries:    retries,
		httpClient: httpClient,
		logger:     logger,
	}
}

// retryCondition retries idempotent requests on transport errors and 5xx.
// 4xx responses and uploads are never retried.
func retryCondition(resp *resty.Response, err error) bool {
	if resp != nil && resp.Request != nil && resp.Request.Method == http.MethodPost {
		return false
	}
	if err != nil {
		return true
	}
	return resp != nil && resp.StatusCode() >= 500
}

// BaseURL returns the normalised server URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Agents fetches the current roster. An empty array is a valid result.
func (c *Client) Agents(ctx context.Context) ([]AgentSnapshot, error) {
	var agents []AgentSnapshot
	if err := c.getJSON(ctx, AgentsPath, nil, &agents); err != nil {
		return nil, err
	}
	if agents == nil {
		agents = []AgentSnapshot{}
	}
	c.logger.Debug().Int("agents", len(agents)).Msg("roster fetched")
	return agents, nil
}

// History fetches samples for agentID over rng, newest first as served.
// An empty rng uses DefaultRange.
func (c *Client) History(ctx context.Context, agentID, rng string) ([]HistoryPoint, error) {
	if rng == "" {
		rng = DefaultRange
	}
	path := HistoryPath + url.PathEscape(agentID)

	var points []HistoryPoint
	if err := c.getJSON(ctx, path, url.Values{"range": {rng}}, &points); err != nil {
		return nil, err
	}
	if points == nil {
		points = []HistoryPoint{}
	}
	c.logger.Debug().
		Str("agent", agentID).
		Str("range", rng).
		Int("points", len(points)).
		Msg("history fetched")
	return points, nil
}

// ServerInfo fetches the server liveness payload.
func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	info := ServerInfo{}
	if err := c.getJSON(ctx, ServerInfoPath, nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	req := c.httpClient.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("request failed")
		return errors.NewNetwork(path, 0, err)
	}
	if err := checkStatus(path, resp); err != nil {
		c.logger.Warn().
			Int("status_code", resp.StatusCode()).
			Str("body", snippet(resp.Body())).
			Str("path", path).
			Msg("server returned non-2xx status")
		return err
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.WrapWithCode(err, errors.ErrDecode,
			fmt.Sprintf("Could not decode response from %s", path),
			"The server may be running an incompatible version")
	}
	return nil
}

func checkStatus(path string, resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	var cause error
	if body := snippet(resp.Body()); body != "" {
		cause = fmt.Errorf("%s", body)
	}
	return errors.NewNetwork(path, resp.StatusCode(), cause)
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > bodySnippetLen {
		s = s[:bodySnippetLen] + "..."
	}
	return s
}
