package sommelier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxErrorBodyBytes = 4 << 10

// Client is the sommelier SDK entry point. Safe for concurrent use.
type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	obs     *observer
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("sommelier: base URL required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("sommelier: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("sommelier: unsupported scheme %q", u.Scheme)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{baseURL: u, apiKey: cfg.apiKey, http: hc, obs: obs}, nil
}

// Ask sends a question and returns the answer.
func (c *Client) Ask(ctx context.Context, question string, opts ...AskOption) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.record("ask", start, askResult(ans), err, "request_id", ans.RequestID) }()

	req := askRequest{Question: question}
	for _, o := range opts {
		o(&req)
	}
	body, err := json.Marshal(req)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: encode request: %w", err)
	}
	if err = c.do(ctx, http.MethodPost, "/v1/ask", nil, body, &ans); err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return ans, nil
}

// Classify returns the classification of a question without answering it.
func (c *Client) Classify(ctx context.Context, question string) (cls Classification, err error) {
	start := time.Now()
	defer func() { c.obs.record("classify", start, string(cls.Domain), err) }()

	var resp classifyResponse
	if err = c.do(ctx, http.MethodGet, "/v1/classify", url.Values{"q": {question}}, nil, &resp); err != nil {
		return Classification{}, fmt.Errorf("classify: %w", err)
	}
	return resp.Classification, nil
}

// Health returns the aggregated service health. An unhealthy service is reported
// through the status, not as an error.
func (c *Client) Health(ctx context.Context) (hs HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.record("health", start, healthResult(hs), err) }()

	err = c.do(ctx, http.MethodGet, "/health", nil, nil, &hs)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && hs.Status != "" {
		return hs, nil
	}
	if err != nil {
		return HealthStatus{}, fmt.Errorf("health: %w", err)
	}
	return hs, nil
}

// Usage returns the synthesis token budget. Returns ErrNotFound when the service
// does not track a budget.
func (c *Client) Usage(ctx context.Context) (u Usage, err error) {
	start := time.Now()
	defer func() { c.obs.record("usage", start, resultOK, err) }()

	if err = c.do(ctx, http.MethodGet, "/v1/usage", nil, nil, &u); err != nil {
		return Usage{}, fmt.Errorf("usage: %w", err)
	}
	return u, nil
}

// do performs a request and decodes the JSON body into out. Non-2xx responses
// return *APIError; for 503 the body is still decoded into out.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Code != "" {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		_ = json.Unmarshal(raw, out)
	}
	return apiErr
}
