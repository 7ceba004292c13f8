// Package hub talks to the Hugging Face Inference API. It is the only
// place the service touches transformer inference: tokenization and the
// forward pass happen behind the hosted text-classification pipeline.
package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	retry "github.com/sethvargo/go-retry"
)

// Scores maps a raw model label to its probability.
type Scores map[string]float64

// Client is an HTTP client for hosted text-classification pipelines.
type Client struct {
	baseURL        string
	token          string
	maxSequenceLen int
	reqTimeout     time.Duration
	maxRetries     uint64
	httpClient     *http.Client
}

// Option tweaks client construction.
type Option func(*Client)

// WithMaxSequenceLen sets the truncation length hint sent to the pipeline.
func WithMaxSequenceLen(n int) Option {
	return func(c *Client) { c.maxSequenceLen = n }
}

// WithMaxRetries overrides the retry budget for transient failures.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithHTTPClient replaces the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New constructs a Client for the given API base URL.
func New(baseURL, token string, reqTimeout, connectTimeout time.Duration, opts ...Option) *Client {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   connectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout stays 0 on the client: every request carries a
	// context-based deadline applied in Classify.
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		reqTimeout: reqTimeout,
		maxRetries: 3,
		httpClient: &http.Client{Transport: tr, Timeout: 0},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL reports the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

type classifyRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters *classifyParams  `json:"parameters,omitempty"`
	Options    *classifyOptions `json:"options,omitempty"`
}

type classifyParams struct {
	Truncation bool `json:"truncation,omitempty"`
	MaxLength  int  `json:"max_length,omitempty"`
	TopK       int  `json:"top_k,omitempty"`
}

type classifyOptions struct {
	WaitForModel bool `json:"wait_for_model,omitempty"`
	UseCache     bool `json:"use_cache"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type apiError struct {
	Error         json.RawMessage `json:"error"`
	EstimatedTime float64         `json:"estimated_time"`
}

// Classify runs the text-classification pipeline of model on text and
// returns the per-label probabilities. Transient failures (model still
// loading, 5xx, rate limiting) are retried with exponential backoff
// until the context deadline or the retry budget is exhausted.
func (c *Client) Classify(ctx context.Context, model, text string) (Scores, error) {
	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}

	var scores Scores
	b := retry.NewExponential(500 * time.Millisecond)
	b = retry.WithCappedDuration(10*time.Second, b)
	err := retry.Do(ctx, retry.WithMaxRetries(c.maxRetries, b), func(ctx context.Context) error {
		s, err := c.classifyOnce(ctx, model, text)
		if err != nil {
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		scores = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scores, nil
}

func (c *Client) classifyOnce(ctx context.Context, model, text string) (Scores, error) {
	payload := classifyRequest{
		Inputs:  text,
		Options: &classifyOptions{WaitForModel: true, UseCache: true},
	}
	if c.maxSequenceLen > 0 {
		payload.Parameters = &classifyParams{Truncation: true, MaxLength: c.maxSequenceLen}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal classify request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/models/"+model, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build classify request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(err, "call inference API")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp, model)
	}
	return decodeScores(resp.Body)
}

// decodeScores accepts both response shapes the pipeline emits:
// [[{"label","score"},...]] for single inputs, and the flat
// [{"label","score"},...] some deployments return.
func decodeScores(r io.Reader) (Scores, error) {
	raw, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read classify response")
	}
	var nested [][]labelScore
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		return toScores(nested[0]), nil
	}
	var flat []labelScore
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return toScores(flat), nil
	}
	return nil, errors.Errorf("unexpected classify response: %s", truncateBody(raw))
}

func toScores(ls []labelScore) Scores {
	s := make(Scores, len(ls))
	for _, l := range ls {
		s[l.Label] = l.Score
	}
	return s
}

func decodeError(resp *http.Response, model string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var ae apiError
	_ = json.Unmarshal(raw, &ae)

	switch resp.StatusCode {
	case http.StatusServiceUnavailable:
		if ae.EstimatedTime > 0 || bytes.Contains(raw, []byte("loading")) {
			return modelLoadingError{model: model, estimatedTime: ae.EstimatedTime}
		}
		return statusError{model: model, status: resp.StatusCode, body: truncateBody(raw)}
	case http.StatusTooManyRequests:
		return rateLimitedError{model: model}
	case http.StatusUnauthorized, http.StatusForbidden:
		return authError{status: resp.StatusCode}
	default:
		return statusError{model: model, status: resp.StatusCode, body: truncateBody(raw)}
	}
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) > max {
		b = b[:max]
	}
	return strings.TrimSpace(string(b))
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if IsModelLoading(err) || IsRateLimited(err) {
		return true
	}
	var se statusError
	if errors.As(err, &se) {
		return se.status >= 500
	}
	return false
}
