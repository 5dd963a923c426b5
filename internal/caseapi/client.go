// Package caseapi is the client of the case management REST backend.
package caseapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/evidenx/evidenx/internal/errors"
	"github.com/evidenx/evidenx/internal/models"
	"golang.org/x/time/rate"
)

var (
	ErrNotFound     = errors.NewSentinel("not found")
	ErrUnauthorized = errors.NewSentinel("unauthorized")
	ErrStatus       = errors.NewSentinel("unexpected status")
)

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 5.0
	defaultBurst             = 10
	// maxErrorBody limits how much of an error response is kept for logging.
	maxErrorBody = 512
)

// Config configures the client. Zero values fall back to the defaults.
type Config struct {
	BaseURL           string
	Token             string
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// Client calls the backend with the bearer token, JSON accept header and the tunnel header that skips the
// ngrok browser warning page.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu      sync.Mutex
	retryAt time.Time
}

func New(cfg Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
	if err != nil {
		return nil, errors.Wrap(err, "parse base URL", slog.String("base_url", cfg.BaseURL))
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.New("base URL must be http or https", slog.String("base_url", cfg.BaseURL))
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    base,
		token:      cfg.Token,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		logger:     logger.With("source", "caseapi"),
	}, nil
}

// ListCases calls GET /cases/.
func (c *Client) ListCases(ctx context.Context) ([]models.Case, error) {
	var cases []models.Case
	if err := c.do(ctx, http.MethodGet, "cases/", nil, nil, &cases); err != nil {
		return nil, errors.Wrap(err, "list cases")
	}
	return cases, nil
}

// GetCase calls GET /cases/{id}.
func (c *Client) GetCase(ctx context.Context, id string) (models.Case, error) {
	var kase models.Case
	if err := c.do(ctx, http.MethodGet, "cases/"+url.PathEscape(id), nil, nil, &kase); err != nil {
		return models.Case{}, errors.Wrap(err, "get case", slog.String("case_id", id))
	}
	return kase, nil
}

// CreateCase calls POST /cases/ and returns the registered case.
func (c *Client) CreateCase(ctx context.Context, form any) (models.Case, error) {
	var kase models.Case
	if err := c.do(ctx, http.MethodPost, "cases/", nil, form, &kase); err != nil {
		return models.Case{}, errors.Wrap(err, "create case")
	}
	return kase, nil
}

// GetTimeline calls GET /timeline/case/{caseId}.
func (c *Client) GetTimeline(ctx context.Context, caseID string) ([]models.TimelineEvent, error) {
	var events []models.TimelineEvent
	if err := c.do(ctx, http.MethodGet, "timeline/case/"+url.PathEscape(caseID), nil, nil, &events); err != nil {
		return nil, errors.Wrap(err, "get timeline", slog.String("case_id", caseID))
	}
	return events, nil
}

// KnowledgeAnswer is the knowledge base response. Older backends reply with "response" and a single
// "videoTimestamp" instead of "answer" and "timestamps".
type KnowledgeAnswer struct {
	Query          string    `json:"query,omitempty"`
	Answer         string    `json:"answer,omitempty"`
	Response       string    `json:"response,omitempty"`
	Timestamps     []float64 `json:"timestamps,omitempty"`
	VideoTimestamp *float64  `json:"videoTimestamp,omitempty"`
}

// Text returns the answer text regardless of the response flavour.
func (a KnowledgeAnswer) Text() string {
	if a.Answer != "" {
		return a.Answer
	}
	return a.Response
}

// Seconds returns the referenced video timestamps regardless of the response flavour.
func (a KnowledgeAnswer) Seconds() []float64 {
	if len(a.Timestamps) > 0 {
		return a.Timestamps
	}
	if a.VideoTimestamp != nil {
		return []float64{*a.VideoTimestamp}
	}
	return nil
}

// QueryKnowledgeBase calls GET /video/search/{caseId}/query-knowledge-base?query=.
func (c *Client) QueryKnowledgeBase(ctx context.Context, caseID string, query string) (KnowledgeAnswer, error) {
	var answer KnowledgeAnswer
	path := "video/search/" + url.PathEscape(caseID) + "/query-knowledge-base"
	if err := c.do(ctx, http.MethodGet, path, url.Values{"query": {query}}, nil, &answer); err != nil {
		return KnowledgeAnswer{}, errors.Wrap(err, "query knowledge base", slog.String("case_id", caseID))
	}
	if answer.Query == "" {
		answer.Query = query
	}
	return answer, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if err := c.wait(ctx); err != nil {
		return errors.Wrap(err, "wait for rate limiter")
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: query.Encode()})
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reqBody = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Ngrok-Skip-Browser-Warning", "true")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request", slog.String("url", endpoint.Redacted()))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.LogAttrs(ctx, slog.LevelWarn, "could not close response body", errors.SlogError(closeErr))
		}
	}()
	c.logger.LogAttrs(ctx, slog.LevelDebug, "backend request",
		slog.String("method", method),
		slog.String("path", endpoint.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response", slog.String("path", endpoint.Path))
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	attrs := []slog.Attr{
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(snippet)),
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.Wrap(ErrNotFound, "backend response", attrs...)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrap(ErrUnauthorized, "backend response", attrs...)
	case http.StatusTooManyRequests:
		c.backoff(resp.Header.Get("Retry-After"))
	}
	return errors.Wrap(ErrStatus, "backend response", attrs...)
}

// wait blocks until the rate limiter and any backoff requested by the backend allow a request.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	retryAt := c.retryAt
	c.mu.Unlock()

	if delay := time.Until(retryAt); delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err() //nolint:wrapcheck // wrapped by caller
		case <-timer.C:
		}
	}
	return c.limiter.Wait(ctx) //nolint:wrapcheck // wrapped by caller
}

// backoff delays the next requests by the Retry-After seconds of a 429 response, one second by default.
func (c *Client) backoff(retryAfter string) {
	delay := time.Second
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		delay = time.Duration(seconds) * time.Second
	}
	c.mu.Lock()
	c.retryAt = time.Now().Add(delay)
	c.mu.Unlock()
}
