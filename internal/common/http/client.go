// internal/common/http/client.go
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "jobboard-listing/internal/common/errors"
	"jobboard-listing/internal/common/logger"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 8 << 20

// TokenSource supplies the bearer token for a request. An empty token means
// the request is sent without an Authorization header.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	UserAgent string
	Tokens    TokenSource
}

// Response is a fully read backend response.
type Response struct {
	Status    int
	Body      []byte
	RequestID string
}

type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *rate.Limiter
	tokens     TokenSource
	userAgent  string
	logger     logger.Logger
}

func NewClient(opts Options, log logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    base,
		limiter:    limiter,
		tokens:     opts.Tokens,
		userAgent:  opts.UserAgent,
		logger:     log.WithFields(map[string]interface{}{"component": "http-client"}),
	}, nil
}

// URL resolves path and query against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Get issues an authenticated GET and classifies failures:
// transport problems become NetworkError, non-2xx statuses UpstreamError.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post sends payload as a JSON body. Failures are classified like Get's.
func (c *Client) Post(ctx context.Context, path string, payload interface{}) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.NewValidationError("payload", err.Error())
	}
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, apperrors.NewNetworkError(fmt.Errorf("rate limiter: %w", err))
		}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), reqBody)
	if err != nil {
		return nil, apperrors.NewValidationError("request", err.Error())
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, apperrors.NewSessionError(err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		} else {
			c.logger.Debug("no auth token for request", map[string]interface{}{"path": path})
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apperrors.NewTimeoutError(err)
		}
		return nil, apperrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(ctx, err) {
			return nil, apperrors.NewTimeoutError(err)
		}
		return nil, apperrors.NewNetworkError(fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upErr := apperrors.NewUpstreamError(resp.StatusCode, serverMessage(body))
		upErr.WithMetadata("requestId", requestID).WithMetadata("path", path)
		return nil, upErr
	}

	return &Response{Status: resp.StatusCode, Body: body, RequestID: requestID}, nil
}

// GetJSON performs Get and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return apperrors.NewMalformedResponseError(resp.Status, err)
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// serverMessage extracts the backend's "message" (or "error") field, if any.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
