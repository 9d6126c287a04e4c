// Package fetch retrieves HTML pages over HTTP.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"policyscraper/internal/model"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultUserAgent    = "policyscraper/1.0 (+https://transparency.meta.com community standards archiver)"
	DefaultMaxBodyBytes = 10 << 20
	defaultMaxRedirects = 5
)

// Response is a fetched page. Non-2xx responses are returned as well; the
// caller decides how to treat the status code.
type Response struct {
	Body       string
	StatusCode int
}

// Fetcher retrieves the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client fetches pages with a bounded timeout and a descriptive user agent.
type Client struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	headers      map[string]string
	maxBodyBytes int64
	logger       *zap.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBodyBytes = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates an HTTP Fetcher.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:      DefaultTimeout,
		userAgent:    DefaultUserAgent,
		headers:      map[string]string{"Accept": "text/html,application/xhtml+xml"},
		maxBodyBytes: DefaultMaxBodyBytes,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= defaultMaxRedirects {
				return errors.New("too many redirects")
			}
			return nil
		},
	}

	return c
}

// Fetch retrieves the body of targetURL.
func (c *Client) Fetch(ctx context.Context, targetURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("failed to fetch URL",
			zap.String("url", targetURL),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		c.logger.Warn("failed to read response body",
			zap.String("url", targetURL),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("fetched URL",
		zap.String("url", targetURL),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("content_length", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	return &Response{Body: string(body), StatusCode: resp.StatusCode}, nil
}

// Classify maps a transport error to its in-band reason: timeout or
// network_error.
func Classify(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ETIMEOUT
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ETIMEOUT
	}
	return model.ENETWORK
}

// IsSuccess reports whether statusCode is 2xx.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode <= 299
}
