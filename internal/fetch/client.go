package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/net/proxy"

	"github.com/nao1215/domaincrawl/internal/model"
)

const (
	// DefaultTimeout bounds a single request including redirects and body read.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize is the number of body bytes read per response.
	DefaultMaxBodySize int64 = 10 * 1024 * 1024

	// DefaultMaxRedirects is the number of redirects followed before the
	// last response is returned as is.
	DefaultMaxRedirects = 10

	// DefaultUserAgent identifies the crawler to servers.
	DefaultUserAgent = "domaincrawl/1.0 (+https://github.com/nao1215/domaincrawl)"
)

// Client fetches URLs over HTTP.
type Client struct {
	http        *http.Client
	maxBodySize int64
	logger      *slog.Logger
}

type clientConfig struct {
	timeout      time.Duration
	maxBodySize  int64
	maxRedirects int
	userAgent    string
	headers      map[string]string
	proxyAddress string
	transport    http.RoundTripper
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxBodySize sets how many body bytes are read per response.
func WithMaxBodySize(n int64) Option {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxBodySize = n
		}
	}
}

// WithMaxRedirects sets the redirect limit.
func WithMaxRedirects(n int) Option {
	return func(c *clientConfig) {
		if n >= 0 {
			c.maxRedirects = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *clientConfig) {
		c.headers = headers
	}
}

// WithProxy routes all connections through the SOCKS5 proxy at address
// ("host:port"). An empty address means direct connections.
func WithProxy(address string) Option {
	return func(c *clientConfig) {
		c.proxyAddress = address
	}
}

// WithTransport sets the base transport. It is mainly useful in tests and
// takes precedence over WithProxy.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.transport = rt
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// New creates a Client.
//
// The proxy address is validated here but not dialed; an unreachable proxy
// surfaces as a fetch error on the first request.
func New(opts ...Option) (*Client, error) {
	cfg := clientConfig{
		timeout:      DefaultTimeout,
		maxBodySize:  DefaultMaxBodySize,
		maxRedirects: DefaultMaxRedirects,
		userAgent:    DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	base := cfg.transport
	if base == nil {
		t, err := newTransport(cfg.proxyAddress)
		if err != nil {
			return nil, err
		}
		base = t
	}

	maxRedirects := cfg.maxRedirects
	return &Client{
		http: &http.Client{
			Transport: &headerInjectingTransport{
				base:      base,
				userAgent: cfg.userAgent,
				headers:   cfg.headers,
			},
			Timeout: cfg.timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		maxBodySize: cfg.maxBodySize,
		logger:      cfg.logger,
	}, nil
}

func newTransport(proxyAddress string) (*http.Transport, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
	transport.MaxIdleConnsPerHost = 4
	transport.IdleConnTimeout = 30 * time.Second

	if proxyAddress == "" {
		return transport, nil
	}
	if !isValidProxyAddress(proxyAddress) {
		return nil, ErrInvalidProxyAddress
	}

	dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	transport.Proxy = nil
	if cd, ok := dialer.(proxy.ContextDialer); ok {
		transport.DialContext = cd.DialContext
	} else {
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	}
	return transport, nil
}

// isValidProxyAddress checks for "host:port" with a numeric port in range.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// Fetch downloads rawURL.
//
// Any HTTP response, whatever its status, is returned as a FetchResult with
// a nil error. An error is returned only when no response was obtained;
// it wraps ErrRequest.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*model.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRequest, rawURL, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRequest, rawURL, err)
	}
	defer resp.Body.Close()

	// One byte past the cap tells a body of exactly maxBodySize from a longer one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of %s: %w", ErrRequest, rawURL, err)
	}
	truncated := int64(len(body)) > c.maxBodySize
	if truncated {
		body = body[:c.maxBodySize]
	}

	result := &model.FetchResult{
		Status:      resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		Truncated:   truncated,
	}
	if resp.StatusCode != http.StatusOK {
		result.ErrorDetail = resp.Status
	}

	c.logger.Debug("fetched",
		"url", rawURL,
		"final_url", result.FinalURL,
		"status", result.Status,
		"bytes", len(body),
		"truncated", truncated,
	)
	return result, nil
}

// headerInjectingTransport wraps an http.RoundTripper to set the
// User-Agent and extra headers on every request.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
