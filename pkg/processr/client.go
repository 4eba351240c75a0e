package processr

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	userAgent = "Embdr-Go/0.1.0"

	defaultHost               = "app.embdr.com"
	defaultPort               = 80
	defaultProtocol           = "http"
	defaultBasePath           = "/api"
	defaultHTTPTimeout        = 30 * time.Second
	defaultInitialPollDelay   = 2000 * time.Millisecond
	defaultBackoffDenominator = 4
)

// Config captures the connection settings for the Embdr API. The value is
// consumed once at construction time; changing it afterwards has no effect on
// an existing client.
type Config struct {
	Host           string
	Port           int
	Protocol       string
	BasePath       string
	APIKey         string
	StrictSSL      bool
	TimeoutSeconds int
}

// DefaultConfig returns the connection defaults for the hosted service.
// StrictSSL is on; callers must supply their own API key.
func DefaultConfig() Config {
	return Config{
		Host:      defaultHost,
		Port:      defaultPort,
		Protocol:  defaultProtocol,
		BasePath:  defaultBasePath,
		StrictSSL: true,
	}
}

// Client talks to the Embdr resources API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	initialPollDelay   time.Duration
	backoffDenominator int
	maxPollAttempts    int
	sleeper            func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a structured logger for request and poll tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithInitialPollDelay overrides the delay before the first poll (defaults to
// 2000ms).
func WithInitialPollDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay > 0 {
			c.initialPollDelay = delay
		}
	}
}

// WithBackoffDenominator overrides the divisor applied to the previous poll
// delay when computing the next delay's increment (defaults to 4).
func WithBackoffDenominator(denominator int) Option {
	return func(c *Client) {
		if denominator > 0 {
			c.backoffDenominator = denominator
		}
	}
}

// WithMaxPollAttempts installs a ceiling on the number of polls issued per
// Process call. Zero (the default) polls until the server reports a terminal
// status.
func WithMaxPollAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts >= 0 {
			c.maxPollAttempts = attempts
		}
	}
}

// WithSleeper overrides how poll delays are waited out (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New constructs a client from the supplied configuration. Zero-valued
// connection fields fall back to the hosted-service defaults.
func New(cfg Config, opts ...Option) *Client {
	if strings.TrimSpace(cfg.Host) == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Protocol) == "" {
		cfg.Protocol = defaultProtocol
	}
	if strings.TrimSpace(cfg.BasePath) == "" {
		cfg.BasePath = defaultBasePath
	}
	cfg.BasePath = "/" + strings.Trim(strings.TrimSpace(cfg.BasePath), "/")
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	client := &Client{
		cfg:                cfg,
		httpClient:         &http.Client{Timeout: timeout},
		initialPollDelay:   defaultInitialPollDelay,
		backoffDenominator: defaultBackoffDenominator,
	}
	if !cfg.StrictSSL {
		client.httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// baseURL renders protocol://host[:port]. Scheme-default ports are omitted so
// rendered URLs stay readable.
func (c *Client) baseURL() string {
	host := c.cfg.Host
	switch {
	case c.cfg.Protocol == "http" && c.cfg.Port == 80:
	case c.cfg.Protocol == "https" && c.cfg.Port == 443:
	default:
		host = fmt.Sprintf("%s:%d", host, c.cfg.Port)
	}
	return fmt.Sprintf("%s://%s%s", c.cfg.Protocol, host, c.cfg.BasePath)
}

// Fetch retrieves the current state of a resource by identifier. Reserved
// characters in the id are percent-encoded into a single path segment.
func (c *Client) Fetch(ctx context.Context, id string) (*Resource, error) {
	endpoint := c.baseURL() + "/resources/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resource Resource
	if err := json.Unmarshal(body, &resource); err != nil {
		return nil, fmt.Errorf("decode resource: %w", err)
	}
	return &resource, nil
}

// do sends a prepared request with authentication headers and returns the
// response body. Any status >= 400 becomes an APIError; connection failures
// wrap ErrTransport.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.cfg.APIKey != "" {
		// The API authenticates with the key as a basic-auth user and an
		// empty password.
		req.SetBasicAuth(c.cfg.APIKey, "")
	}

	if c.logger != nil {
		c.logger.Debug("api request", "method", req.Method, "url", req.URL.String())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A failure while streaming the request body carries the stream
		// sentinel out through the transport error.
		if errors.Is(err, ErrStreamRead) {
			return nil, fmt.Errorf("send submission body: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(resp.StatusCode, body)
	}
	return body, nil
}
