package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/foodcritic-dev/foodcritic/internal/cli/endpoint"
)

// DefaultUserAgent is sent when no other User-Agent is configured
const DefaultUserAgent = "foodcritic-cli"

// TokenSource exposes the current bearer token ("" when anonymous)
type TokenSource interface {
	Token() string
}

// ExpirySignaler is told when the backend rejects the session's token
type ExpirySignaler interface {
	SignalExpired()
}

// Client represents an HTTP client for the foodcritic API
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	expiry     ExpirySignaler
	validate   *validator.Validate
	log        zerolog.Logger
	userAgent  string
	timeout    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithSession makes the client attach the session's token to requests
func WithSession(tokens TokenSource) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithExpirySignal makes the client report rejected tokens
func WithExpirySignal(expiry ExpirySignaler) Option {
	return func(c *Client) {
		c.expiry = expiry
	}
}

// WithLogger sets the client's logger
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithTimeout sets the overall per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// New creates a new API client for baseURL, e.g. http://localhost:8080/api
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		validate:  validator.New(),
		log:       zerolog.Nop(),
		userAgent: DefaultUserAgent,
		timeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.SetHTTPClient(&http.Client{Timeout: c.timeout})
	return c
}

// SetHTTPClient sets a custom HTTP client. Its transport is wrapped with the
// credential and session-expiry interceptors.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	wrapped := *httpClient
	wrapped.Transport = NewTransport(httpClient.Transport, c.tokens, c.expiry, c.userAgent, c.log)
	c.httpClient = &wrapped
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a caller-built request through the interceptors. The caller owns
// the response body. A caller-set Authorization header is left untouched.
// Without a declared classification the route is inferred from the path
// below the client's base URL.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req.WithContext(endpoint.WithBase(req.Context(), c.baseURL)))
}

// doJSON sends body as JSON and decodes the response into out (when non-nil)
func (c *Client) doJSON(ctx context.Context, class endpoint.Classification, method, path string, query url.Values, body any, out any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
		contentType = "application/json"
	}
	return c.send(ctx, class, method, path, query, reader, contentType, out)
}

func (c *Client) send(ctx context.Context, class endpoint.Classification, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(endpoint.WithClassification(ctx, class), method, target, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkResponse(req, resp); err != nil {
		return err
	}

	return decodeBody(resp.Body, out)
}

func decodeBody(body io.Reader, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, body)
		return nil
	}

	// Some endpoints answer with a bare string, quoted or not
	if s, ok := out.(*string); ok {
		raw, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		trimmed := strings.TrimSpace(string(raw))
		if strings.HasPrefix(trimmed, `"`) {
			if err := json.Unmarshal([]byte(trimmed), s); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			return nil
		}
		*s = trimmed
		return nil
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) validateRequest(req any) error {
	if err := c.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}
