package api

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

	"github.com/rshade/stockdesk/internal/logging"
	"github.com/rshade/stockdesk/internal/query"
)

// Client defaults.
const (
	DefaultTimeout = 30 * time.Second
	apiPathPrefix  = "/api/"
	maxBodyBytes   = 16 << 20
	maxErrorBytes  = 4 << 10
	headerReqID    = "X-Request-ID"
)

// Client calls the dashboard REST backend.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a Client for the backend at baseURL (scheme and host, optional path prefix).
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing base URL: %w", ErrValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: base URL must be http or https, got %q", ErrValidation, baseURL)
	}

	c := &Client{
		baseURL:   u,
		http:      &http.Client{Timeout: DefaultTimeout},
		userAgent: "stockdesk",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Get issues GET /api/{resource}?values with the bearer token and returns the raw body
// of a successful response. An empty token fails with ErrAuthRequired before any request.
func (c *Client) Get(ctx context.Context, resource string, values url.Values, token string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, resource, values, nil, token)
}

// PostJSON issues POST /api/{resource} with body encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, resource string, body any, token string) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		return nil, fmt.Errorf("%w: encoding request body: %w", ErrValidation, err)
	}
	return c.do(ctx, http.MethodPost, resource, nil, buf, token)
}

func (c *Client) do(
	ctx context.Context,
	method, resource string,
	values url.Values,
	body io.Reader,
	token string,
) ([]byte, error) {
	if token == "" {
		return nil, ErrAuthRequired
	}
	if strings.TrimSpace(resource) == "" {
		return nil, fmt.Errorf("%w: resource name is required", ErrValidation)
	}

	endpoint := c.endpoint(resource, values)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", ErrValidation, err)
	}

	reqID := logging.NewID()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(headerReqID, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := logging.FromContext(ctx)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Ctx(ctx).
			Str("component", "api").
			Str("method", method).
			Str("resource", resource).
			Str("request_id", reqID).
			Err(err).
			Msg("request failed")
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	log.Debug().Ctx(ctx).
		Str("component", "api").
		Str("method", method).
		Str("resource", resource).
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, readServerError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response body: %w", ErrNetwork, err)
	}
	return data, nil
}

func (c *Client) endpoint(resource string, values url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + apiPathPrefix + url.PathEscape(strings.Trim(resource, "/"))
	if len(values) > 0 {
		u.RawQuery = values.Encode()
	}
	return u.String()
}

// readServerError extracts a message from an error response. The backend reports
// {"message": "..."} or {"error": "..."}; any other body is used as plain text.
func readServerError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
	se := &ServerError{Status: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if jsonErr := json.Unmarshal(data, &payload); jsonErr == nil {
		se.Message = payload.Message
		if se.Message == "" {
			se.Message = payload.Error
		}
	} else {
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}

// ResourceFetcher fetches pages of one backend resource.
type ResourceFetcher[T any] struct {
	client   *Client
	resource string
}

// NewResourceFetcher binds client to resource, e.g. "offers" or "inventory".
func NewResourceFetcher[T any](client *Client, resource string) *ResourceFetcher[T] {
	return &ResourceFetcher[T]{client: client, resource: resource}
}

// Resource returns the bound resource name.
func (f *ResourceFetcher[T]) Resource() string {
	return f.resource
}

// Fetch retrieves and decodes the page described by p.
func (f *ResourceFetcher[T]) Fetch(ctx context.Context, p query.Params, token string) (Page[T], error) {
	body, err := f.client.Get(ctx, f.resource, p.Values(), token)
	if err != nil {
		return Page[T]{}, err
	}
	page, err := DecodePage[T](body)
	if err != nil {
		return Page[T]{}, fmt.Errorf("decoding %s: %w", f.resource, err)
	}
	return page, nil
}

// IsCanceled reports whether err stems from context cancellation or deadline.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
