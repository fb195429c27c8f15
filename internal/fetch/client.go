package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/spf13/cast"
)

const maxResponseBodySize = 4 << 20 // 4MB, daily series for a full history are large

// connection pooling limits; every widget shares one client
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// ErrMalformedBody is returned by [Client.FetchJSON] when the response body
// is not valid JSON.
var ErrMalformedBody = errors.New("malformed response body")

// StatusError reports a response with a 4xx or 5xx status code.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// Response holds the result of an HTTP request made by [Client].
type Response struct {
	// Body contains the response body, limited to 4MB.
	Body []byte

	// StatusCode is zero if the request failed before receiving a response.
	StatusCode int

	Latency time.Duration

	// Error is set for transport failures and for status codes >= 400.
	Error error
}

// Client issues GET requests against data endpoints.
//
// Timeouts are applied per request via context rather than on the
// underlying http.Client, so callers may pass their own deadline.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a [Client].
type Option func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the pooled http.Client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a [Client] with connection pooling:
//   - MaxIdleConns: 100 total idle connections
//   - MaxIdleConnsPerHost: 10 idle connections per host
//   - MaxConnsPerHost: 10 concurrent connections per host
//   - IdleConnTimeout: 60 seconds before closing idle connections
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get requests endpoint with params merged into its query string and
// returns a structured [Response]. Params override query values already
// present in endpoint; nil params are skipped and other values are
// stringified.
//
// Get always returns a Response; errors are captured in the Error field.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]any) Response {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	target, err := BuildURL(endpoint, params)
	if err != nil {
		return Response{Latency: time.Since(start), Error: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = redact(ue.URL)
		}
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}

	out := Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
	if resp.StatusCode >= http.StatusBadRequest {
		out.Error = &StatusError{StatusCode: resp.StatusCode, URL: redact(target)}
	}
	return out
}

// FetchRaw is [Client.Get] returning the body and error directly.
func (c *Client) FetchRaw(ctx context.Context, endpoint string, params map[string]any) ([]byte, error) {
	resp := c.Get(ctx, endpoint, params)
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Body, nil
}

// FetchJSON requests endpoint and decodes the body. The result is whatever
// the document holds: an object, an array or a scalar.
func (c *Client) FetchJSON(ctx context.Context, endpoint string, params map[string]any) (any, error) {
	body, err := c.FetchRaw(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return doc, nil
}

// Close closes idle connections. The client remains usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	c.httpClient.CloseIdleConnections()
}

// BuildURL merges params into the query string of endpoint. Keys are
// encoded in sorted order.
func BuildURL(endpoint string, params map[string]any) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if len(params) == 0 {
		return u.String(), nil
	}

	q := u.Query()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := params[k]
		if v == nil {
			continue
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			b, jerr := json.Marshal(v)
			if jerr != nil {
				return "", fmt.Errorf("param %q: %w", k, err)
			}
			s = string(b)
		}
		q.Set(k, s)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// redact hides credentials in URLs placed in error messages.
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	for _, k := range []string{"apikey", "api_key", "token"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
