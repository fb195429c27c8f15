package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jpalmerr/finboard/internal/fetch"
)

// DefaultBaseURL is the Alpha Vantage query endpoint.
const DefaultBaseURL = "https://www.alphavantage.co/query"

// ErrMissingAPIKey is returned by [New] when no API key is supplied.
var ErrMissingAPIKey = errors.New("provider api key is required")

// Envelope keys the provider uses to signal throttling or bad requests
// inside an HTTP 200 response.
var softErrorKeys = []string{"Note", "Error Message", "Information"}

const (
	quoteKey      = "Global Quote"
	seriesKeyPart = "Time Series"
)

// Interval selects the granularity of a time series.
type Interval string

const (
	Daily   Interval = "daily"
	Weekly  Interval = "weekly"
	Monthly Interval = "monthly"
)

// Function returns the provider function name for the interval. Unknown
// intervals fall back to daily.
func (i Interval) Function() string {
	switch i {
	case Weekly:
		return "TIME_SERIES_WEEKLY"
	case Monthly:
		return "TIME_SERIES_MONTHLY"
	default:
		return "TIME_SERIES_DAILY"
	}
}

// Valid reports whether i is one of the known intervals.
func (i Interval) Valid() bool {
	return i == Daily || i == Weekly || i == Monthly
}

// QuoteParams are the request parameters of a single quote, without the
// API key. They double as the cache identity of the request.
func QuoteParams(symbol string) map[string]any {
	return map[string]any{"function": "GLOBAL_QUOTE", "symbol": symbol}
}

// SeriesParams are the request parameters of a time series, without the
// API key.
func SeriesParams(symbol string, interval Interval) map[string]any {
	return map[string]any{"function": interval.Function(), "symbol": symbol}
}

// SoftError returns the message of a provider envelope that reports
// throttling or a bad request.
func SoftError(doc map[string]any) (string, bool) {
	for _, k := range softErrorKeys {
		if v, ok := doc[k]; ok && v != nil && v != "" {
			return fmt.Sprint(v), true
		}
	}
	return "", false
}

// Client performs typed requests against the reference market data
// provider.
//
// Soft failures (throttling notes, error envelopes, empty or malformed
// bodies) are logged and reported as nil data with a nil error. Only
// transport and HTTP status failures are returned as errors.
type Client struct {
	http    *fetch.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a [Client].
type Option func(*Client)

// WithBaseURL points the client at a different query endpoint, such as a
// mock server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithRequestsPerMinute throttles every request made through the client
// with a shared token bucket. Zero disables throttling.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
		}
	}
}

// WithLogger sets the logger used for soft failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFetchClient shares an HTTP client with other data sources.
func WithFetchClient(fc *fetch.Client) Option {
	return func(c *Client) {
		if fc != nil {
			c.http = fc
		}
	}
}

// New creates a provider client. apiKey is required.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = fetch.NewClient()
	}
	return c, nil
}

// BaseURL returns the query endpoint requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Quote returns the raw "Global Quote" object for symbol, keyed by the
// provider's decorated names ("05. price"). nil when the provider returned
// no quote.
func (c *Client) Quote(ctx context.Context, symbol string) (map[string]any, error) {
	doc, err := c.query(ctx, QuoteParams(symbol))
	if err != nil || doc == nil {
		return nil, err
	}

	quote, ok := doc[quoteKey].(map[string]any)
	if !ok || len(quote) == 0 {
		c.logger.Warn("provider returned no quote", "symbol", symbol)
		return nil, nil
	}
	return quote, nil
}

// Series returns the time series object for symbol, keyed by date. nil
// when the response carries no series.
func (c *Client) Series(ctx context.Context, symbol string, interval Interval) (map[string]any, error) {
	doc, err := c.query(ctx, SeriesParams(symbol, interval))
	if err != nil || doc == nil {
		return nil, err
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !strings.Contains(k, seriesKeyPart) {
			continue
		}
		if series, ok := doc[k].(map[string]any); ok {
			return series, nil
		}
	}
	c.logger.Warn("provider returned no time series", "symbol", symbol, "interval", string(interval))
	return nil, nil
}

func (c *Client) query(ctx context.Context, params map[string]any) (map[string]any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	withKey := make(map[string]any, len(params)+1)
	for k, v := range params {
		withKey[k] = v
	}
	withKey["apikey"] = c.apiKey

	raw, err := c.http.FetchJSON(ctx, c.baseURL, withKey)
	if err != nil {
		if errors.Is(err, fetch.ErrMalformedBody) {
			c.logger.Warn("provider returned malformed body", "function", params["function"], "error", err)
			return nil, nil
		}
		return nil, err
	}

	doc, ok := raw.(map[string]any)
	if !ok || len(doc) == 0 {
		c.logger.Warn("provider returned empty body", "function", params["function"])
		return nil, nil
	}
	if msg, soft := SoftError(doc); soft {
		c.logger.Warn("provider soft error",
			"function", params["function"],
			"symbol", params["symbol"],
			"message", msg,
		)
		return nil, nil
	}
	return doc, nil
}
