package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpalmerr/finboard/internal/cache"
	"github.com/jpalmerr/finboard/internal/fetch"
	"github.com/jpalmerr/finboard/internal/provider"
)

// Logical endpoints used in cache keys for provider requests.
const (
	quoteEndpoint  = "quote"
	seriesEndpoint = "stock"
)

// EndpointFetcher fetches an arbitrary JSON endpoint.
type EndpointFetcher interface {
	FetchJSON(ctx context.Context, endpoint string, params map[string]any) (any, error)
}

// QuoteProvider is the reference market data provider.
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (map[string]any, error)
	Series(ctx context.Context, symbol string, interval provider.Interval) (map[string]any, error)
}

// Router runs the fetch operation chosen for a [Source].
//
// Custom endpoints, time series and single quotes go through the cache.
// Watchlist and top movers batches reuse cached single quotes, but their
// aggregate result is never cached: every refresh reruns the whole batch,
// delays included.
type Router struct {
	cache     cache.Cache
	endpoints EndpointFetcher
	quotes    QuoteProvider
	batch     *BatchFetcher
	logger    *slog.Logger
}

// RouterOption configures a [Router].
type RouterOption func(*routerConfig)

type routerConfig struct {
	logger    *slog.Logger
	batchOpts []BatchOption
}

// WithLogger sets the router logger.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(c *routerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBatchOptions configures the router's [BatchFetcher].
func WithBatchOptions(opts ...BatchOption) RouterOption {
	return func(c *routerConfig) {
		c.batchOpts = append(c.batchOpts, opts...)
	}
}

// NewRouter creates a router. The batch fetcher obtains each quote through
// the router's cached single quote path and defaults to
// [provider.DefaultBatchDelay] between requests.
func NewRouter(c cache.Cache, endpoints EndpointFetcher, quotes QuoteProvider, opts ...RouterOption) *Router {
	cfg := routerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Router{
		cache:     c,
		endpoints: endpoints,
		quotes:    quotes,
		logger:    cfg.logger,
	}

	batchOpts := append([]BatchOption{
		WithDelay(provider.DefaultBatchDelay),
		WithBatchLogger(cfg.logger),
	}, cfg.batchOpts...)
	r.batch = NewBatchFetcher(r.normalizedQuote, batchOpts...)
	return r
}

// Acquire fetches the data for src. A nil result with a nil error means
// there is no data: an unconfigured widget, a provider soft error or a
// response without the expected shape. Transport and HTTP failures are
// returned as errors.
func (r *Router) Acquire(ctx context.Context, src Source) (any, error) {
	switch s := src.(type) {
	case CustomEndpoint:
		return r.customEndpoint(ctx, s)
	case TimeSeries:
		return r.timeSeries(ctx, s)
	case TopMovers:
		quotes, err := r.batch.TopMovers(ctx)
		if err != nil {
			return nil, err
		}
		return values(quotes), nil
	case Watchlist:
		quotes, err := r.batch.FetchBatch(ctx, s.Symbols)
		if err != nil {
			return nil, err
		}
		return values(quotes), nil
	case SingleQuote:
		return r.singleQuote(ctx, s.Symbol)
	case Unconfigured, nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown source %T", src)
	}
}

func (r *Router) customEndpoint(ctx context.Context, s CustomEndpoint) (any, error) {
	key := cache.Key(s.Endpoint, s.Params)
	return r.cached(ctx, key, func() (any, error) {
		data, err := r.endpoints.FetchJSON(ctx, s.Endpoint, s.Params)
		if errors.Is(err, fetch.ErrMalformedBody) {
			r.logger.Warn("endpoint returned malformed body", "endpoint", s.Endpoint, "error", err)
			return nil, nil
		}
		return data, err
	})
}

func (r *Router) timeSeries(ctx context.Context, s TimeSeries) (any, error) {
	key := cache.Key(seriesEndpoint, provider.SeriesParams(s.Symbol, s.Interval))
	return r.cached(ctx, key, func() (any, error) {
		series, err := r.quotes.Series(ctx, s.Symbol, s.Interval)
		if err != nil || series == nil {
			return nil, err
		}
		return series, nil
	})
}

func (r *Router) singleQuote(ctx context.Context, symbol string) (any, error) {
	key := cache.Key(quoteEndpoint, provider.QuoteParams(symbol))
	return r.cached(ctx, key, func() (any, error) {
		quote, err := r.quotes.Quote(ctx, symbol)
		if err != nil || quote == nil {
			return nil, err
		}
		return quote, nil
	})
}

func (r *Router) normalizedQuote(ctx context.Context, symbol string) (*Quote, error) {
	raw, err := r.singleQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, nil
	}
	q := NormalizeQuote(m)
	return &q, nil
}

// cached serves key from the cache, or calls load and stores a non-nil
// result. Concurrent misses for the same key may both call load.
func (r *Router) cached(ctx context.Context, key string, load func() (any, error)) (any, error) {
	if v, ok := r.cache.Get(ctx, key); ok {
		r.logger.Debug("cache hit", "key", key)
		return v, nil
	}

	start := time.Now()
	v, err := load()
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	r.cache.Put(ctx, key, v)
	r.logger.Debug("cache fill", "key", key, "latency_ms", time.Since(start).Milliseconds())
	return v, nil
}
