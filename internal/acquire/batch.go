package acquire

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// DefaultUniverse is the symbol set ranked for top movers.
var DefaultUniverse = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "NVDA", "META", "NFLX"}

// DefaultTopMoversLimit bounds the number of ranked movers returned.
const DefaultTopMoversLimit = 10

// QuoteFunc fetches one normalized quote. A nil quote with a nil error
// means the provider had no data for the symbol.
type QuoteFunc func(ctx context.Context, symbol string) (*Quote, error)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// BatchFetcher fetches quotes one symbol at a time with a fixed delay
// between consecutive requests, keeping a batch inside the provider's
// per-minute quota.
type BatchFetcher struct {
	quote    QuoteFunc
	delay    time.Duration
	sleep    SleepFunc
	universe []string
	limit    int
	logger   *slog.Logger
}

// BatchOption configures a [BatchFetcher].
type BatchOption func(*BatchFetcher)

// WithDelay sets the pause between consecutive requests. Zero disables it.
func WithDelay(d time.Duration) BatchOption {
	return func(b *BatchFetcher) {
		if d >= 0 {
			b.delay = d
		}
	}
}

// WithSleep replaces the wait between requests, mostly for tests.
func WithSleep(sleep SleepFunc) BatchOption {
	return func(b *BatchFetcher) {
		if sleep != nil {
			b.sleep = sleep
		}
	}
}

// WithUniverse replaces [DefaultUniverse].
func WithUniverse(symbols []string) BatchOption {
	return func(b *BatchFetcher) {
		if len(symbols) > 0 {
			b.universe = append([]string(nil), symbols...)
		}
	}
}

// WithTopMoversLimit replaces [DefaultTopMoversLimit].
func WithTopMoversLimit(n int) BatchOption {
	return func(b *BatchFetcher) {
		if n > 0 {
			b.limit = n
		}
	}
}

// WithBatchLogger sets the logger used for per-item failures.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchFetcher) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBatchFetcher creates a fetcher that obtains each quote through quote.
func NewBatchFetcher(quote QuoteFunc, opts ...BatchOption) *BatchFetcher {
	b := &BatchFetcher{
		quote:    quote,
		sleep:    sleepContext,
		universe: DefaultUniverse,
		limit:    DefaultTopMoversLimit,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FetchBatch fetches symbols strictly in order, waiting the configured
// delay between consecutive requests. Symbols that fail or have no data are
// logged and omitted, so the result may be shorter than symbols.
//
// If ctx is cancelled the quotes gathered so far are returned together with
// ctx.Err().
func (b *BatchFetcher) FetchBatch(ctx context.Context, symbols []string) ([]Quote, error) {
	results := make([]Quote, 0, len(symbols))

	for i, symbol := range symbols {
		if i > 0 && b.delay > 0 {
			if err := b.sleep(ctx, b.delay); err != nil {
				return results, err
			}
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		q, err := b.quote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			b.logger.Warn("batch quote failed", "symbol", symbol, "error", err)
			continue
		}
		if q == nil {
			b.logger.Debug("batch quote empty", "symbol", symbol)
			continue
		}
		results = append(results, *q)
	}
	return results, nil
}

// TopMovers fetches the universe and returns the quotes with the largest
// percent change first. Ties keep universe order.
func (b *BatchFetcher) TopMovers(ctx context.Context) ([]Quote, error) {
	quotes, err := b.FetchBatch(ctx, b.universe)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].ChangePercent > quotes[j].ChangePercent
	})
	if len(quotes) > b.limit {
		quotes = quotes[:b.limit]
	}
	return quotes, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
