package finboard

import (
	"errors"
	"log/slog"
	"strings"
	"time"
)

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title             string
	apiKey            string
	widgets           []Widget
	port              int
	logger            *slog.Logger
	stateCallbacks    []func(WidgetState)
	cacheCapacity     int
	redisURL          string
	providerBaseURL   string
	batchDelay        time.Duration
	requestsPerMinute int
	requestTimeout    time.Duration
}

// Option is a function that configures a [Board] instance during construction.
//
// Options return an error if validation fails.
type Option func(*boardConfig) error

// WithAPIKey sets the market data provider key. It is required: [New]
// fails without one.
func WithAPIKey(key string) Option {
	return func(cfg *boardConfig) error {
		cfg.apiKey = strings.TrimSpace(key)
		return nil
	}
}

// WithWidget adds a single [Widget] to the board.
func WithWidget(w Widget) Option {
	return func(cfg *boardConfig) error {
		cfg.widgets = append(cfg.widgets, w)
		return nil
	}
}

// WithWidgets adds several widgets, e.g. the result of [NewWidgetGrid]:
//
//	grid, err := finboard.NewWidgetGrid("majors", finboard.WidgetChart,
//	    finboard.WithGridSymbols("AAPL", "MSFT"),
//	    finboard.WithGridIntervals(finboard.IntervalDaily),
//	)
//	board, err := finboard.New(
//	    finboard.WithAPIKey(key),
//	    finboard.WithWidgets(grid...),
//	)
func WithWidgets(widgets ...Widget) Option {
	return func(cfg *boardConfig) error {
		cfg.widgets = append(cfg.widgets, widgets...)
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server. Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the board. If not specified,
// [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithStateCallback registers a function called after every settled fetch
// cycle of every widget, i.e. on success and on failure.
//
// Multiple callbacks run in registration order. Callbacks are invoked
// synchronously from a single goroutine after the dashboard state has been
// updated; they must not block. Panics are recovered and logged.
//
// Example:
//
//	finboard.WithStateCallback(func(s finboard.WidgetState) {
//	    if s.Status == finboard.StatusFailed {
//	        log.Printf("%s: %v", s.WidgetID, s.Error)
//	    }
//	})
//
// Nil callbacks are silently ignored.
func WithStateCallback(cb func(WidgetState)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.stateCallbacks = append(cfg.stateCallbacks, cb)
		return nil
	}
}

// WithTitle sets the dashboard title displayed in the browser tab and
// header. Defaults to "FinBoard".
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}

// WithCacheCapacity bounds the number of responses held by the in-memory
// cache. Least recently used entries are evicted first. Defaults to 1024.
func WithCacheCapacity(n int) Option {
	return func(cfg *boardConfig) error {
		if n <= 0 {
			return errors.New("cache capacity must be positive")
		}
		cfg.cacheCapacity = n
		return nil
	}
}

// WithRedisURL caches responses in Redis instead of memory, sharing them
// between processes. Accepts redis:// and rediss:// URLs or host:port.
func WithRedisURL(u string) Option {
	return func(cfg *boardConfig) error {
		cfg.redisURL = strings.TrimSpace(u)
		return nil
	}
}

// WithProviderBaseURL overrides the provider's query URL, e.g. to point at
// a mock server.
func WithProviderBaseURL(u string) Option {
	return func(cfg *boardConfig) error {
		if err := validateEndpoint(u); err != nil {
			return err
		}
		cfg.providerBaseURL = u
		return nil
	}
}

// WithBatchDelay sets the pause between consecutive requests of a watchlist
// or top movers batch. Defaults to 12 seconds, which keeps a batch within
// the reference provider's free tier of 5 requests per minute.
//
// Returns an error if the delay is negative.
func WithBatchDelay(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d < 0 {
			return errors.New("batch delay cannot be negative")
		}
		cfg.batchDelay = d
		return nil
	}
}

// WithRequestsPerMinute caps provider requests across all widgets with a
// shared token bucket. Zero, the default, disables the cap.
func WithRequestsPerMinute(n int) Option {
	return func(cfg *boardConfig) error {
		if n < 0 {
			return errors.New("requests per minute cannot be negative")
		}
		cfg.requestsPerMinute = n
		return nil
	}
}

// WithRequestTimeout sets the timeout of each upstream HTTP request.
// Defaults to 30 seconds.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}
