package finboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jpalmerr/finboard/dashboard"
	"github.com/jpalmerr/finboard/internal/acquire"
	"github.com/jpalmerr/finboard/internal/cache"
	"github.com/jpalmerr/finboard/internal/fetch"
	"github.com/jpalmerr/finboard/internal/poller"
	"github.com/jpalmerr/finboard/internal/provider"
	"github.com/jpalmerr/finboard/internal/server"
	"github.com/jpalmerr/finboard/internal/store"
)

const defaultPort = 8080

// ErrMissingAPIKey is returned by [New] when no provider key is configured.
var ErrMissingAPIKey = errors.New("api key is required")

// Board keeps a set of widgets fresh and serves them on a live dashboard.
//
// Board is created using [New] with functional options and started with
// [Board.Start]:
//
//	board, err := finboard.New(
//	    finboard.WithAPIKey(os.Getenv("ALPHA_VANTAGE_KEY")),
//	    finboard.WithWidget(w),
//	)
//	if err != nil {
//	    slog.Error("failed to create board", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	board.Start(ctx) // blocks until context cancelled
type Board struct {
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

// New creates a [Board] with the given options.
//
// An API key ([WithAPIKey]) and at least one widget are required. Other
// options have defaults:
//   - Port: 8080
//   - Cache: in memory, 1024 responses, 60 second TTL
//   - Batch delay: 12 seconds
//   - Request timeout: 30 seconds
//
// Returns [ErrMissingAPIKey] without a key, and an error if no widgets are
// configured, widget ids are duplicated or any option is invalid.
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		port:           defaultPort,
		cacheCapacity:  cache.DefaultCapacity,
		batchDelay:     provider.DefaultBatchDelay,
		requestTimeout: fetch.DefaultTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(cfg.widgets) == 0 {
		return nil, errors.New("at least one widget is required")
	}

	seen := make(map[string]bool, len(cfg.widgets))
	for _, w := range cfg.widgets {
		if seen[w.id] {
			return nil, fmt.Errorf("duplicate widget id: %q", w.id)
		}
		seen[w.id] = true
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Board{
		title:             cfg.title,
		apiKey:            cfg.apiKey,
		widgets:           cfg.widgets,
		port:              cfg.port,
		logger:            logger,
		stateCallbacks:    cfg.stateCallbacks,
		cacheCapacity:     cfg.cacheCapacity,
		redisURL:          cfg.redisURL,
		providerBaseURL:   cfg.providerBaseURL,
		batchDelay:        cfg.batchDelay,
		requestsPerMinute: cfg.requestsPerMinute,
		requestTimeout:    cfg.requestTimeout,
	}, nil
}

// Start begins fetching widget data and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - Every widget fetches immediately, then once per refresh interval
//   - The HTTP server starts on the configured port
//   - The dashboard is available at http://localhost:<port>
//
// Returns nil on graceful shutdown. Returns an error if the cache, the
// provider client or the HTTP server cannot be set up.
func (b *Board) Start(ctx context.Context) error {
	b.logger.Info("finboard starting", "widget_count", len(b.widgets))
	b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.port))

	if ctx.Err() != nil {
		return nil
	}

	responses, closeCache, err := b.newCache(ctx)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	defer closeCache()

	httpClient := fetch.NewClient(fetch.WithTimeout(b.requestTimeout))
	defer httpClient.Close()

	provOpts := []provider.Option{
		provider.WithFetchClient(httpClient),
		provider.WithLogger(b.logger),
		provider.WithRequestsPerMinute(b.requestsPerMinute),
	}
	if b.providerBaseURL != "" {
		provOpts = append(provOpts, provider.WithBaseURL(b.providerBaseURL))
	}
	prov, err := provider.New(b.apiKey, provOpts...)
	if err != nil {
		return fmt.Errorf("failed to create provider client: %w", err)
	}

	router := acquire.NewRouter(responses, httpClient, prov,
		acquire.WithLogger(b.logger),
		acquire.WithBatchOptions(acquire.WithDelay(b.batchDelay)),
	)

	widgetStore := store.NewMemoryStore()
	byID := make(map[string]Widget, len(b.widgets))
	for _, w := range b.widgets {
		byID[w.id] = w
		widgetStore.Update(toStoreState(w, poller.Result{
			WidgetID: w.id,
			Source:   w.source,
			State:    poller.State{Status: poller.StatusIdle},
		}))
	}

	manager := poller.NewManager(b.pollerWidgets(), router, b.logger)
	manager.Start(ctx)

	// track the results consumer to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range manager.Results() {
			w, ok := byID[result.WidgetID]
			if !ok {
				continue
			}

			// store first, callbacks fire after the dashboard is updated
			widgetStore.Update(toStoreState(w, result))

			if result.Status != poller.StatusSuccess && result.Status != poller.StatusFailed {
				continue
			}

			public := toPublicState(result)
			for _, cb := range b.stateCallbacks {
				invokeCallbackSafe(cb, public, b.logger)
			}

			logAttrs := []any{
				"widget", result.WidgetID,
				"source", sourceString(result.Source),
				"status", result.Status,
				"latency_ms", result.Latency.Milliseconds(),
			}
			if result.Err != nil {
				b.logger.Warn("fetch failed", append(logAttrs, "error", result.Err.Error())...)
			} else {
				b.logger.Debug("fetch completed", logAttrs...)
			}
		}
	}()

	cleanup := func() {
		manager.Stop() // closes results channel
		wg.Wait()
	}

	httpServer := server.NewServer(widgetStore, b.port, dashboard.Assets, b.title, b.logger,
		server.WithRefresher(manager),
		server.WithProber(httpClient),
	)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	b.logger.Info("finboard stopped")
	return nil
}

// newCache returns the response cache and a function releasing it.
func (b *Board) newCache(ctx context.Context) (cache.Cache, func(), error) {
	if b.redisURL != "" {
		client, err := cache.Connect(ctx, b.redisURL)
		if err != nil {
			return nil, nil, err
		}
		r := cache.NewRedis(client, b.logger)
		b.logger.Info("caching responses in redis")
		return r, func() { _ = r.Close() }, nil
	}

	m, err := cache.NewMemory(b.cacheCapacity)
	if err != nil {
		return nil, nil, err
	}
	return m, func() {}, nil
}

func (b *Board) pollerWidgets() []poller.Widget {
	out := make([]poller.Widget, len(b.widgets))
	for i, w := range b.widgets {
		out[i] = poller.Widget{
			ID:       w.id,
			Source:   w.source,
			Interval: w.refreshInterval,
		}
	}
	return out
}

// Widgets returns a copy of the configured widgets.
func (b *Board) Widgets() []Widget {
	cp := make([]Widget, len(b.widgets))
	copy(cp, b.widgets)
	return cp
}

// Port returns the configured HTTP port for the dashboard server.
func (b *Board) Port() int {
	return b.port
}

// Title returns the dashboard title.
func (b *Board) Title() string {
	return b.title
}

// toStoreState converts a poller result to the dashboard's JSON shape.
func toStoreState(w Widget, r poller.Result) store.WidgetState {
	var errStr *string
	if r.Err != nil {
		s := r.Err.Error()
		errStr = &s
	}

	return store.WidgetState{
		ID:                 w.id,
		Title:              w.title,
		Type:               string(w.wtype),
		Source:             sourceString(r.Source),
		Kind:               string(sourceKind(r.Source)),
		Status:             string(r.Status),
		Loading:            r.Loading(),
		Data:               r.Data,
		Error:              errStr,
		Mappings:           w.FieldMappings(),
		RefreshIntervalSec: int64(w.refreshInterval / time.Second),
		LatencyMs:          r.Latency.Milliseconds(),
		UpdatedAt:          r.UpdatedAt,
	}
}

// toPublicState converts a poller result to the callback payload.
func toPublicState(r poller.Result) WidgetState {
	return WidgetState{
		WidgetID:  r.WidgetID,
		Kind:      sourceKind(r.Source),
		Source:    sourceString(r.Source),
		Status:    Status(r.Status),
		Data:      r.Data,
		Error:     r.Err,
		Latency:   r.Latency,
		UpdatedAt: r.UpdatedAt,
	}
}

func sourceKind(src acquire.Source) SourceKind {
	if src == nil {
		return SourceUnconfigured
	}
	return SourceKind(src.Kind())
}

func sourceString(src acquire.Source) string {
	if src == nil {
		return acquire.Unconfigured{}.String()
	}
	return src.String()
}

// invokeCallbackSafe calls a state callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(WidgetState), state WidgetState, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("state callback panicked",
				"panic", r,
				"widget", state.WidgetID,
			)
		}
	}()
	cb(state)
}
