// Package finboard provides an embeddable, self-refreshing dashboard of
// market data widgets.
//
// Each [Widget] is bound to a data source decided once from its
// configuration: an arbitrary JSON endpoint, a provider time series, a
// single quote, a watchlist batch or the top movers ranking. A [Board]
// fetches every widget immediately and then once per refresh interval,
// caches responses and pushes state changes to the browser dashboard.
//
// # Quick Start
//
//	w, _ := finboard.NewWidget("aapl", finboard.WidgetCard,
//	    finboard.WithSymbol("AAPL"),
//	    finboard.WithFieldMappings(finboard.FieldMapping{
//	        DisplayName: "Price", FieldPath: "05. price", Format: finboard.FormatCurrency,
//	    }),
//	)
//	board, _ := finboard.New(
//	    finboard.WithAPIKey(os.Getenv("ALPHA_VANTAGE_KEY")),
//	    finboard.WithWidget(w),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	board.Start(ctx) // blocks until context is cancelled
//
// # Configuration
//
// Boards, widgets and grids use functional options. [NewWidgetGrid]
// expands symbols and intervals into one widget per combination:
//
//	grid, err := finboard.NewWidgetGrid("majors", finboard.WidgetChart,
//	    finboard.WithGridSymbols("AAPL", "MSFT", "NVDA"),
//	    finboard.WithGridIntervals(finboard.IntervalDaily, finboard.IntervalWeekly),
//	)
//
// The config package loads the same settings from YAML.
//
// # Fields
//
// The fields package resolves dotted paths inside fetched documents,
// formats values for display and explores unknown responses to suggest
// mappings. The dashboard API exposes all three.
//
// # Architecture
//
//   - internal/fetch: HTTP GET with query parameters and JSON decoding
//   - internal/provider: Alpha Vantage client with soft error detection
//   - internal/cache: TTL response cache, in memory or in Redis
//   - internal/acquire: source classification, routing and quote batches
//   - internal/poller: one refresh loop per widget
//   - internal/store: in-memory state with pub/sub for live updates
//   - internal/server: REST API and Server-Sent Events
//   - dashboard: embedded web UI assets
//
// The internal packages are not part of the public API and may change
// without notice.
package finboard
