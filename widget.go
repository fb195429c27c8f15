package finboard

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/finboard/fields"
	"github.com/jpalmerr/finboard/internal/acquire"
)

const defaultRefreshInterval = 30 * time.Second

// WidgetType is the visual kind of a widget. It takes part in deciding where
// the widget's data comes from.
type WidgetType string

const (
	WidgetCard  WidgetType = "card"
	WidgetTable WidgetType = "table"
	WidgetChart WidgetType = "chart"
)

// Valid reports whether t is a known widget type.
func (t WidgetType) Valid() bool {
	return t == WidgetCard || t == WidgetTable || t == WidgetChart
}

// Interval is the granularity of a time series.
type Interval string

const (
	IntervalDaily   Interval = "daily"
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
)

// Valid reports whether i is a known interval.
func (i Interval) Valid() bool {
	return i == IntervalDaily || i == IntervalWeekly || i == IntervalMonthly
}

// CardType refines what a card widget shows.
type CardType string

const (
	CardWatchlist   CardType = "watchlist"
	CardGainers     CardType = "gainers"
	CardPerformance CardType = "performance"
	CardFinancial   CardType = "financial"
)

// Valid reports whether c is a known card type.
func (c CardType) Valid() bool {
	switch c {
	case CardWatchlist, CardGainers, CardPerformance, CardFinancial:
		return true
	default:
		return false
	}
}

// SourceKind is where a widget's data comes from. It is decided once, when
// the widget is created, from its configuration.
type SourceKind string

const (
	SourceCustomEndpoint SourceKind = SourceKind(acquire.KindCustomEndpoint)
	SourceTimeSeries     SourceKind = SourceKind(acquire.KindTimeSeries)
	SourceTopMovers      SourceKind = SourceKind(acquire.KindTopMovers)
	SourceWatchlist      SourceKind = SourceKind(acquire.KindWatchlist)
	SourceSingleQuote    SourceKind = SourceKind(acquire.KindSingleQuote)
	SourceUnconfigured   SourceKind = SourceKind(acquire.KindUnconfigured)
)

// FieldMapping binds a path inside a widget's data to a display label.
type FieldMapping = fields.Mapping

// Format selects how a mapped value is rendered.
type Format = fields.FormatKind

const (
	FormatNone       = fields.FormatNone
	FormatCurrency   = fields.FormatCurrency
	FormatPercentage = fields.FormatPercentage
	FormatNumber     = fields.FormatNumber
	FormatDate       = fields.FormatDate
)

// APIConfig points a widget at an arbitrary JSON endpoint.
type APIConfig struct {
	Endpoint string
	Params   map[string]any
}

// Widget is a dashboard tile and the data it keeps fresh.
//
// Widget is immutable after creation via [NewWidget]. Getters return copies
// of mutable data.
type Widget struct {
	id              string
	title           string
	wtype           WidgetType
	symbol          string
	interval        Interval
	cardType        CardType
	dataSource      string
	api             *APIConfig
	mappings        []FieldMapping
	refreshInterval time.Duration
	source          acquire.Source
}

// ID returns the widget's unique identifier.
func (w Widget) ID() string {
	return w.id
}

// Title returns the display title. It defaults to the ID.
func (w Widget) Title() string {
	return w.title
}

// Type returns the widget type.
func (w Widget) Type() WidgetType {
	return w.wtype
}

// Symbol returns the ticker symbol, if any.
func (w Widget) Symbol() string {
	return w.symbol
}

// Interval returns the time series interval, if any.
func (w Widget) Interval() Interval {
	return w.interval
}

// CardType returns the card type, if any.
func (w Widget) CardType() CardType {
	return w.cardType
}

// DataSource returns the raw data source string, e.g. a watchlist's
// comma separated symbols.
func (w Widget) DataSource() string {
	return w.dataSource
}

// APIConfig returns a copy of the custom endpoint configuration, or nil.
func (w Widget) APIConfig() *APIConfig {
	if w.api == nil {
		return nil
	}
	return &APIConfig{Endpoint: w.api.Endpoint, Params: copyParams(w.api.Params)}
}

// FieldMappings returns a copy of the field mappings.
func (w Widget) FieldMappings() []FieldMapping {
	if w.mappings == nil {
		return nil
	}
	return append([]FieldMapping(nil), w.mappings...)
}

// RefreshInterval returns the period between fetches. Zero fetches once.
func (w Widget) RefreshInterval() time.Duration {
	return w.refreshInterval
}

// SourceKind returns where the widget's data comes from. A zero Widget
// reports [SourceUnconfigured].
func (w Widget) SourceKind() SourceKind {
	return sourceKind(w.source)
}

// SourceDescription describes the data source, e.g. "quote AAPL".
func (w Widget) SourceDescription() string {
	return sourceString(w.source)
}

// NewWidget creates a [Widget] of the given type.
//
// An empty id generates a random one. The widget's data source is decided
// here from its options, first match wins:
//
//  1. an API endpoint ([WithAPIConfig])
//  2. chart or table with symbol and interval: time series
//  3. card of type gainers: top movers
//  4. card of type watchlist with a non-empty data source: watchlist
//  5. card with a symbol: single quote
//  6. otherwise unconfigured, which never fetches
//
// Example:
//
//	w, err := finboard.NewWidget("aapl-daily", finboard.WidgetChart,
//	    finboard.WithSymbol("AAPL"),
//	    finboard.WithInterval(finboard.IntervalDaily),
//	    finboard.WithRefreshInterval(time.Minute),
//	)
func NewWidget(id string, wtype WidgetType, opts ...WidgetOption) (Widget, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	if !wtype.Valid() {
		return Widget{}, fmt.Errorf("widget %q: type must be card, table or chart, got %q", id, wtype)
	}

	cfg := &widgetConfig{refreshInterval: defaultRefreshInterval}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Widget{}, fmt.Errorf("widget %q: %w", id, err)
		}
	}

	if cfg.cardType != "" && wtype != WidgetCard {
		return Widget{}, fmt.Errorf("widget %q: card type requires a card widget", id)
	}

	title := cfg.title
	if title == "" {
		title = id
	}

	w := Widget{
		id:              id,
		title:           title,
		wtype:           wtype,
		symbol:          cfg.symbol,
		interval:        cfg.interval,
		cardType:        cfg.cardType,
		dataSource:      cfg.dataSource,
		api:             cfg.api,
		mappings:        cfg.mappings,
		refreshInterval: cfg.refreshInterval,
	}
	w.source = acquire.Classify(w.acquireConfig())
	return w, nil
}

func (w Widget) acquireConfig() acquire.Config {
	cfg := acquire.Config{
		Type:       string(w.wtype),
		Symbol:     w.symbol,
		Interval:   string(w.interval),
		CardType:   string(w.cardType),
		DataSource: w.dataSource,
	}
	if w.api != nil {
		cfg.Endpoint = w.api.Endpoint
		cfg.Params = copyParams(w.api.Params)
	}
	return cfg
}

func validateEndpoint(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("endpoint cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("endpoint must have a scheme (http:// or https://)")
	}
	return nil
}

func copyParams(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
