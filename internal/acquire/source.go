package acquire

import (
	"fmt"
	"strings"

	"github.com/jpalmerr/finboard/internal/provider"
)

// Kind names a [Source] variant.
type Kind string

const (
	KindCustomEndpoint Kind = "custom_endpoint"
	KindTimeSeries     Kind = "time_series"
	KindTopMovers      Kind = "top_movers"
	KindWatchlist      Kind = "watchlist"
	KindSingleQuote    Kind = "single_quote"
	KindUnconfigured   Kind = "unconfigured"
)

// Source is the acquisition decision for a widget, made once when the
// widget is configured. The set of implementations is closed.
type Source interface {
	Kind() Kind
	String() string
	source()
}

// CustomEndpoint fetches an arbitrary JSON endpoint.
type CustomEndpoint struct {
	Endpoint string
	Params   map[string]any
}

// TimeSeries fetches a provider time series.
type TimeSeries struct {
	Symbol   string
	Interval provider.Interval
}

// TopMovers ranks a fixed universe of symbols by percent change.
type TopMovers struct{}

// Watchlist fetches quotes for several symbols in sequence.
type Watchlist struct {
	Symbols []string
}

// SingleQuote fetches one provider quote.
type SingleQuote struct {
	Symbol string
}

// Unconfigured widgets have nothing to fetch and always hold nil data.
type Unconfigured struct{}

func (CustomEndpoint) Kind() Kind { return KindCustomEndpoint }
func (TimeSeries) Kind() Kind     { return KindTimeSeries }
func (TopMovers) Kind() Kind      { return KindTopMovers }
func (Watchlist) Kind() Kind      { return KindWatchlist }
func (SingleQuote) Kind() Kind    { return KindSingleQuote }
func (Unconfigured) Kind() Kind   { return KindUnconfigured }

func (s CustomEndpoint) String() string { return fmt.Sprintf("custom endpoint %s", s.Endpoint) }
func (s TimeSeries) String() string     { return fmt.Sprintf("%s series %s", s.Interval, s.Symbol) }
func (TopMovers) String() string        { return "top movers" }
func (s Watchlist) String() string      { return "watchlist " + strings.Join(s.Symbols, ",") }
func (s SingleQuote) String() string    { return "quote " + s.Symbol }
func (Unconfigured) String() string     { return "unconfigured" }

func (CustomEndpoint) source() {}
func (TimeSeries) source()     {}
func (TopMovers) source()      {}
func (Watchlist) source()      {}
func (SingleQuote) source()    {}
func (Unconfigured) source()   {}

// Widget and card types that influence classification.
const (
	TypeCard  = "card"
	TypeTable = "table"
	TypeChart = "chart"

	CardWatchlist   = "watchlist"
	CardGainers     = "gainers"
	CardPerformance = "performance"
	CardFinancial   = "financial"
)

// Config is the subset of a widget's configuration that decides where its
// data comes from.
type Config struct {
	Type       string
	Symbol     string
	Interval   string
	CardType   string
	DataSource string
	Endpoint   string
	Params     map[string]any
}

// Classify picks the [Source] for cfg. The first matching rule wins:
//  1. an API endpoint is configured
//  2. chart or table widgets with both symbol and interval
//  3. gainers cards
//  4. watchlist cards whose data source lists at least one symbol
//  5. card widgets with a symbol
//  6. anything else is unconfigured
func Classify(cfg Config) Source {
	if strings.TrimSpace(cfg.Endpoint) != "" {
		return CustomEndpoint{Endpoint: strings.TrimSpace(cfg.Endpoint), Params: cfg.Params}
	}

	symbol := strings.TrimSpace(cfg.Symbol)

	switch cfg.Type {
	case TypeChart, TypeTable:
		if symbol != "" && cfg.Interval != "" {
			return TimeSeries{Symbol: symbol, Interval: provider.Interval(cfg.Interval)}
		}
	case TypeCard:
		if cfg.CardType == CardGainers {
			return TopMovers{}
		}
		if cfg.CardType == CardWatchlist {
			if symbols := ParseSymbols(cfg.DataSource); len(symbols) > 0 {
				return Watchlist{Symbols: symbols}
			}
		}
		if symbol != "" {
			return SingleQuote{Symbol: symbol}
		}
	}
	return Unconfigured{}
}

// ParseSymbols splits a comma separated symbol list, trimming whitespace
// and dropping empty entries.
func ParseSymbols(list string) []string {
	var out []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
