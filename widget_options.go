package finboard

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// widgetConfig holds mutable state during widget construction.
type widgetConfig struct {
	title           string
	symbol          string
	interval        Interval
	cardType        CardType
	dataSource      string
	api             *APIConfig
	mappings        []FieldMapping
	refreshInterval time.Duration
}

// WidgetOption configures a [Widget] during construction.
//
// Built-in options: [WithWidgetTitle], [WithSymbol], [WithInterval],
// [WithCardType], [WithDataSource], [WithAPIConfig], [WithFieldMappings],
// [WithRefreshInterval].
type WidgetOption func(*widgetConfig) error

// WithWidgetTitle sets the widget's display title.
func WithWidgetTitle(title string) WidgetOption {
	return func(cfg *widgetConfig) error {
		cfg.title = strings.TrimSpace(title)
		return nil
	}
}

// WithSymbol sets the ticker symbol for quote and time series widgets.
// Symbols are upper-cased.
func WithSymbol(symbol string) WidgetOption {
	return func(cfg *widgetConfig) error {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			return errors.New("symbol cannot be empty")
		}
		cfg.symbol = strings.ToUpper(symbol)
		return nil
	}
}

// WithInterval sets the time series granularity for chart and table widgets.
//
// Returns an error if the interval is not daily, weekly or monthly.
func WithInterval(i Interval) WidgetOption {
	return func(cfg *widgetConfig) error {
		if !i.Valid() {
			return fmt.Errorf("interval must be daily, weekly or monthly, got %q", i)
		}
		cfg.interval = i
		return nil
	}
}

// WithCardType sets what a card widget shows.
func WithCardType(c CardType) WidgetOption {
	return func(cfg *widgetConfig) error {
		if !c.Valid() {
			return fmt.Errorf("card type must be watchlist, gainers, performance or financial, got %q", c)
		}
		cfg.cardType = c
		return nil
	}
}

// WithDataSource sets the data source string. For watchlist cards it is a
// comma separated list of symbols:
//
//	finboard.WithDataSource("AAPL, MSFT, NVDA")
func WithDataSource(s string) WidgetOption {
	return func(cfg *widgetConfig) error {
		cfg.dataSource = s
		return nil
	}
}

// WithAPIConfig points the widget at an arbitrary JSON endpoint. Params are
// merged into the endpoint's query string on every request. A custom
// endpoint takes precedence over every other data source.
//
// Returns an error if the endpoint is not an http or https URL.
func WithAPIConfig(endpoint string, params map[string]any) WidgetOption {
	return func(cfg *widgetConfig) error {
		endpoint = strings.TrimSpace(endpoint)
		if err := validateEndpoint(endpoint); err != nil {
			return err
		}
		cfg.api = &APIConfig{Endpoint: endpoint, Params: copyParams(params)}
		return nil
	}
}

// WithFieldMappings binds display labels to paths in the widget's data.
// Can be called multiple times; mappings accumulate in order.
//
// Returns an error if a mapping has no path or an unknown format.
func WithFieldMappings(mappings ...FieldMapping) WidgetOption {
	return func(cfg *widgetConfig) error {
		for i, m := range mappings {
			if strings.TrimSpace(m.FieldPath) == "" {
				return fmt.Errorf("field mapping %d: path cannot be empty", i)
			}
			if !m.Format.Valid() {
				return fmt.Errorf("field mapping %q: unknown format %q", m.FieldPath, m.Format)
			}
			if m.DisplayName == "" {
				m.DisplayName = m.FieldPath
			}
			cfg.mappings = append(cfg.mappings, m)
		}
		return nil
	}
}

// WithRefreshInterval sets the period between fetches. Defaults to 30
// seconds. Zero disables the timer: the widget fetches once when bound and
// afterwards only on manual refresh.
//
// The interval is measured from when a fetch starts. There is no jitter or
// backoff.
//
// Returns an error if the interval is negative or below one second.
func WithRefreshInterval(d time.Duration) WidgetOption {
	return func(cfg *widgetConfig) error {
		if d < 0 {
			return errors.New("refresh interval cannot be negative")
		}
		if d != 0 && d < time.Second {
			return errors.New("refresh interval must be at least 1 second")
		}
		cfg.refreshInterval = d
		return nil
	}
}
