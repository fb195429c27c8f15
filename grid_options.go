package finboard

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// gridConfig holds configuration during widget grid construction.
type gridConfig struct {
	title            string
	symbols          []string
	intervals        []Interval
	endpointTemplate string
	params           map[string]any
	cardType         CardType
	mappings         []FieldMapping
	refreshInterval  time.Duration
	refreshSet       bool
}

// GridOption configures widget grid generation.
// GridOption implements the functional options pattern for [NewWidgetGrid].
type GridOption func(*gridConfig) error

// WithGridTitle sets the title prefix of generated widgets.
func WithGridTitle(title string) GridOption {
	return func(cfg *gridConfig) error {
		cfg.title = strings.TrimSpace(title)
		return nil
	}
}

// WithGridSymbols sets the symbol dimension. Symbols are upper-cased.
//
// Returns an error if no symbols are given, any symbol is empty or a
// symbol is repeated.
func WithGridSymbols(symbols ...string) GridOption {
	return func(cfg *gridConfig) error {
		if len(symbols) == 0 {
			return errors.New("at least one symbol required")
		}
		seen := make(map[string]bool, len(symbols))
		out := make([]string, 0, len(symbols))
		for i, s := range symbols {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				return fmt.Errorf("symbols contain empty value at index %d", i)
			}
			if seen[s] {
				return fmt.Errorf("duplicate symbol %q", s)
			}
			seen[s] = true
			out = append(out, s)
		}
		cfg.symbols = out
		return nil
	}
}

// WithGridIntervals sets the interval dimension for chart and table grids.
//
// Returns an error if no intervals are given or any interval is unknown.
func WithGridIntervals(intervals ...Interval) GridOption {
	return func(cfg *gridConfig) error {
		if len(intervals) == 0 {
			return errors.New("at least one interval required")
		}
		for _, iv := range intervals {
			if !iv.Valid() {
				return fmt.Errorf("interval must be daily, weekly or monthly, got %q", iv)
			}
		}
		cfg.intervals = append([]Interval(nil), intervals...)
		return nil
	}
}

// WithEndpointTemplate gives every generated widget a custom endpoint. The
// template uses text/template syntax with {{.symbol}} and {{.interval}}
// as variables; params are sent with every request.
//
// Example:
//
//	WithEndpointTemplate("https://api.example.com/quote/{{.symbol}}", map[string]any{"fmt": "json"})
//
// Returns an error if the template string is empty.
func WithEndpointTemplate(tmpl string, params map[string]any) GridOption {
	return func(cfg *gridConfig) error {
		if strings.TrimSpace(tmpl) == "" {
			return errors.New("endpoint template required")
		}
		cfg.endpointTemplate = tmpl
		cfg.params = copyParams(params)
		return nil
	}
}

// WithGridCardType sets the card type of all generated widgets.
func WithGridCardType(c CardType) GridOption {
	return func(cfg *gridConfig) error {
		if !c.Valid() {
			return fmt.Errorf("card type must be watchlist, gainers, performance or financial, got %q", c)
		}
		cfg.cardType = c
		return nil
	}
}

// WithGridFieldMappings sets the field mappings of all generated widgets.
func WithGridFieldMappings(mappings ...FieldMapping) GridOption {
	return func(cfg *gridConfig) error {
		cfg.mappings = append(cfg.mappings, mappings...)
		return nil
	}
}

// WithGridRefreshInterval sets the refresh interval of all generated
// widgets. Zero disables periodic refresh.
//
// Returns an error if the duration is negative.
func WithGridRefreshInterval(d time.Duration) GridOption {
	return func(cfg *gridConfig) error {
		if d < 0 {
			return errors.New("refresh interval cannot be negative")
		}
		cfg.refreshInterval = d
		cfg.refreshSet = true
		return nil
	}
}
