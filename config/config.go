// Package config provides YAML configuration parsing for FinBoard.
//
// This package enables running FinBoard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Markets
//	port: 8080
//	api_key: ${ALPHA_VANTAGE_KEY}
//
//	provider:
//	  batch_delay: 12s
//
//	widgets:
//	  - id: aapl
//	    type: card
//	    symbol: AAPL
//	    refresh_interval: 60
//	    field_mappings:
//	      - { display_name: Price, field_path: "05. price", format: currency }
//
//	grids:
//	  - id: majors
//	    type: chart
//	    symbols: [AAPL, MSFT]
//	    intervals: [daily, weekly]
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const defaultPort = 8080

// Config is the root configuration structure for FinBoard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "FinBoard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// APIKey is the market data provider key. Required.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	APIKey string `yaml:"api_key" validate:"required"`

	Provider ProviderConfig `yaml:"provider"`
	Cache    CacheConfig    `yaml:"cache"`

	// Widgets defines individual dashboard widgets.
	Widgets []WidgetConfig `yaml:"widgets" validate:"dive"`

	// Grids defines widget grids that expand via cartesian product.
	Grids []GridConfig `yaml:"grids" validate:"dive"`
}

// ProviderConfig tunes access to the market data provider.
type ProviderConfig struct {
	// BaseURL overrides the provider query URL, e.g. for a mock server.
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`

	// BatchDelay is the pause between requests of a watchlist or top movers
	// batch. Unset means the SDK default (12s); 0 disables the pause.
	BatchDelay *Duration `yaml:"batch_delay"`

	// RequestsPerMinute caps provider requests. 0 disables the cap.
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"min=0"`

	// Timeout bounds each upstream request. Defaults to 30s.
	Timeout Duration `yaml:"timeout"`
}

// CacheConfig selects and sizes the response cache.
type CacheConfig struct {
	// Capacity bounds the in-memory cache. Defaults to 1024.
	Capacity int `yaml:"capacity" validate:"min=0"`

	// RedisURL, when set, caches responses in Redis instead of memory.
	RedisURL string `yaml:"redis_url"`
}

// WidgetConfig defines a single widget.
type WidgetConfig struct {
	// ID identifies the widget. Generated when empty.
	ID string `yaml:"id"`

	// Title is the display title. Defaults to the ID.
	Title string `yaml:"title"`

	// Type is card, table or chart.
	Type string `yaml:"type" validate:"required,oneof=card table chart"`

	Symbol   string `yaml:"symbol"`
	Interval string `yaml:"interval" validate:"omitempty,oneof=daily weekly monthly"`

	// CardType refines card widgets: watchlist, gainers, performance or
	// financial.
	CardType string `yaml:"card_type" validate:"omitempty,oneof=watchlist gainers performance financial"`

	// DataSource lists watchlist symbols, comma separated.
	DataSource string `yaml:"data_source"`

	// APIConfig points the widget at an arbitrary JSON endpoint.
	APIConfig *APIConfig `yaml:"api_config"`

	FieldMappings []MappingConfig `yaml:"field_mappings" validate:"dive"`

	// RefreshInterval is the period between fetches, as a duration string
	// or integer seconds. Unset means 30s; 0 fetches once.
	RefreshInterval *Duration `yaml:"refresh_interval"`
}

// APIConfig is a custom endpoint and the query parameters sent with it.
type APIConfig struct {
	// Endpoint supports environment variable substitution.
	Endpoint string         `yaml:"endpoint" validate:"required"`
	Params   map[string]any `yaml:"params"`
}

// MappingConfig binds a display label to a path in the widget's data.
type MappingConfig struct {
	DisplayName string `yaml:"display_name"`
	FieldPath   string `yaml:"field_path" validate:"required"`
	Format      string `yaml:"format" validate:"omitempty,oneof=currency percentage number date"`
}

// GridConfig defines a widget grid that expands via cartesian product.
//
// For example, symbols [AAPL, MSFT] and intervals [daily, weekly] expand
// to 4 widgets: AAPL/daily, MSFT/daily, AAPL/weekly, MSFT/weekly.
type GridConfig struct {
	// ID is the base for generated widget ids.
	ID string `yaml:"id" validate:"required"`

	// Title prefixes generated titles. Defaults to the ID.
	Title string `yaml:"title"`

	Type      string   `yaml:"type" validate:"required,oneof=card table chart"`
	Symbols   []string `yaml:"symbols" validate:"required,min=1,dive,required"`
	Intervals []string `yaml:"intervals" validate:"dive,oneof=daily weekly monthly"`

	// EndpointTemplate is a Go template for custom endpoints, with
	// {{.symbol}} and {{.interval}} as variables. Supports environment
	// variable substitution.
	EndpointTemplate string         `yaml:"endpoint_template"`
	Params           map[string]any `yaml:"params"`

	CardType        string          `yaml:"card_type" validate:"omitempty,oneof=watchlist gainers performance financial"`
	FieldMappings   []MappingConfig `yaml:"field_mappings" validate:"dive"`
	RefreshInterval *Duration       `yaml:"refresh_interval"`
}

// Duration wraps time.Duration for YAML unmarshalling. It accepts duration
// strings ("90s", "5m") and integer seconds (60).
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("duration must be a string or integer, got %v", node.Kind)
	}

	if node.Tag == "!!int" {
		secs, err := strconv.ParseInt(node.Value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", node.Value, err)
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""
		defaultVal := submatches[3]

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in api_key, provider.base_url,
// cache.redis_url, widget endpoints and grid endpoint templates. Port
// defaults to 8080.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}

	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expand substitutes environment variables in the fields that support it.
func (c *Config) expand() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"api_key", &c.APIKey},
		{"provider.base_url", &c.Provider.BaseURL},
		{"cache.redis_url", &c.Cache.RedisURL},
	}
	for i := range c.Widgets {
		if api := c.Widgets[i].APIConfig; api != nil {
			fields = append(fields, struct {
				name string
				ptr  *string
			}{fmt.Sprintf("widgets[%d].api_config.endpoint", i), &api.Endpoint})
		}
	}
	for i := range c.Grids {
		fields = append(fields, struct {
			name string
			ptr  *string
		}{fmt.Sprintf("grids[%d].endpoint_template", i), &c.Grids[i].EndpointTemplate})
	}

	for _, f := range fields {
		expanded, err := expandEnvVars(*f.ptr)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.ptr = strings.TrimSpace(expanded)
	}
	return nil
}

// validate checks struct tags, then the rules tags cannot express.
func (c *Config) validate() error {
	if err := structValidator().Struct(c); err != nil {
		return describeValidation(err)
	}

	if len(c.Widgets) == 0 && len(c.Grids) == 0 {
		return errors.New("at least one widget or grid must be defined")
	}

	if c.Provider.BatchDelay != nil && c.Provider.BatchDelay.Duration() < 0 {
		return errors.New("provider.batch_delay cannot be negative")
	}
	if u := c.Provider.BaseURL; u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return fmt.Errorf("provider.base_url: must be an http or https URL, got %q", u)
	}
	if c.Provider.Timeout < 0 {
		return errors.New("provider.timeout cannot be negative")
	}

	for i, w := range c.Widgets {
		ctx := fmt.Sprintf("widgets[%d]", i)
		if w.ID != "" {
			ctx = fmt.Sprintf("widgets[%d] (%s)", i, w.ID)
		}
		if w.CardType != "" && w.Type != "card" {
			return fmt.Errorf("%s: card_type requires type card", ctx)
		}
		if err := validateRefresh(w.RefreshInterval, ctx); err != nil {
			return err
		}
	}

	for i, g := range c.Grids {
		ctx := fmt.Sprintf("grids[%d] (%s)", i, g.ID)
		if g.CardType != "" && g.Type != "card" {
			return fmt.Errorf("%s: card_type requires type card", ctx)
		}
		if err := validateRefresh(g.RefreshInterval, ctx); err != nil {
			return err
		}

		seen := make(map[string]struct{}, len(g.Symbols))
		for _, s := range g.Symbols {
			key := strings.ToUpper(strings.TrimSpace(s))
			if _, exists := seen[key]; exists {
				return fmt.Errorf("%s: duplicate symbol %q", ctx, s)
			}
			seen[key] = struct{}{}
		}

		// fail fast before the SDK tries to use an invalid template
		if g.EndpointTemplate != "" {
			if _, err := template.New("").Parse(g.EndpointTemplate); err != nil {
				return fmt.Errorf("%s: invalid endpoint_template: %w", ctx, err)
			}
		}
	}

	return nil
}

func validateRefresh(d *Duration, ctx string) error {
	if d == nil || *d == 0 {
		return nil
	}
	if d.Duration() < time.Second {
		return fmt.Errorf("%s: refresh_interval must be 0 or at least 1s, got %s", ctx, d.Duration())
	}
	return nil
}

// structValidator reports field names as they appear in YAML.
func structValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// describeValidation turns the first validation failure into a message
// naming the YAML path, e.g. "widgets[0].type: must be one of card table chart".
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	path := fe.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s: is required", path)
	case "oneof":
		return fmt.Errorf("%s: must be one of %s, got %q", path, fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Errorf("%s: must be %s %s, got %v", path, bound(fe.Tag()), fe.Param(), fe.Value())
	case "url":
		return fmt.Errorf("%s: must be an http or https URL, got %q", path, fe.Value())
	default:
		return fmt.Errorf("%s: failed %q validation", path, fe.Tag())
	}
}

func bound(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}
