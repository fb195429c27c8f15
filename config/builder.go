package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jpalmerr/finboard"
)

// BuildWidgets converts parsed configuration into SDK Widget objects.
//
// It processes both direct widgets and grids, returning a combined slice
// in file order. Grids are expanded via cartesian product.
func BuildWidgets(cfg *Config) ([]finboard.Widget, error) {
	var widgets []finboard.Widget

	for i, wc := range cfg.Widgets {
		w, err := buildWidget(wc)
		if err != nil {
			return nil, fmt.Errorf("widgets[%d]: %w", i, err)
		}
		widgets = append(widgets, w)
	}

	for i, gc := range cfg.Grids {
		grid, err := buildGrid(gc)
		if err != nil {
			return nil, fmt.Errorf("grids[%d] (%s): %w", i, gc.ID, err)
		}
		widgets = append(widgets, grid...)
	}

	return widgets, nil
}

// BoardOptions returns the options that configure a [finboard.Board] as
// described by cfg, widgets included.
func BoardOptions(cfg *Config, logger *slog.Logger) ([]finboard.Option, error) {
	widgets, err := BuildWidgets(cfg)
	if err != nil {
		return nil, err
	}

	opts := []finboard.Option{
		finboard.WithAPIKey(cfg.APIKey),
		finboard.WithWidgets(widgets...),
		finboard.WithPort(cfg.Port),
		finboard.WithRequestsPerMinute(cfg.Provider.RequestsPerMinute),
	}
	if logger != nil {
		opts = append(opts, finboard.WithLogger(logger))
	}
	if cfg.Title != "" {
		opts = append(opts, finboard.WithTitle(cfg.Title))
	}
	if cfg.Provider.BaseURL != "" {
		opts = append(opts, finboard.WithProviderBaseURL(cfg.Provider.BaseURL))
	}
	if cfg.Provider.BatchDelay != nil {
		opts = append(opts, finboard.WithBatchDelay(cfg.Provider.BatchDelay.Duration()))
	}
	if cfg.Provider.Timeout > 0 {
		opts = append(opts, finboard.WithRequestTimeout(cfg.Provider.Timeout.Duration()))
	}
	if cfg.Cache.Capacity > 0 {
		opts = append(opts, finboard.WithCacheCapacity(cfg.Cache.Capacity))
	}
	if cfg.Cache.RedisURL != "" {
		opts = append(opts, finboard.WithRedisURL(cfg.Cache.RedisURL))
	}
	return opts, nil
}

// buildWidget converts a single WidgetConfig to an SDK Widget.
func buildWidget(wc WidgetConfig) (finboard.Widget, error) {
	var opts []finboard.WidgetOption

	if wc.Title != "" {
		opts = append(opts, finboard.WithWidgetTitle(wc.Title))
	}
	if strings.TrimSpace(wc.Symbol) != "" {
		opts = append(opts, finboard.WithSymbol(wc.Symbol))
	}
	if wc.Interval != "" {
		opts = append(opts, finboard.WithInterval(finboard.Interval(wc.Interval)))
	}
	if wc.CardType != "" {
		opts = append(opts, finboard.WithCardType(finboard.CardType(wc.CardType)))
	}
	if wc.DataSource != "" {
		opts = append(opts, finboard.WithDataSource(wc.DataSource))
	}
	if wc.APIConfig != nil {
		opts = append(opts, finboard.WithAPIConfig(wc.APIConfig.Endpoint, wc.APIConfig.Params))
	}
	if len(wc.FieldMappings) > 0 {
		opts = append(opts, finboard.WithFieldMappings(buildMappings(wc.FieldMappings)...))
	}
	if wc.RefreshInterval != nil {
		opts = append(opts, finboard.WithRefreshInterval(wc.RefreshInterval.Duration()))
	}

	return finboard.NewWidget(wc.ID, finboard.WidgetType(wc.Type), opts...)
}

// buildGrid expands a GridConfig into widgets.
func buildGrid(gc GridConfig) ([]finboard.Widget, error) {
	opts := []finboard.GridOption{
		finboard.WithGridSymbols(gc.Symbols...),
	}

	if gc.Title != "" {
		opts = append(opts, finboard.WithGridTitle(gc.Title))
	}
	if len(gc.Intervals) > 0 {
		intervals := make([]finboard.Interval, len(gc.Intervals))
		for i, iv := range gc.Intervals {
			intervals[i] = finboard.Interval(iv)
		}
		opts = append(opts, finboard.WithGridIntervals(intervals...))
	}
	if gc.EndpointTemplate != "" {
		opts = append(opts, finboard.WithEndpointTemplate(gc.EndpointTemplate, gc.Params))
	}
	if gc.CardType != "" {
		opts = append(opts, finboard.WithGridCardType(finboard.CardType(gc.CardType)))
	}
	if len(gc.FieldMappings) > 0 {
		opts = append(opts, finboard.WithGridFieldMappings(buildMappings(gc.FieldMappings)...))
	}
	if gc.RefreshInterval != nil {
		opts = append(opts, finboard.WithGridRefreshInterval(gc.RefreshInterval.Duration()))
	}

	return finboard.NewWidgetGrid(gc.ID, finboard.WidgetType(gc.Type), opts...)
}

func buildMappings(mcs []MappingConfig) []finboard.FieldMapping {
	out := make([]finboard.FieldMapping, len(mcs))
	for i, mc := range mcs {
		out[i] = finboard.FieldMapping{
			DisplayName: mc.DisplayName,
			FieldPath:   mc.FieldPath,
			Format:      finboard.Format(mc.Format),
		}
	}
	return out
}

// WidgetCount returns how many widgets cfg describes, grids expanded.
func WidgetCount(cfg *Config) int {
	n := len(cfg.Widgets)
	for _, g := range cfg.Grids {
		size := len(g.Symbols)
		if len(g.Intervals) > 0 {
			size *= len(g.Intervals)
		}
		n += size
	}
	return n
}
