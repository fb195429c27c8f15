package finboard

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"text/template"
	"unicode"
)

// Grid dimension names, also available as template variables in
// [WithEndpointTemplate].
const (
	dimSymbol   = "symbol"
	dimInterval = "interval"
)

// NewWidgetGrid creates one widget per combination of symbols and
// intervals (cartesian product).
//
// Widget ids are derived from baseID and the combination, e.g.
// "majors-aapl-daily". Titles take the form "Title (AAPL/daily)" where
// Title defaults to baseID.
//
// With [WithEndpointTemplate] every widget gets a custom endpoint rendered
// from the template; dimension values are URL-encoded before interpolation
// and missing template keys cause an error.
//
// Example:
//
//	widgets, err := finboard.NewWidgetGrid("majors", finboard.WidgetChart,
//	    finboard.WithGridSymbols("AAPL", "MSFT"),
//	    finboard.WithGridIntervals(finboard.IntervalDaily, finboard.IntervalWeekly),
//	)
//	// Returns 4 widgets, usable with WithWidgets(widgets...)
func NewWidgetGrid(baseID string, wtype WidgetType, opts ...GridOption) ([]Widget, error) {
	baseID = strings.TrimSpace(baseID)
	if baseID == "" {
		return nil, errors.New("base id cannot be empty")
	}

	cfg := &gridConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.symbols) == 0 {
		return nil, errors.New("at least one symbol required")
	}

	dims := map[string][]string{dimSymbol: cfg.symbols}
	order := []string{dimSymbol}
	if len(cfg.intervals) > 0 {
		vals := make([]string, len(cfg.intervals))
		for i, iv := range cfg.intervals {
			vals[i] = string(iv)
		}
		dims[dimInterval] = vals
		order = append(order, dimInterval)
	}

	var tmpl *template.Template
	if cfg.endpointTemplate != "" {
		var err error
		tmpl, err = template.New("endpoint").Option("missingkey=error").Parse(cfg.endpointTemplate)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint template: %w", err)
		}
	}

	title := cfg.title
	if title == "" {
		title = baseID
	}

	combinations := cartesianProduct(dims)
	widgets := make([]Widget, 0, len(combinations))
	for _, combo := range combinations {
		id := gridWidgetID(baseID, combo, order)

		wOpts := []WidgetOption{
			WithWidgetTitle(formatGridTitle(title, combo, order)),
			WithSymbol(combo[dimSymbol]),
		}
		if iv, ok := combo[dimInterval]; ok {
			wOpts = append(wOpts, WithInterval(Interval(iv)))
		}
		if cfg.cardType != "" {
			wOpts = append(wOpts, WithCardType(cfg.cardType))
		}
		if tmpl != nil {
			endpoint, err := executeTemplate(tmpl, urlEncodeMap(combo))
			if err != nil {
				return nil, fmt.Errorf("template execution failed: %w", err)
			}
			wOpts = append(wOpts, WithAPIConfig(endpoint, cfg.params))
		}
		if len(cfg.mappings) > 0 {
			wOpts = append(wOpts, WithFieldMappings(cfg.mappings...))
		}
		if cfg.refreshSet {
			wOpts = append(wOpts, WithRefreshInterval(cfg.refreshInterval))
		}

		w, err := NewWidget(id, wtype, wOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create widget '%s': %w", id, err)
		}
		widgets = append(widgets, w)
	}

	return widgets, nil
}

// cartesianProduct generates all combinations of dimension values.
// Keys are sorted alphabetically for deterministic output.
// Values maintain their original slice order.
//
// Example:
//
//	Input:  {"x": ["a","b"], "y": ["1","2"]}
//	Output: [{"x":"a","y":"1"}, {"x":"a","y":"2"}, {"x":"b","y":"1"}, {"x":"b","y":"2"}]
func cartesianProduct(dims map[string][]string) []map[string]string {
	if len(dims) == 0 {
		return nil
	}

	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if len(dims[k]) == 0 {
			return nil
		}
	}

	total := 1
	for _, k := range keys {
		total *= len(dims[k])
	}

	result := make([]map[string]string, 0, total)

	indices := make([]int, len(keys))
	for {
		combo := make(map[string]string, len(keys))
		for i, k := range keys {
			combo[k] = dims[k][indices[i]]
		}
		result = append(result, combo)

		// increment indices (rightmost first)
		for i := len(keys) - 1; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(dims[keys[i]]) {
				break
			}
			indices[i] = 0
			if i == 0 {
				return result
			}
		}
	}
}

// urlEncodeMap returns a new map with all values URL-encoded.
func urlEncodeMap(m map[string]string) map[string]string {
	result := make(map[string]string, len(m))
	for k, v := range m {
		result[k] = url.QueryEscape(v)
	}
	return result
}

// executeTemplate renders the template with the given data.
func executeTemplate(tmpl *template.Template, data map[string]string) (string, error) {
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatGridTitle creates a title in the format "Title (v1/v2)".
func formatGridTitle(title string, combo map[string]string, order []string) string {
	parts := make([]string, len(order))
	for i, k := range order {
		parts[i] = combo[k]
	}
	return fmt.Sprintf("%s (%s)", title, strings.Join(parts, "/"))
}

// gridWidgetID joins baseID and the combination values into a lowercase
// slug: "majors", {AAPL, daily} -> "majors-aapl-daily".
func gridWidgetID(baseID string, combo map[string]string, order []string) string {
	parts := []string{slug(baseID)}
	for _, k := range order {
		parts = append(parts, slug(combo[k]))
	}
	return strings.Join(parts, "-")
}

func slug(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '-'
	}, strings.TrimSpace(s))
	return strings.Trim(s, "-")
}
