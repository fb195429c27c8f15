package finboard

import (
	"strings"
	"testing"
	"time"
)

func TestCartesianProduct_TwoDimensions(t *testing.T) {
	dims := map[string][]string{
		"x": {"a", "b"},
		"y": {"1", "2"},
	}

	result := cartesianProduct(dims)

	if len(result) != 4 {
		t.Fatalf("cartesianProduct() returned %d combinations, want 4", len(result))
	}

	// sorted key order (x, y), values in their given order
	expected := []map[string]string{
		{"x": "a", "y": "1"},
		{"x": "a", "y": "2"},
		{"x": "b", "y": "1"},
		{"x": "b", "y": "2"},
	}
	for i, want := range expected {
		if result[i]["x"] != want["x"] || result[i]["y"] != want["y"] {
			t.Errorf("combination[%d] = %v, want %v", i, result[i], want)
		}
	}
}

func TestCartesianProduct_Empty(t *testing.T) {
	if got := cartesianProduct(map[string][]string{}); got != nil {
		t.Errorf("cartesianProduct(empty map) = %v, want nil", got)
	}
	if got := cartesianProduct(map[string][]string{"x": {"a"}, "y": {}}); len(got) != 0 {
		t.Errorf("cartesianProduct(empty dimension) returned %d combinations, want 0", len(got))
	}
}

func TestNewWidgetGrid_SymbolsOnly(t *testing.T) {
	widgets, err := NewWidgetGrid("quotes", WidgetCard,
		WithGridSymbols("aapl", "MSFT", "nvda"),
	)
	if err != nil {
		t.Fatalf("NewWidgetGrid() error = %v", err)
	}

	wantIDs := []string{"quotes-aapl", "quotes-msft", "quotes-nvda"}
	wantTitles := []string{"quotes (AAPL)", "quotes (MSFT)", "quotes (NVDA)"}
	if len(widgets) != len(wantIDs) {
		t.Fatalf("NewWidgetGrid() returned %d widgets, want %d", len(widgets), len(wantIDs))
	}
	for i, w := range widgets {
		if w.ID() != wantIDs[i] {
			t.Errorf("widgets[%d].ID() = %q, want %q", i, w.ID(), wantIDs[i])
		}
		if w.Title() != wantTitles[i] {
			t.Errorf("widgets[%d].Title() = %q, want %q", i, w.Title(), wantTitles[i])
		}
		if w.SourceKind() != SourceSingleQuote {
			t.Errorf("widgets[%d].SourceKind() = %q, want %q", i, w.SourceKind(), SourceSingleQuote)
		}
	}
}

func TestNewWidgetGrid_SymbolsAndIntervals(t *testing.T) {
	widgets, err := NewWidgetGrid("majors", WidgetChart,
		WithGridTitle("Majors"),
		WithGridSymbols("AAPL", "MSFT"),
		WithGridIntervals(IntervalDaily, IntervalWeekly),
	)
	if err != nil {
		t.Fatalf("NewWidgetGrid() error = %v", err)
	}

	want := []struct {
		id, title, symbol string
		interval          Interval
	}{
		{"majors-aapl-daily", "Majors (AAPL/daily)", "AAPL", IntervalDaily},
		{"majors-msft-daily", "Majors (MSFT/daily)", "MSFT", IntervalDaily},
		{"majors-aapl-weekly", "Majors (AAPL/weekly)", "AAPL", IntervalWeekly},
		{"majors-msft-weekly", "Majors (MSFT/weekly)", "MSFT", IntervalWeekly},
	}
	if len(widgets) != len(want) {
		t.Fatalf("NewWidgetGrid() returned %d widgets, want %d", len(widgets), len(want))
	}
	for i, w := range widgets {
		if w.ID() != want[i].id {
			t.Errorf("widgets[%d].ID() = %q, want %q", i, w.ID(), want[i].id)
		}
		if w.Title() != want[i].title {
			t.Errorf("widgets[%d].Title() = %q, want %q", i, w.Title(), want[i].title)
		}
		if w.Symbol() != want[i].symbol || w.Interval() != want[i].interval {
			t.Errorf("widgets[%d] = %s/%s, want %s/%s", i, w.Symbol(), w.Interval(), want[i].symbol, want[i].interval)
		}
		if w.SourceKind() != SourceTimeSeries {
			t.Errorf("widgets[%d].SourceKind() = %q, want %q", i, w.SourceKind(), SourceTimeSeries)
		}
	}
}

func TestNewWidgetGrid_EndpointTemplate(t *testing.T) {
	widgets, err := NewWidgetGrid("crypto", WidgetTable,
		WithGridSymbols("BTC USD", "ETH&X"),
		WithGridIntervals(IntervalDaily),
		WithEndpointTemplate("https://api.example.com/{{.symbol}}/{{.interval}}", map[string]any{"fmt": "json"}),
	)
	if err != nil {
		t.Fatalf("NewWidgetGrid() error = %v", err)
	}

	wantEndpoints := []string{
		"https://api.example.com/BTC+USD/daily",
		"https://api.example.com/ETH%26X/daily",
	}
	for i, w := range widgets {
		api := w.APIConfig()
		if api == nil {
			t.Fatalf("widgets[%d].APIConfig() = nil", i)
		}
		if api.Endpoint != wantEndpoints[i] {
			t.Errorf("widgets[%d] endpoint = %q, want %q", i, api.Endpoint, wantEndpoints[i])
		}
		if api.Params["fmt"] != "json" {
			t.Errorf("widgets[%d] params = %v, want fmt=json", i, api.Params)
		}
		if w.SourceKind() != SourceCustomEndpoint {
			t.Errorf("widgets[%d].SourceKind() = %q, want %q", i, w.SourceKind(), SourceCustomEndpoint)
		}
	}

	if widgets[0].ID() != "crypto-btc-usd-daily" {
		t.Errorf("widgets[0].ID() = %q, want %q", widgets[0].ID(), "crypto-btc-usd-daily")
	}
}

func TestNewWidgetGrid_SharedSettings(t *testing.T) {
	widgets, err := NewWidgetGrid("perf", WidgetCard,
		WithGridSymbols("AAPL", "MSFT"),
		WithGridCardType(CardPerformance),
		WithGridFieldMappings(FieldMapping{DisplayName: "Price", FieldPath: "05. price", Format: FormatCurrency}),
		WithGridRefreshInterval(5*time.Minute),
	)
	if err != nil {
		t.Fatalf("NewWidgetGrid() error = %v", err)
	}

	for i, w := range widgets {
		if w.CardType() != CardPerformance {
			t.Errorf("widgets[%d].CardType() = %q, want %q", i, w.CardType(), CardPerformance)
		}
		if m := w.FieldMappings(); len(m) != 1 || m[0].FieldPath != "05. price" {
			t.Errorf("widgets[%d].FieldMappings() = %v", i, m)
		}
		if w.RefreshInterval() != 5*time.Minute {
			t.Errorf("widgets[%d].RefreshInterval() = %v, want 5m", i, w.RefreshInterval())
		}
	}

	// mappings are copied per widget
	m := widgets[0].FieldMappings()
	m[0].DisplayName = "changed"
	if widgets[1].FieldMappings()[0].DisplayName != "Price" {
		t.Error("widgets should not share mapping storage")
	}
}

func TestNewWidgetGrid_DefaultRefreshInterval(t *testing.T) {
	widgets, err := NewWidgetGrid("q", WidgetCard, WithGridSymbols("AAPL"))
	if err != nil {
		t.Fatalf("NewWidgetGrid() error = %v", err)
	}
	if widgets[0].RefreshInterval() != defaultRefreshInterval {
		t.Errorf("RefreshInterval() = %v, want %v", widgets[0].RefreshInterval(), defaultRefreshInterval)
	}
}

func TestNewWidgetGrid_ZeroRefreshInterval(t *testing.T) {
	widgets, err := NewWidgetGrid("q", WidgetCard,
		WithGridSymbols("AAPL"),
		WithGridRefreshInterval(0),
	)
	if err != nil {
		t.Fatalf("NewWidgetGrid() error = %v", err)
	}
	if widgets[0].RefreshInterval() != 0 {
		t.Errorf("RefreshInterval() = %v, want 0", widgets[0].RefreshInterval())
	}
}

func TestNewWidgetGrid_ComposableWithBoard(t *testing.T) {
	grid, err := NewWidgetGrid("majors", WidgetChart,
		WithGridSymbols("AAPL", "MSFT"),
		WithGridIntervals(IntervalDaily),
	)
	if err != nil {
		t.Fatalf("NewWidgetGrid() error = %v", err)
	}

	b, err := New(
		WithAPIKey("key"),
		WithWidget(mustWidget(t, "standalone")),
		WithWidgets(grid...),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := len(b.Widgets()); got != 3 {
		t.Errorf("Widgets() len = %d, want 3", got)
	}
}

func TestNewWidgetGrid_Errors(t *testing.T) {
	tests := []struct {
		name    string
		baseID  string
		wtype   WidgetType
		opts    []GridOption
		wantErr string
	}{
		{
			name:    "empty base id",
			baseID:  "  ",
			wtype:   WidgetCard,
			opts:    []GridOption{WithGridSymbols("AAPL")},
			wantErr: "base id cannot be empty",
		},
		{
			name:    "no symbols option",
			baseID:  "g",
			wtype:   WidgetCard,
			wantErr: "at least one symbol required",
		},
		{
			name:    "empty symbol list",
			baseID:  "g",
			wtype:   WidgetCard,
			opts:    []GridOption{WithGridSymbols()},
			wantErr: "at least one symbol required",
		},
		{
			name:    "blank symbol",
			baseID:  "g",
			wtype:   WidgetCard,
			opts:    []GridOption{WithGridSymbols("AAPL", " ")},
			wantErr: "empty value at index 1",
		},
		{
			name:    "duplicate symbol after upper-casing",
			baseID:  "g",
			wtype:   WidgetCard,
			opts:    []GridOption{WithGridSymbols("aapl", "AAPL")},
			wantErr: "duplicate symbol",
		},
		{
			name:    "empty interval list",
			baseID:  "g",
			wtype:   WidgetChart,
			opts:    []GridOption{WithGridSymbols("AAPL"), WithGridIntervals()},
			wantErr: "at least one interval required",
		},
		{
			name:    "unknown interval",
			baseID:  "g",
			wtype:   WidgetChart,
			opts:    []GridOption{WithGridSymbols("AAPL"), WithGridIntervals("hourly")},
			wantErr: "interval must be",
		},
		{
			name:    "empty template",
			baseID:  "g",
			wtype:   WidgetTable,
			opts:    []GridOption{WithGridSymbols("AAPL"), WithEndpointTemplate(" ", nil)},
			wantErr: "endpoint template required",
		},
		{
			name:    "invalid template syntax",
			baseID:  "g",
			wtype:   WidgetTable,
			opts:    []GridOption{WithGridSymbols("AAPL"), WithEndpointTemplate("https://x/{{.symbol", nil)},
			wantErr: "invalid endpoint template",
		},
		{
			name:    "template references missing dimension",
			baseID:  "g",
			wtype:   WidgetTable,
			opts:    []GridOption{WithGridSymbols("AAPL"), WithEndpointTemplate("https://x/{{.symbol}}/{{.interval}}", nil)},
			wantErr: "template execution failed",
		},
		{
			name:    "template renders invalid endpoint",
			baseID:  "g",
			wtype:   WidgetTable,
			opts:    []GridOption{WithGridSymbols("AAPL"), WithEndpointTemplate("{{.symbol}}", nil)},
			wantErr: "failed to create widget 'g-aapl'",
		},
		{
			name:    "card type on chart grid",
			baseID:  "g",
			wtype:   WidgetChart,
			opts:    []GridOption{WithGridSymbols("AAPL"), WithGridCardType(CardFinancial)},
			wantErr: "card type requires a card widget",
		},
		{
			name:    "unknown card type",
			baseID:  "g",
			wtype:   WidgetCard,
			opts:    []GridOption{WithGridSymbols("AAPL"), WithGridCardType("heatmap")},
			wantErr: "card type must be",
		},
		{
			name:    "negative refresh",
			baseID:  "g",
			wtype:   WidgetCard,
			opts:    []GridOption{WithGridSymbols("AAPL"), WithGridRefreshInterval(-time.Second)},
			wantErr: "cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWidgetGrid(tt.baseID, tt.wtype, tt.opts...)
			if err == nil {
				t.Fatal("NewWidgetGrid() should return error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"AAPL", "aapl"},
		{"BRK.B", "brk-b"},
		{" My Grid ", "my-grid"},
		{"--x--", "x"},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
