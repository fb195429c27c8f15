package acquire

import (
	"strings"

	"github.com/spf13/cast"
)

// Quote is a provider quote with the decorated provider keys normalized.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        string  `json:"volume"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Open          float64 `json:"open"`
	PreviousClose float64 `json:"previousClose"`
}

// NormalizeQuote maps a raw "Global Quote" object onto [Quote]. Missing or
// unparsable numeric fields become 0; volume is kept as the provider's
// string.
func NormalizeQuote(raw map[string]any) Quote {
	volume := cast.ToString(raw["06. volume"])
	if volume == "" {
		volume = "0"
	}

	return Quote{
		Symbol:        cast.ToString(raw["01. symbol"]),
		Price:         number(raw["05. price"]),
		Change:        number(raw["09. change"]),
		ChangePercent: number(strings.TrimSuffix(strings.TrimSpace(cast.ToString(raw["10. change percent"])), "%")),
		Volume:        volume,
		High:          number(raw["03. high"]),
		Low:           number(raw["04. low"]),
		Open:          number(raw["02. open"]),
		PreviousClose: number(raw["08. previous close"]),
	}
}

// Value returns q as a generic document so it can be explored and resolved
// like any other widget data.
func (q Quote) Value() map[string]any {
	return map[string]any{
		"symbol":        q.Symbol,
		"price":         q.Price,
		"change":        q.Change,
		"changePercent": q.ChangePercent,
		"volume":        q.Volume,
		"high":          q.High,
		"low":           q.Low,
		"open":          q.Open,
		"previousClose": q.PreviousClose,
	}
}

func number(v any) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

// values converts quotes to the generic form held in widget state.
func values(quotes []Quote) []any {
	out := make([]any, len(quotes))
	for i, q := range quotes {
		out[i] = q.Value()
	}
	return out
}
