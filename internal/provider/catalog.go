package provider

import "time"

// Known provider identifiers.
const (
	AlphaVantage = "alphavantage"
	Finnhub      = "finnhub"
	IndianAPI    = "indianapi"
	Custom       = "custom"
)

// RateLimit is a provider's published request quota. Zero means unlimited.
type RateLimit struct {
	RequestsPerMinute int
	RequestsPerDay    int
}

// MinInterval is the smallest spacing between sequential requests that
// stays within the per-minute quota. Zero when unlimited.
func (r RateLimit) MinInterval() time.Duration {
	if r.RequestsPerMinute <= 0 {
		return 0
	}
	return time.Minute / time.Duration(r.RequestsPerMinute)
}

// Info describes a market data provider.
type Info struct {
	Name          string
	BaseURL       string
	RequiresKey   bool
	Limit         RateLimit
	Documentation string
}

// Catalog lists the providers finboard knows about. Only Alpha Vantage is
// wired to typed operations; the others document quotas for custom
// endpoints pointed at them.
var Catalog = map[string]Info{
	AlphaVantage: {
		Name:          "Alpha Vantage",
		BaseURL:       DefaultBaseURL,
		RequiresKey:   true,
		Limit:         RateLimit{RequestsPerMinute: 5, RequestsPerDay: 500},
		Documentation: "https://www.alphavantage.co/documentation/",
	},
	Finnhub: {
		Name:          "Finnhub",
		BaseURL:       "https://finnhub.io/api/v1",
		RequiresKey:   true,
		Limit:         RateLimit{RequestsPerMinute: 60},
		Documentation: "https://finnhub.io/docs/api",
	},
	IndianAPI: {
		Name:          "Indian Stock API",
		BaseURL:       "https://api.indianstocks.in/v1",
		Limit:         RateLimit{RequestsPerMinute: 30, RequestsPerDay: 1000},
		Documentation: "https://docs.indianstocks.in/",
	},
	Custom: {
		Name: "Custom API",
	},
}

// DefaultBatchDelay spaces sequential quote requests so a batch never
// exceeds the Alpha Vantage free tier quota.
var DefaultBatchDelay = Catalog[AlphaVantage].Limit.MinInterval()
