// Package mockprovider serves fake Alpha Vantage responses for demos and
// local development. Prices follow a seeded random walk per symbol, so the
// same symbol returns consistent series and quotes that drift between
// requests.
package mockprovider

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// ThrottledSymbol always answers with the provider's rate limit note.
const ThrottledSymbol = "THROTTLE"

const seriesLength = 60

// Server holds the simulated price of every symbol seen so far.
type Server struct {
	mu     sync.Mutex
	prices map[string]float64
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates a Server. A nil logger selects slog.Default().
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		prices: make(map[string]float64),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

// Handler routes /query like the real provider and /crypto as an example
// custom endpoint returning a JSON array.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/crypto", s.handleCrypto)
	return mux
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := strings.ToUpper(q.Get("symbol"))
	function := q.Get("function")

	if q.Get("apikey") == "" {
		writeJSON(w, map[string]any{"Error Message": "the parameter apikey is invalid or missing"})
		return
	}
	if symbol == ThrottledSymbol {
		writeJSON(w, map[string]any{"Note": "Thank you for using our API. Our standard API rate limit is 5 requests per minute."})
		return
	}
	if symbol == "" {
		writeJSON(w, map[string]any{"Error Message": "Invalid API call."})
		return
	}

	s.logger.Debug("mock provider request", "function", function, "symbol", symbol)

	switch function {
	case "GLOBAL_QUOTE":
		writeJSON(w, map[string]any{"Global Quote": s.quote(symbol)})
	case "TIME_SERIES_DAILY":
		writeJSON(w, s.series(symbol, "Time Series (Daily)", 24*time.Hour))
	case "TIME_SERIES_WEEKLY":
		writeJSON(w, s.series(symbol, "Weekly Time Series", 7*24*time.Hour))
	case "TIME_SERIES_MONTHLY":
		writeJSON(w, s.series(symbol, "Monthly Time Series", 30*24*time.Hour))
	default:
		writeJSON(w, map[string]any{"Error Message": fmt.Sprintf("Invalid API call. Unknown function %q.", function)})
	}
}

func (s *Server) handleCrypto(w http.ResponseWriter, r *http.Request) {
	coins := []string{"BTC", "ETH", "SOL"}
	out := make([]map[string]any, len(coins))
	s.mu.Lock()
	for i, c := range coins {
		prev := s.priceLocked(c)
		next := s.stepLocked(c)
		out[i] = map[string]any{
			"name":   c,
			"price":  round2(next),
			"change": round2((next - prev) / prev * 100),
			"listed": "2015-07-30",
		}
	}
	s.mu.Unlock()
	writeJSON(w, map[string]any{"data": map[string]any{"coins": out}, "updated": time.Now().UTC().Format(time.RFC3339)})
}

// quote moves the symbol's price one step and reports it in the provider's
// decorated format.
func (s *Server) quote(symbol string) map[string]any {
	s.mu.Lock()
	prev := s.priceLocked(symbol)
	price := s.stepLocked(symbol)
	s.mu.Unlock()

	change := price - prev
	return map[string]any{
		"01. symbol":             symbol,
		"02. open":               fmt.Sprintf("%.4f", prev),
		"03. high":               fmt.Sprintf("%.4f", math.Max(prev, price)*1.004),
		"04. low":                fmt.Sprintf("%.4f", math.Min(prev, price)*0.996),
		"05. price":              fmt.Sprintf("%.4f", price),
		"06. volume":             fmt.Sprintf("%d", 1_000_000+s.intn(9_000_000)),
		"07. latest trading day": time.Now().Format("2006-01-02"),
		"08. previous close":     fmt.Sprintf("%.4f", prev),
		"09. change":             fmt.Sprintf("%.4f", change),
		"10. change percent":     fmt.Sprintf("%.4f%%", change/prev*100),
	}
}

// series walks backwards from the current price so the last close matches
// the latest quote.
func (s *Server) series(symbol, key string, step time.Duration) map[string]any {
	s.mu.Lock()
	price := s.priceLocked(symbol)
	s.mu.Unlock()

	walk := rand.New(rand.NewSource(seed(symbol + key)))
	points := make(map[string]any, seriesLength)
	day := time.Now().Truncate(24 * time.Hour)
	for i := 0; i < seriesLength; i++ {
		open := price * (1 + (walk.Float64()-0.5)*0.02)
		points[day.Format("2006-01-02")] = map[string]any{
			"1. open":   fmt.Sprintf("%.4f", open),
			"2. high":   fmt.Sprintf("%.4f", math.Max(open, price)*1.01),
			"3. low":    fmt.Sprintf("%.4f", math.Min(open, price)*0.99),
			"4. close":  fmt.Sprintf("%.4f", price),
			"5. volume": fmt.Sprintf("%d", 1_000_000+walk.Intn(9_000_000)),
		}
		price = open
		day = day.Add(-step)
	}

	return map[string]any{
		"Meta Data": map[string]any{
			"1. Information": strings.TrimSuffix(key, " Time Series") + " prices",
			"2. Symbol":      symbol,
		},
		key: points,
	}
}

func (s *Server) priceLocked(symbol string) float64 {
	p, ok := s.prices[symbol]
	if !ok {
		p = 20 + float64(seed(symbol)%480)
		s.prices[symbol] = p
	}
	return p
}

func (s *Server) stepLocked(symbol string) float64 {
	p := s.priceLocked(symbol) * (1 + (s.rng.Float64()-0.5)*0.03)
	s.prices[symbol] = p
	return p
}

func (s *Server) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func seed(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return int64(h.Sum64() >> 1)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
