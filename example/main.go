package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/finboard"
	"github.com/jpalmerr/finboard/example/mockprovider"
)

func main() {
	// fake provider on :9999 so the demo needs no API key
	mock := &http.Server{Addr: ":9999", Handler: mockprovider.New(nil).Handler()}
	go func() {
		if err := mock.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("mock provider error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	price, err := finboard.NewWidget("aapl", finboard.WidgetCard,
		finboard.WithWidgetTitle("Apple"),
		finboard.WithSymbol("AAPL"),
		finboard.WithFieldMappings(
			finboard.FieldMapping{DisplayName: "Price", FieldPath: "05. price", Format: finboard.FormatCurrency},
			finboard.FieldMapping{DisplayName: "Change", FieldPath: "10. change percent", Format: finboard.FormatPercentage},
			finboard.FieldMapping{DisplayName: "Volume", FieldPath: "06. volume", Format: finboard.FormatNumber},
		),
		finboard.WithRefreshInterval(10*time.Second),
	)
	if err != nil {
		slog.Error("failed to create widget", "error", err)
		os.Exit(1)
	}

	watchlist, _ := finboard.NewWidget("watchlist", finboard.WidgetCard,
		finboard.WithWidgetTitle("Watchlist"),
		finboard.WithCardType(finboard.CardWatchlist),
		finboard.WithDataSource("AAPL,MSFT,NVDA,TSLA"),
	)

	movers, _ := finboard.NewWidget("movers", finboard.WidgetCard,
		finboard.WithWidgetTitle("Top Movers"),
		finboard.WithCardType(finboard.CardGainers),
		finboard.WithRefreshInterval(time.Minute),
	)

	crypto, _ := finboard.NewWidget("crypto", finboard.WidgetTable,
		finboard.WithWidgetTitle("Crypto"),
		finboard.WithAPIConfig("http://localhost:9999/crypto", nil),
		finboard.WithFieldMappings(
			finboard.FieldMapping{DisplayName: "BTC", FieldPath: "data.coins.0.price", Format: finboard.FormatCurrency},
			finboard.FieldMapping{DisplayName: "Updated", FieldPath: "updated", Format: finboard.FormatDate},
		),
	)

	// grid: 2 symbols x 2 intervals = 4 charts from one declaration
	charts, err := finboard.NewWidgetGrid("charts", finboard.WidgetChart,
		finboard.WithGridTitle("Prices"),
		finboard.WithGridSymbols("MSFT", "NVDA"),
		finboard.WithGridIntervals(finboard.IntervalDaily, finboard.IntervalWeekly),
		finboard.WithGridRefreshInterval(5*time.Minute),
	)
	if err != nil {
		slog.Error("failed to create widget grid", "error", err)
		os.Exit(1)
	}

	fb, err := finboard.New(
		finboard.WithAPIKey("demo"),
		finboard.WithTitle("Finboard Demo"),
		finboard.WithProviderBaseURL("http://localhost:9999/query"),
		finboard.WithBatchDelay(200*time.Millisecond),
		finboard.WithWidgets(price, watchlist, movers, crypto),
		finboard.WithWidgets(charts...),
		finboard.WithPort(8080),
	)
	if err != nil {
		slog.Error("failed to create finboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  Finboard Demo")
	fmt.Println()
	fmt.Println("  Open http://localhost:8080 in your browser")
	fmt.Println()
	fmt.Println("  Widgets:")
	fmt.Println("  • AAPL quote card (10s)")
	fmt.Println("  • watchlist and top movers")
	fmt.Println("  • crypto table from a custom endpoint")
	fmt.Println("  • 4 charts (2 symbols × 2 intervals via grid)")
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = fb.Start(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = mock.Shutdown(shutdownCtx)

	if err != nil {
		slog.Error("finboard error", "error", err)
		os.Exit(1)
	}
}
