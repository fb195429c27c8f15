// Standalone mock provider for trying the CLI without an API key.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/finboard serve -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jpalmerr/finboard/example/mockprovider"
)

func main() {
	fmt.Println("Mock provider starting on :9999")
	fmt.Println("Quotes drift on every request; symbol THROTTLE returns a rate limit note")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if err := http.ListenAndServe(":9999", mockprovider.New(logger).Handler()); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
