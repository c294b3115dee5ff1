// Standalone mock garden server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/gardenwatch serve -c example/garden.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/gardenwatch/example/mockgarden"
)

const (
	outageEvery  = 60 * time.Second
	outageLength = 15 * time.Second
)

func main() {
	fmt.Println("Mock garden server starting on :3000")
	fmt.Printf("An outage of %s starts every %s\n", outageLength, outageEvery)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	garden := mockgarden.New()
	go func() {
		for range time.Tick(outageEvery) {
			garden.SetOutage(true)
			time.Sleep(outageLength)
			garden.SetOutage(false)
		}
	}()

	if err := http.ListenAndServe(":3000", garden.Handler()); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
