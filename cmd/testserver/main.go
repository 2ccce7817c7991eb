// testserver runs a deterministic fake AUR for local development and
// end-to-end poking. Usage: go run ./cmd/testserver
package main

import (
	"log"
	"os"

	"github.com/auric-sh/auric/internal/config"
	"github.com/auric-sh/auric/internal/fakeaur"
)

func main() {
	addr := ":8444"
	if v := os.Getenv("AURIC_TESTSERVER_ADDR"); v != "" {
		addr = v
	}

	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	srv := fakeaur.NewServer(addr, logger)
	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
