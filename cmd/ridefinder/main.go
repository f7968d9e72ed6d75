package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/ride-ledger/internal/config"
	"github.com/example/ride-ledger/internal/console"
	"github.com/example/ride-ledger/internal/fare"
	"github.com/example/ride-ledger/internal/ledger"
	"github.com/example/ride-ledger/internal/logging"
	"github.com/example/ride-ledger/internal/policy"
	"github.com/example/ride-ledger/internal/storage"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file")
	logLevel := flag.String("log-level", "warn", "log level for diagnostics on stderr")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.LoadLedgerConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(*logLevel, "text", os.Stderr)

	l := ledger.New(ledger.Options{
		Policy: policy.Policy{MaxPickupDistanceKm: cfg.MaxPickupDistanceKm},
		Fare:   &fare.Calculator{BaseFare: cfg.BaseFare, PerKm: cfg.FarePerKm},
		Store:  storage.NewMemoryStore(),
		Logger: logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := console.New(l, os.Stdin, os.Stdout, cfg.MaxPickupDistanceKm)
	if err := c.Run(ctx); err != nil {
		logger.Error("console failed", "error", err)
		os.Exit(1)
	}
}
