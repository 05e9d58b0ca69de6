package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MLChartist/internal/di"
	"MLChartist/pkg/config"
)

// precompute writes the documents served by /api/backtest for a range of N.
func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	from := flag.Int("from", 1, "first number of companies")
	to := flag.Int("to", 30, "last number of companies (inclusive)")
	flag.Parse()

	if *from <= 0 || *to < *from {
		log.Fatalf("invalid range: -from=%d -to=%d", *from, *to)
	}

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	svc, err := di.InitializeBacktestService(cfg)
	if err != nil {
		log.Fatalf("initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	for n := *from; n <= *to; n++ {
		if err := svc.Precompute(ctx, n); err != nil {
			log.Printf("precompute companies=%d: %v", n, err)
			stop()
			os.Exit(1)
		}
	}
	log.Printf("wrote N%d..N%d into %s in %s", *from, *to, cfg.Data.CacheDir, time.Since(start).Round(time.Millisecond))
}
