package main

import (
	"flag"
	"log"
	"os"

	"MLChartist/internal/di"
	"MLChartist/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s returns=%s predictions=%s", cfg.Environment, cfg.Data.ReturnsPath, cfg.Data.PredictionsPath)

	// Data load failures are fatal before serving.
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
