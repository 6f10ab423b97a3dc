package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"VixNav/internal/di"
	"VixNav/pkg/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	collector, cleanup, err := di.InitializeCollector(cfg)
	if err != nil {
		log.Fatalf("collector initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	sum, err := collector.Collect(ctx)
	stop()
	cleanup()
	if err != nil {
		log.Printf("collect failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("run=%s futures=%d fx=%d files=%d archived=%d\n", sum.Run, len(sum.Futures), len(sum.FX), len(sum.Files), sum.Archived)
	for _, w := range sum.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
