package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"VixNav/internal/di"
	"VixNav/pkg/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	timeout := flag.Duration("timeout", time.Minute, "estimate timeout")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	estimator, cleanup, err := di.InitializeNAVEstimator(cfg)
	if err != nil {
		log.Fatalf("nav initialization failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	est, err := estimator.Estimate(ctx)
	cancel()
	cleanup()
	if err != nil {
		log.Printf("nav estimate failed: %v", err)
		os.Exit(1)
	}

	fmt.Printf("run:           %s\n", est.Timestamp)
	fmt.Printf("date:          %s\n", est.CalculationDate)
	fmt.Printf("near:          %s @ %.4f x %.0f\n", est.NearFuture, est.NearPrice, est.SharesNear)
	fmt.Printf("far:           %s @ %.4f x %.0f\n", est.FarFuture, est.FarPrice, est.SharesFar)
	fmt.Printf("usd/jpy:       %.4f\n", est.FXRate)
	fmt.Printf("futures (usd): %.2f\n", est.FuturesValueUSD)
	fmt.Printf("estimated nav: %.4f\n", est.EstimatedNAV)
	if est.PublishedNAV != nil {
		fmt.Printf("published nav: %.4f\n", *est.PublishedNAV)
		fmt.Printf("difference:    %.4f (%.4f%%)\n", *est.Difference, *est.DifferencePct)
	}
}
