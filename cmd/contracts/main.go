package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

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

	contracts, cleanup, err := di.InitializeContracts(cfg)
	if err != nil {
		log.Fatalf("contracts initialization failed: %v", err)
	}

	codes, err := contracts.Targets(context.Background(), time.Now())
	cleanup()
	if err != nil || len(codes) == 0 {
		if err != nil {
			log.Printf("targets: %v", err)
		}
		os.Exit(1)
	}
	fmt.Println(strings.Join(codes, " "))
}
