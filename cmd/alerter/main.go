package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"VixNav/internal/di"
	"VixNav/pkg/config"
	applogger "VixNav/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	monitor := flag.Bool("monitor", false, "keep checking until the alert limit is reached")
	interval := flag.Duration("interval", 0, "check interval in monitor mode (defaults to fund.check_interval)")
	maxAlerts := flag.Int("max-alerts", 0, "alerts before monitoring stops (defaults to fund.max_alerts)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if *interval <= 0 {
		*interval = cfg.Fund.CheckInterval
	}
	if *maxAlerts <= 0 {
		*maxAlerts = cfg.Fund.MaxAlerts
	}

	job, cleanup, err := di.InitializeAlerterJob(cfg)
	if err != nil {
		log.Fatalf("alerter initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, job, *monitor, *interval, *maxAlerts)
	stop()
	cleanup()
	os.Exit(code)
}

func run(ctx context.Context, job *di.AlerterJob, monitor bool, interval time.Duration, maxAlerts int) int {
	if job.Stream != nil && monitor {
		go func() {
			if err := job.Stream.Start(ctx); err != nil {
				job.Logger.Error("fx stream error", applogger.Error(err))
			}
		}()
		defer job.Stream.Close()
	}

	if !monitor {
		res, err := job.Alerter.Check(ctx)
		if err != nil {
			job.Logger.Error("check failed", applogger.Error(err))
			return 1
		}
		fmt.Printf("fund=%s close=%.0f band=[%.0f, %.0f] change=%.2f%% allowed=[%.2f%%, %.2f%%] breach=%t\n",
			res.Fund, res.Closing.Price, res.Band.Lower, res.Band.Upper,
			res.Decision.ChangePct, res.Decision.AllowedLowerPct, res.Decision.AllowedUpperPct, res.Decision.Breach)
		return 0
	}

	sum, err := job.Alerter.Monitor(ctx, interval, maxAlerts)
	fmt.Printf("checks=%d alerts=%d errors=%d\n", sum.Checks, sum.Alerts, sum.Errors)
	if err != nil {
		job.Logger.Error("monitor failed", applogger.Error(err))
		return 1
	}
	return 0
}
