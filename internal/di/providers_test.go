package di

import (
	"testing"

	"VixNav/internal/service/notify"
	"VixNav/pkg/config"
	applogger "VixNav/pkg/logger"
	"VixNav/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOptionalProvidersDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	logger := applogger.Nop()
	recorder := metrics.New(prometheus.NewRegistry())

	if s := ProvideFXStream(cfg, recorder, logger); s != nil {
		t.Fatalf("stream should be nil when finnhub is disabled, got %T", s)
	}
	h, cleanup, err := ProvideHistory(cfg, logger)
	if err != nil || h != nil {
		t.Fatalf("history: %v %v", h, err)
	}
	cleanup()
	a, err := ProvideArchive(cfg)
	if err != nil || a != nil {
		t.Fatalf("archive: %v %v", a, err)
	}
	p, cleanup, err := ProvideKafkaProducer(cfg, logger)
	if err != nil || p != nil {
		t.Fatalf("producer: %v %v", p, err)
	}
	cleanup()

	sink, err := ProvideAlertSink(cfg, p, recorder, logger)
	if err != nil {
		t.Fatalf("alert sink: %v", err)
	}
	names := sink.(*notify.MultiSink).Sinks()
	if len(names) != 1 || names[0] != "file" {
		t.Fatalf("sinks = %v, want [file]", names)
	}
}

func TestInitializeContractsWithMemoryCache(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Logger.Level = "error"

	contracts, cleanup, err := InitializeContracts(cfg)
	if err != nil {
		t.Fatalf("InitializeContracts: %v", err)
	}
	defer cleanup()
	if contracts == nil {
		t.Fatal("contracts is nil")
	}
}
