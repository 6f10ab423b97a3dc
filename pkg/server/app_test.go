package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"VixNav/internal/domain/models"
	"VixNav/internal/usecase"
	xhttp "VixNav/pkg/http"
)

type stubStream struct {
	started, closed atomic.Bool
}

func (s *stubStream) Start(ctx context.Context) error {
	s.started.Store(true)
	<-ctx.Done()
	return nil
}

func (s *stubStream) Latest() (models.FXQuote, bool) { return models.FXQuote{}, false }

func (s *stubStream) Close() error {
	s.closed.Store(true)
	return nil
}

type stubMonitor struct{ calls atomic.Int32 }

func (m *stubMonitor) Monitor(ctx context.Context, _ time.Duration, _ int) (usecase.MonitorSummary, error) {
	m.calls.Add(1)
	<-ctx.Done()
	return usecase.MonitorSummary{Checks: 1}, nil
}

func TestRunStopsOnCancel(t *testing.T) {
	srv := xhttp.NewServer(nil, nil, xhttp.WithHost("127.0.0.1"), xhttp.WithPort(0))
	stream, mon := &stubStream{}, &stubMonitor{}
	app := New(Options{MonitorEnabled: true, CheckInterval: time.Second, MaxAlerts: 5, ShutdownTimeout: time.Second}, nil, srv, mon, stream)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for (!stream.started.Load() || mon.calls.Load() == 0) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
	if !stream.started.Load() || !stream.closed.Load() || mon.calls.Load() != 1 {
		t.Fatalf("started=%v closed=%v monitor=%d", stream.started.Load(), stream.closed.Load(), mon.calls.Load())
	}
}

func TestRunWithoutMonitor(t *testing.T) {
	mon := &stubMonitor{}
	app := New(Options{MonitorEnabled: false}, nil, nil, mon, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if mon.calls.Load() != 0 {
		t.Fatal("monitor should not run when disabled")
	}
}
