package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"VixNav/internal/domain/repository"
	"VixNav/internal/usecase"
	xhttp "VixNav/pkg/http"
	applogger "VixNav/pkg/logger"
)

// Monitor is the alerter loop run in the background.
type Monitor interface {
	Monitor(ctx context.Context, interval time.Duration, maxAlerts int) (usecase.MonitorSummary, error)
}

// Task is a background job bound to the app's lifetime.
type Task func(ctx context.Context)

// Options selects what the long-running app starts besides the HTTP server.
type Options struct {
	MonitorEnabled  bool
	CheckInterval   time.Duration
	MaxAlerts       int
	ShutdownTimeout time.Duration
}

// App encapsulates the entire application lifecycle.
type App struct {
	opts       Options
	logger     *applogger.Logger
	httpServer *xhttp.Server
	monitor    Monitor
	stream     repository.FXStream
	tasks      []Task
}

// New creates an App. monitor and stream may be nil.
func New(opts Options, logger *applogger.Logger, httpServer *xhttp.Server, monitor Monitor, stream repository.FXStream, tasks ...Task) *App {
	if logger == nil {
		logger = applogger.Nop()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	return &App{opts: opts, logger: logger, httpServer: httpServer, monitor: monitor, stream: stream, tasks: tasks}
}

// Run starts every component and blocks until SIGINT, SIGTERM, ctx cancellation
// or an HTTP listen failure.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if a.stream != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.stream.Start(ctx); err != nil {
				a.logger.Error("fx stream error", applogger.Error(err))
			}
		}()
		a.logger.Info("fx stream started")
	}

	for _, task := range a.tasks {
		wg.Add(1)
		go func(run Task) {
			defer wg.Done()
			run(ctx)
		}(task)
	}

	if a.monitor != nil && a.opts.MonitorEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sum, err := a.monitor.Monitor(ctx, a.opts.CheckInterval, a.opts.MaxAlerts)
			if err != nil {
				a.logger.Error("monitor stopped with error", applogger.Error(err))
				return
			}
			a.logger.Info("monitor finished",
				applogger.Int("checks", sum.Checks),
				applogger.Int("alerts", sum.Alerts),
				applogger.Int("errors", sum.Errors),
			)
		}()
	}

	var runErr error
	if a.httpServer != nil {
		if runErr = a.httpServer.Start(); runErr == nil {
			select {
			case <-ctx.Done():
				a.logger.Info("shutdown signal received")
			case runErr = <-a.httpServer.Err():
			}
		}
	} else {
		<-ctx.Done()
	}
	stop()

	return errors.Join(runErr, a.shutdown(&wg))
}

// shutdown gracefully stops all services.
func (a *App) shutdown(wg *sync.WaitGroup) error {
	a.logger.Info("shutting down...")
	var errList []error

	if a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.logger.Error("http shutdown error", applogger.Error(err))
			errList = append(errList, err)
		}
	}
	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.logger.Warn("fx stream close error", applogger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(a.opts.ShutdownTimeout):
		a.logger.Warn("background tasks did not stop in time")
	}

	a.logger.Info("shutdown complete")
	return errors.Join(errList...)
}
