package notify

import (
	"context"
	"errors"
	"fmt"

	"VixNav/internal/domain/models"
	"VixNav/internal/domain/repository"
	applogger "VixNav/pkg/logger"
)

// MultiSink sends every alert to all sinks. A failing sink does not stop the others.
type MultiSink struct {
	sinks   []repository.AlertSink
	metrics repository.Metrics
	logger  *applogger.Logger
}

var _ repository.AlertSink = (*MultiSink)(nil)

// NewMultiSink skips nil sinks. metrics may be nil.
func NewMultiSink(logger *applogger.Logger, metrics repository.Metrics, sinks ...repository.AlertSink) *MultiSink {
	if logger == nil {
		logger = applogger.Nop()
	}
	m := &MultiSink{metrics: metrics, logger: logger}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) Name() string { return "multi" }

// Sinks returns the names of the configured sinks.
func (m *MultiSink) Sinks() []string {
	names := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		names[i] = s.Name()
	}
	return names
}

func (m *MultiSink) Send(ctx context.Context, a *models.Alert) error {
	var errList []error
	for _, s := range m.sinks {
		if err := s.Send(ctx, a); err != nil {
			m.logger.Error("alert delivery failed",
				applogger.String("sink", s.Name()),
				applogger.String("alert_id", a.ID),
				applogger.Error(err),
			)
			errList = append(errList, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		if m.metrics != nil {
			m.metrics.RecordAlert(s.Name())
		}
	}
	return errors.Join(errList...)
}
