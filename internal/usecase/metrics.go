package usecase

import (
	"VixNav/internal/domain/errs"
	drepo "VixNav/internal/domain/repository"
)

type nopMetrics struct{}

func (nopMetrics) RecordCheck(bool)                  {}
func (nopMetrics) RecordAlert(string)                {}
func (nopMetrics) RecordError(string)                {}
func (nopMetrics) RecordBasketValue(string, float64) {}
func (nopMetrics) RecordChange(float64)              {}
func (nopMetrics) RecordLatency(string, float64)     {}

func orNop(m drepo.Metrics) drepo.Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}

func recordErr(m drepo.Metrics, err error) {
	if err != nil {
		m.RecordError(errs.KindOf(err).String())
	}
}
