package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	checksTotal  *prometheus.CounterVec
	alertsTotal  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	basketValue  *prometheus.GaugeVec
	changeRatio  prometheus.Gauge
	latency      *prometheus.HistogramVec
	fxStreamRate prometheus.Gauge
}

// New creates a Prometheus metrics recorder registered on reg.
// A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		checksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vixnav_checks_total",
				Help: "Total number of price-limit checks by result",
			},
			[]string{"result"},
		),
		alertsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vixnav_alerts_total",
				Help: "Total number of alerts delivered per sink",
			},
			[]string{"sink"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vixnav_errors_total",
				Help: "Total number of errors encountered by kind",
			},
			[]string{"kind"},
		),
		basketValue: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "vixnav_basket_value_jpy",
				Help: "Last computed basket value in JPY",
			},
			[]string{"kind"},
		),
		changeRatio: f.NewGauge(prometheus.GaugeOpts{
			Name: "vixnav_change_ratio",
			Help: "Last basket change ratio against the closing valuation",
		}),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vixnav_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		fxStreamRate: f.NewGauge(prometheus.GaugeOpts{
			Name: "vixnav_fx_stream_rate",
			Help: "Last USDJPY rate received from the live stream",
		}),
	}
}

// RecordCheck counts one evaluation.
func (r *Recorder) RecordCheck(breach bool) {
	result := "ok"
	if breach {
		result = "breach"
	}
	r.checksTotal.WithLabelValues(result).Inc()
}

// RecordAlert counts one delivered alert.
func (r *Recorder) RecordAlert(sink string) {
	r.alertsTotal.WithLabelValues(sink).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordBasketValue sets the initial or current basket value.
func (r *Recorder) RecordBasketValue(kind string, jpy float64) {
	r.basketValue.WithLabelValues(kind).Set(jpy)
}

func (r *Recorder) RecordChange(ratio float64) {
	r.changeRatio.Set(ratio)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordFXStream(rate float64) {
	r.fxStreamRate.Set(rate)
}
