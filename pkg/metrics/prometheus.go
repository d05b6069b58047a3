package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent *prometheus.CounterVec
	runsTotal    *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	dailyRate    *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a Prometheus recorder registered on reg; nil means the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		messagesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratebot_messages_sent_total",
				Help: "Total number of chat messages sent, by kind",
			},
			[]string{"kind"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratebot_report_runs_total",
				Help: "Report runs by terminal state",
			},
			[]string{"state"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratebot_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		dailyRate: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ratebot_daily_rate_percent",
				Help: "Last fetched daily funding rate in percent",
			},
			[]string{"instrument"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ratebot_stage_duration_seconds",
				Help:    "Duration of report pipeline stages in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 30},
			},
			[]string{"stage"},
		),
	}
}

// RecordMessageSent records a chat message of the given kind (reply, push_text, push_image).
func (r *Recorder) RecordMessageSent(kind string) {
	r.messagesSent.WithLabelValues(kind).Inc()
}

// RecordRun records a run reaching a terminal state.
func (r *Recorder) RecordRun(state string) {
	r.runsTotal.WithLabelValues(state).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordDailyRate records the last daily rate for an instrument.
func (r *Recorder) RecordDailyRate(instrument string, percent float64) {
	r.dailyRate.WithLabelValues(instrument).Set(percent)
}

// RecordLatency records stage latency.
func (r *Recorder) RecordLatency(stage string, d time.Duration) {
	r.latency.WithLabelValues(stage).Observe(d.Seconds())
}

// Nop discards everything; useful in tests and one-shot commands.
type Nop struct{}

func (Nop) RecordMessageSent(string)            {}
func (Nop) RecordRun(string)                    {}
func (Nop) RecordError(string)                  {}
func (Nop) RecordDailyRate(string, float64)     {}
func (Nop) RecordLatency(string, time.Duration) {}
