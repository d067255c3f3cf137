package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"der-reliability/internal/model"
)

// Recorder implements engine.Recorder using Prometheus.
type Recorder struct {
	rounds      *prometheus.CounterVec
	years       *prometheus.CounterVec
	cov         *prometheus.GaugeVec
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		rounds: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "der_reliability_rounds_total",
				Help: "Total number of simulation rounds completed",
			},
			[]string{"configuration"},
		),
		years: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "der_reliability_years_simulated_total",
				Help: "Total number of simulated years",
			},
			[]string{"configuration"},
		),
		cov: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "der_reliability_last_cov",
				Help: "Largest coefficient of variation after the last round",
			},
			[]string{"configuration"},
		),
		evaluations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "der_reliability_evaluations_total",
				Help: "Total number of finished evaluations",
			},
			[]string{"configuration", "converged"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "der_reliability_evaluation_duration_seconds",
				Help:    "Duration of evaluations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"configuration"},
		),
	}
}

// RoundCompleted records one finished round.
func (r *Recorder) RoundCompleted(cfg model.Configuration, years int, maxCoV float64) {
	c := cfg.String()
	r.rounds.WithLabelValues(c).Inc()
	r.years.WithLabelValues(c).Add(float64(years))
	r.cov.WithLabelValues(c).Set(maxCoV)
}

// EvaluationFinished records a completed evaluation.
func (r *Recorder) EvaluationFinished(cfg model.Configuration, elapsed time.Duration, converged bool) {
	c := cfg.String()
	conv := "false"
	if converged {
		conv = "true"
	}
	r.evaluations.WithLabelValues(c, conv).Inc()
	r.duration.WithLabelValues(c).Observe(elapsed.Seconds())
}
