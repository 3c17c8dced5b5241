package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded in supplyscore_runs_total.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Registry holds the service collectors. A nil *Registry is valid and records nothing.
type Registry struct {
	reg       *prometheus.Registry
	Runs      *prometheus.CounterVec
	Trainings *prometheus.CounterVec
	Fallbacks *prometheus.CounterVec
	ModelR2   prometheus.Gauge
	ModelMSE  prometheus.Gauge
	Duration  *prometheus.HistogramVec
}

// NewRegistry creates a dedicated prometheus registry with every service collector registered.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "supplyscore_runs_total",
		Help: "Scoring operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	trainings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "supplyscore_trainings_total",
		Help: "Successful model fits by trigger.",
	}, []string{"trigger"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "supplyscore_fallbacks_total",
		Help: "Predictions that had to retrain, by reason.",
	}, []string{"reason"})
	r2 := prometheus.NewGauge(prometheus.GaugeOpts{Name: "supplyscore_model_r2"})
	mse := prometheus.NewGauge(prometheus.GaugeOpts{Name: "supplyscore_model_mse"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "supplyscore_run_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	r.MustRegister(runs, trainings, fallbacks, r2, mse, duration)
	return &Registry{
		reg:       r,
		Runs:      runs,
		Trainings: trainings,
		Fallbacks: fallbacks,
		ModelR2:   r2,
		ModelMSE:  mse,
		Duration:  duration,
	}
}

// ObserveRun records the outcome and latency of one operation.
func (r *Registry) ObserveRun(operation string, started time.Time, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	r.Runs.WithLabelValues(operation, outcome).Inc()
	r.Duration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

// ObserveTraining records a successful fit and its metrics.
func (r *Registry) ObserveTraining(trigger string, r2, mse float64) {
	if r == nil {
		return
	}
	r.Trainings.WithLabelValues(trigger).Inc()
	r.ModelR2.Set(r2)
	r.ModelMSE.Set(mse)
}

// ObserveFallback records a prediction that had to train first. reason is the training trigger.
func (r *Registry) ObserveFallback(reason string) {
	if r == nil {
		return
	}
	r.Fallbacks.WithLabelValues(reason).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
