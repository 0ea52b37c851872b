package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

const (
	hypertune = "hypertune"

	// Trial metrics
	trialsCompletedTotal = "trials_completed_total"
	trialsErroredTotal   = "trials_errored_total"
	trialDurationSeconds = "trial_duration_seconds"

	// Worker metrics
	WorkerStatusCount = "worker_status_count"

	// Labels
	modelLabel       = "model"
	workerStateLabel = "state"
)

var trialLabels = []string{
	modelLabel,
}

var workerStateCountLabels = []string{
	workerStateLabel,
}

/**
* Metrics definition
**/
var trialsCompletedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: hypertune,
		Name:      trialsCompletedTotal,
		Help:      "number of trials finalized as complete, per model",
	},
	trialLabels,
)

var trialsErroredTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: hypertune,
		Name:      trialsErroredTotal,
		Help:      "number of trials finalized as errored, per model",
	},
	trialLabels,
)

var trialDurationSecondsMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: hypertune,
		Name:      trialDurationSeconds,
		Help:      "wall time spent training and evaluating one trial",
		Buckets:   []float64{1, 10, 60, 300, 900, 3600, 14400},
	},
	trialLabels,
)

var workerStatusCountMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: hypertune,
		Name:      WorkerStatusCount,
		Help:      "metrics to record the number of workers in each status",
	},
	workerStateCountLabels,
)

func IncreaseTrialsCompletedTotalMetric(model string) {
	trialsCompletedTotalMetric.With(prometheus.Labels{modelLabel: model}).Inc()
}

func IncreaseTrialsErroredTotalMetric(model string) {
	trialsErroredTotalMetric.With(prometheus.Labels{modelLabel: model}).Inc()
}

func ObserveTrialDurationMetric(model string, seconds float64) {
	trialDurationSecondsMetric.With(prometheus.Labels{modelLabel: model}).Observe(seconds)
}

func UpdateWorkerStateCounterMetric(state string, count int) {
	workerStatusCountMetric.With(prometheus.Labels{workerStateLabel: state}).Set(float64(count))
}

type PrometheusMetricsHandler struct {
	registry *prometheus.Registry
}

func NewPrometheusMetricsHandler() *PrometheusMetricsHandler {
	h := &PrometheusMetricsHandler{
		registry: prometheus.NewRegistry(),
	}

	h.registry.MustRegister(
		trialsCompletedTotalMetric,
		trialsErroredTotalMetric,
		trialDurationSecondsMetric,
		workerStatusCountMetric,
	)

	return h
}

func (h *PrometheusMetricsHandler) Handler() http.Handler {
	return promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{})
}
