package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "pie"

// Metrics — prometheus-реализация usecase.MetricsInfra.
type Metrics struct {
	registry *prometheus.Registry

	rebuildDuration *prometheus.HistogramVec
	rebuildTotal    *prometheus.CounterVec
	queryDuration   *prometheus.HistogramVec
	queryResults    *prometheus.HistogramVec
	predictions     *prometheus.CounterVec
	indexSize       prometheus.Gauge
}

// New регистрирует метрики движка и стандартные коллекторы процесса в собственном реестре.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rebuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rebuild_duration_seconds",
			Help:      "Duration of index and model rebuilds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
		}, []string{"component"}),
		rebuildTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rebuilds_total",
			Help:      "Rebuilds by component and outcome.",
		}, []string{"component", "status"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Recommendation query latency by strategy.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"strategy"}),
		queryResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Number of recommendations returned by strategy.",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}, []string{"strategy"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "category_predictions_total",
			Help:      "Category predictions by outcome.",
		}, []string{"status"}),
		indexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_products",
			Help:      "Number of products in the active similarity index.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rebuildDuration,
		m.rebuildTotal,
		m.queryDuration,
		m.queryResults,
		m.predictions,
		m.indexSize,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveRebuild(component string, d time.Duration, err error) {
	m.rebuildDuration.WithLabelValues(component).Observe(d.Seconds())
	m.rebuildTotal.WithLabelValues(component, status(err == nil)).Inc()
}

func (m *Metrics) ObserveQuery(strategy string, d time.Duration, results int) {
	m.queryDuration.WithLabelValues(strategy).Observe(d.Seconds())
	m.queryResults.WithLabelValues(strategy).Observe(float64(results))
}

func (m *Metrics) ObservePrediction(ok bool) {
	m.predictions.WithLabelValues(status(ok)).Inc()
}

func (m *Metrics) SetIndexSize(n int) {
	m.indexSize.Set(float64(n))
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
