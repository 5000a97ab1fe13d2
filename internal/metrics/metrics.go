package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfmerger",
			Name:      "operations_total",
			Help:      "Merge and split operations by workflow, mode and result",
		},
		[]string{"workflow", "mode", "result"},
	)

	operationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdfmerger",
			Name:      "operation_duration_seconds",
			Help:      "Duration of merge and split operations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"workflow", "mode"},
	)

	pagesAssembled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfmerger",
			Name:      "pages_assembled_total",
			Help:      "Pages copied into output documents",
		},
		[]string{"workflow"},
	)

	outputFiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfmerger",
			Name:      "output_files_total",
			Help:      "Output files delivered",
		},
		[]string{"workflow"},
	)

	telemetryEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfmerger",
			Name:      "telemetry_events_total",
			Help:      "Usage events by name",
		},
		[]string{"event"},
	)

	telemetryDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfmerger",
			Name:      "telemetry_dropped_total",
			Help:      "Usage events dropped because the delivery buffer was full or the sink failed",
		},
	)

	rejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfmerger",
			Name:      "operation_rejections_total",
			Help:      "Submissions rejected because another operation was in flight",
		},
	)

	registerOnce sync.Once
)

// Init registers collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(operations, operationLatency, pagesAssembled, outputFiles,
			telemetryEvents, telemetryDropped, rejections)
	})
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

// ObserveOperation records one finished operation.
func ObserveOperation(workflow, mode, result string, dur time.Duration) {
	operations.WithLabelValues(workflow, mode, result).Inc()
	operationLatency.WithLabelValues(workflow, mode).Observe(dur.Seconds())
}

func AddPages(workflow string, n int)   { pagesAssembled.WithLabelValues(workflow).Add(float64(n)) }
func AddOutputs(workflow string, n int) { outputFiles.WithLabelValues(workflow).Add(float64(n)) }

func IncTelemetryEvent(event string) { telemetryEvents.WithLabelValues(event).Inc() }
func IncTelemetryDropped()           { telemetryDropped.Inc() }
func IncRejection()                  { rejections.Inc() }
