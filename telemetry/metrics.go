package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kbridge-io/kbridge/logger"
)

var (
	RecordsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kbridge",
		Subsystem: "pipeline",
		Name:      "records_fetched_total",
		Help:      "Records fetched from the broker.",
	})

	BatchesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kbridge",
		Subsystem: "pipeline",
		Name:      "batches_processed_total",
		Help:      "Batches handed to the processor that succeeded.",
	})

	OffsetsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kbridge",
		Subsystem: "pipeline",
		Name:      "offset_commits_total",
		Help:      "Per-partition offsets committed to the broker.",
	})

	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kbridge",
		Subsystem: "pipeline",
		Name:      "errors_total",
		Help:      "Pipeline failures by stage.",
	}, []string{"stage"})
)

// Expose serves the Prometheus registry on addr in the background. The
// server failing to come up (bad addr, port in use) does not stop the
// pipeline; it is logged so a silent metrics outage is visible.
func Expose(addr string, l logger.Logger) {
	if l == nil {
		l = logger.NewNoopLogger()
	}

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			l.Error("Metrics server stopped", "addr", addr, "error", err)
		}
	}()
}
