// Package metrics instruments the frame loops. Counters live on a private
// registry and are exposed over HTTP only when a metrics address is
// configured, which matters for converters running indefinitely on a pipe.
package metrics

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// FramesProcessed counts frames through the converter loop, errors
	// included, matching the tool's reported frame count.
	FramesProcessed = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "veuctl_frames_processed_total",
		Help: "Frames pushed through the transform loop.",
	})

	// ReadErrors counts short or failed reads that did not stop the loop.
	ReadErrors = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "veuctl_read_errors_total",
		Help: "Non-fatal input read errors.",
	})

	// WriteErrors counts short or failed writes that did not stop the loop.
	WriteErrors = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "veuctl_write_errors_total",
		Help: "Non-fatal output write errors.",
	})

	// TransformErrors counts failures reported by the transform engine.
	TransformErrors = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Name: "veuctl_transform_errors_total",
		Help: "Errors returned by transform operations.",
	})

	// TransformDuration observes wall time per transform call.
	TransformDuration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Name:    "veuctl_transform_seconds",
		Help:    "Duration of a single transform operation.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})
)

// Serve exposes /metrics on addr in a background goroutine. Listener
// failures are logged, not fatal: instrumentation must never take the
// pipeline down.
func Serve(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("Metrics listener failed", "error", err)
		}
	}()
}
