// Package metrics provides Prometheus metrics for the video and audio loops
// and the threads that run them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "loopthru"

var (
	videoFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "video",
		Name:      "frames_total",
		Help:      "Frames copied from capture to display",
	})

	videoBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "video",
		Name:      "bytes_copied_total",
		Help:      "Bytes copied into display surfaces",
	})

	videoFlips = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "video",
		Name:      "flips_total",
		Help:      "Successful display flips",
	})

	videoIOFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "video",
		Name:      "io_failures_total",
		Help:      "Steady-state device failures by operation",
	}, []string{"op"})

	videoDisplayed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "video",
		Name:      "displayed_index",
		Help:      "Index of the surface currently presented",
	})
)

// RecordFrame accounts one completed capture-to-display cycle.
func RecordFrame(bytes int, displayed int) {
	videoFrames.Inc()
	videoBytes.Add(float64(bytes))
	videoFlips.Inc()
	videoDisplayed.Set(float64(displayed))
}

// RecordVideoIOFailure counts a failed dequeue, flip or enqueue.
func RecordVideoIOFailure(op string) {
	videoIOFailures.WithLabelValues(op).Inc()
}
