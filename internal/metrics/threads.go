package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	threadRunning = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "thread",
		Name:      "running",
		Help:      "1 while the loop thread is running",
	}, []string{"thread"})

	threadExits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "thread",
		Name:      "exits_total",
		Help:      "Loop thread exits by outcome",
	}, []string{"thread", "outcome"})
)

// SetThreadRunning flags a loop thread as running or not.
func SetThreadRunning(thread string, running bool) {
	v := 0.0
	if running {
		v = 1
	}
	threadRunning.WithLabelValues(thread).Set(v)
}

// RecordThreadExit counts a joined thread; outcome is "ok", "setup" or "io".
func RecordThreadExit(thread, outcome string) {
	threadRunning.WithLabelValues(thread).Set(0)
	threadExits.WithLabelValues(thread, outcome).Inc()
}
