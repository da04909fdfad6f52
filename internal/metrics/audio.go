package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	audioPeriods = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audio",
		Name:      "periods_total",
		Help:      "Periods passed from capture to playback",
	})

	audioXruns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audio",
		Name:      "xruns_total",
		Help:      "Overruns (capture) and underruns (playback) recovered by re-preparing",
	}, []string{"direction"})
)

// RecordAudioPeriod counts one period moved through the audio loop.
func RecordAudioPeriod() {
	audioPeriods.Inc()
}

// RecordXrun counts an xrun on direction ("capture" or "playback").
func RecordXrun(direction string) {
	audioXruns.WithLabelValues(direction).Inc()
}
