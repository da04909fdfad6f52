package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordFrame(t *testing.T) {
	frames := testutil.ToFloat64(videoFrames)
	bytes := testutil.ToFloat64(videoBytes)

	RecordFrame(614400, 1)
	RecordFrame(614400, 0)

	if got := testutil.ToFloat64(videoFrames) - frames; got != 2 {
		t.Errorf("frames delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(videoBytes) - bytes; got != 1228800 {
		t.Errorf("bytes delta = %v, want 1228800", got)
	}
	if got := testutil.ToFloat64(videoDisplayed); got != 0 {
		t.Errorf("displayed index = %v, want 0", got)
	}
}

func TestRecordVideoIOFailure(t *testing.T) {
	before := testutil.ToFloat64(videoIOFailures.WithLabelValues("dequeue"))
	RecordVideoIOFailure("dequeue")
	if got := testutil.ToFloat64(videoIOFailures.WithLabelValues("dequeue")) - before; got != 1 {
		t.Errorf("dequeue failures delta = %v, want 1", got)
	}
}

func TestAudioCounters(t *testing.T) {
	periods := testutil.ToFloat64(audioPeriods)
	xruns := testutil.ToFloat64(audioXruns.WithLabelValues("playback"))

	RecordAudioPeriod()
	RecordXrun("playback")

	if got := testutil.ToFloat64(audioPeriods) - periods; got != 1 {
		t.Errorf("periods delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(audioXruns.WithLabelValues("playback")) - xruns; got != 1 {
		t.Errorf("playback xruns delta = %v, want 1", got)
	}
}

func TestThreadMetrics(t *testing.T) {
	SetThreadRunning("audio", true)
	if got := testutil.ToFloat64(threadRunning.WithLabelValues("audio")); got != 1 {
		t.Errorf("running = %v, want 1", got)
	}

	before := testutil.ToFloat64(threadExits.WithLabelValues("audio", "ok"))
	RecordThreadExit("audio", "ok")
	if got := testutil.ToFloat64(threadRunning.WithLabelValues("audio")); got != 0 {
		t.Errorf("running after exit = %v, want 0", got)
	}
	if got := testutil.ToFloat64(threadExits.WithLabelValues("audio", "ok")) - before; got != 1 {
		t.Errorf("exits delta = %v, want 1", got)
	}
}
