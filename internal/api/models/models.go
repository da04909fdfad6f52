package models

import (
	"github.com/smazurov/loopthru/internal/audio"
	"github.com/smazurov/loopthru/internal/devices"
	"github.com/smazurov/loopthru/internal/events"
	"github.com/smazurov/loopthru/internal/loop"
)

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"dev" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"abc1234" doc:"Git commit SHA"`
	BuildDate string `json:"build_date" example:"2024-12-15 14:30" doc:"Build timestamp"`
	Modified  bool   `json:"modified" doc:"Built from a modified working tree"`
	GoVersion string `json:"go_version" example:"go1.24.0" doc:"Go compiler version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Compiler used"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Platform"`
}

type VersionResponse struct {
	Body VersionData
}

// VideoStatus is the video loop as reported by the API.
type VideoStatus struct {
	State         events.LoopState `json:"state" example:"running" doc:"Loop state"`
	Frames        uint64           `json:"frames" example:"1800" doc:"Frames displayed since start"`
	BytesCopied   uint64           `json:"bytes_copied" example:"1105920000" doc:"Bytes copied into display surfaces"`
	Displayed     int              `json:"displayed" example:"0" doc:"Surface currently presented"`
	Working       int              `json:"working" example:"1" doc:"Surface the next frame is written to"`
	FrameSize     int              `json:"frame_size" example:"614400" doc:"Bytes copied per frame"`
	CaptureWidth  int              `json:"capture_width" example:"640" doc:"Negotiated capture width"`
	CaptureHeight int              `json:"capture_height" example:"480" doc:"Negotiated capture height"`
}

// NewVideoStatus converts an engine snapshot.
func NewVideoStatus(st loop.Stats) VideoStatus {
	return VideoStatus{
		State:         st.State,
		Frames:        st.Frames,
		BytesCopied:   st.BytesCopied,
		Displayed:     st.Displayed,
		Working:       st.Working,
		FrameSize:     st.FrameSize,
		CaptureWidth:  st.CaptureWidth,
		CaptureHeight: st.CaptureHeight,
	}
}

// AudioStatus is the audio loop as reported by the API.
type AudioStatus struct {
	State         events.LoopState `json:"state" example:"running" doc:"Loop state"`
	Periods       uint64           `json:"periods" example:"2812" doc:"Periods passed through since start"`
	CaptureXruns  uint64           `json:"capture_xruns" example:"0" doc:"Recovered capture overruns"`
	PlaybackXruns uint64           `json:"playback_xruns" example:"1" doc:"Recovered playback underruns"`
}

// NewAudioStatus converts an audio loop snapshot.
func NewAudioStatus(st audio.Stats) *AudioStatus {
	return &AudioStatus{
		State:         st.State,
		Periods:       st.Periods,
		CaptureXruns:  st.CaptureXruns,
		PlaybackXruns: st.PlaybackXruns,
	}
}

// StatusData is a snapshot of both loops. Audio is omitted when the
// audio loop is disabled.
type StatusData struct {
	Video VideoStatus  `json:"video" doc:"Video loop counters"`
	Audio *AudioStatus `json:"audio,omitempty" doc:"Audio loop counters"`
}

type StatusResponse struct {
	Body StatusData
}

// DevicesResponse lists the devices found on the system.
type DevicesResponse struct {
	Body devices.Inventory
}

// UnitStatusData is the systemd state of the service unit.
type UnitStatusData struct {
	Service  string `json:"service" example:"loopthru.service" doc:"Unit name"`
	Status   string `json:"status" example:"active" doc:"Active state (active, inactive, failed, ...)"`
	SubState string `json:"sub_state" example:"running" doc:"Unit sub-state"`
}

type UnitStatusResponse struct {
	Body UnitStatusData
}
