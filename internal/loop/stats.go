package loop

import (
	"sync/atomic"

	"github.com/smazurov/loopthru/internal/events"
)

// Stats is a point-in-time view of the video loop.
type Stats struct {
	State         events.LoopState `json:"state"`
	Frames        uint64           `json:"frames"`
	BytesCopied   uint64           `json:"bytes_copied"`
	Displayed     int              `json:"displayed"`
	Working       int              `json:"working"`
	FrameSize     int              `json:"frame_size"`
	CaptureWidth  int              `json:"capture_width"`
	CaptureHeight int              `json:"capture_height"`
}

// counters is written by the loop goroutine and read by Stats.
type counters struct {
	state     atomic.Value
	frames    atomic.Uint64
	bytes     atomic.Uint64
	displayed atomic.Int64
	working   atomic.Int64
	frameSize atomic.Int64
	width     atomic.Int64
	height    atomic.Int64
}

func (c *counters) setState(s events.LoopState) { c.state.Store(s) }

func (c *counters) setGeometry(width, height, frameSize int) {
	c.width.Store(int64(width))
	c.height.Store(int64(height))
	c.frameSize.Store(int64(frameSize))
}

func (c *counters) setIndices(idx Indices) {
	c.displayed.Store(int64(idx.Displayed))
	c.working.Store(int64(idx.Working))
}

// recordFrame stores the indices after a cycle and returns the frame count.
func (c *counters) recordFrame(frameSize int, idx Indices) uint64 {
	c.setIndices(idx)
	c.bytes.Add(uint64(frameSize))
	return c.frames.Add(1)
}

func (c *counters) snapshot() Stats {
	state, _ := c.state.Load().(events.LoopState)
	return Stats{
		State:         state,
		Frames:        c.frames.Load(),
		BytesCopied:   c.bytes.Load(),
		Displayed:     int(c.displayed.Load()),
		Working:       int(c.working.Load()),
		FrameSize:     int(c.frameSize.Load()),
		CaptureWidth:  int(c.width.Load()),
		CaptureHeight: int(c.height.Load()),
	}
}
