package lifecycle

// SchedClass selects the scheduling policy of a loop thread.
type SchedClass int

const (
	// SchedDefault is time-sliced scheduling at the default priority.
	SchedDefault SchedClass = iota
	// SchedRealTimeHighest is fixed-priority FIFO scheduling at the top priority.
	SchedRealTimeHighest
)

func (c SchedClass) String() string {
	switch c {
	case SchedDefault:
		return "default"
	case SchedRealTimeHighest:
		return "realtime-highest"
	}
	return "unknown"
}
