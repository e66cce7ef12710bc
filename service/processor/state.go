package processor

// State is the scheduling state of a CPU worker
type State string

const (
	StateNoProcess  State = "noProcess"
	StateRunning    State = "running"
	StatePreempting State = "preempting"
	StateRetiring   State = "retiring"
	StateStalled    State = "stalled"
	StateStopped    State = "stopped"
)
