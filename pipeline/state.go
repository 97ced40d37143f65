package pipeline

// State is a step of a pipeline run.
type State int

const (
	StateIdle State = iota
	StateOpeningSource
	StateMaterializingFrames
	StateOpeningSink
	StateDispatching
	StateCollectingWriting
	StateClosing
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:                "idle",
	StateOpeningSource:       "opening-source",
	StateMaterializingFrames: "materializing-frames",
	StateOpeningSink:         "opening-sink",
	StateDispatching:         "dispatching",
	StateCollectingWriting:   "collecting-writing",
	StateClosing:             "closing",
	StateDone:                "done",
	StateFailed:              "failed",
}

// String returns the state name used in logs and errors.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether the run has finished, successfully or not.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
