package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a Config that cannot be run.
	ErrInvalidConfig = errors.New("invalid pipeline configuration")

	// ErrFilter indicates a frame failed in a worker task.
	ErrFilter = errors.New("frame filter failed")

	// ErrWrite indicates the sink rejected a frame or failed to finalize.
	ErrWrite = errors.New("frame output failed")

	// ErrBusy indicates Run was called while another run was in progress.
	ErrBusy = errors.New("driver is already running")
)

// RunError reports a failed run with the phase it failed in.
type RunError struct {
	Phase State  // state the driver was in when the failure occurred
	Input string // input path of the run
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("pipeline %s failed for %s: %v", e.Phase, e.Input, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// FailedPhase returns the phase recorded in err, if err is or wraps a
// RunError.
func FailedPhase(err error) (State, bool) {
	var re *RunError
	if errors.As(err, &re) {
		return re.Phase, true
	}
	return StateIdle, false
}
