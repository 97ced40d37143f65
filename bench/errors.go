package bench

import "errors"

var (
	// ErrInvalidConfig indicates a harness configuration that cannot run.
	ErrInvalidConfig = errors.New("invalid benchmark configuration")

	// ErrAborted indicates a fatal run failure ended the benchmark early.
	ErrAborted = errors.New("benchmark aborted")

	// ErrInterrupted indicates the context was cancelled between runs.
	ErrInterrupted = errors.New("benchmark interrupted")

	// ErrNoMeasurements indicates there is nothing to plot or summarize.
	ErrNoMeasurements = errors.New("no successful measurements")
)
