package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/framebench/pipeline"
)

const (
	// DefaultRepetitions is the number of runs per pool size.
	DefaultRepetitions = 5
)

// DefaultPoolSizes are the worker counts benchmarked when none are given.
var DefaultPoolSizes = []int{2, 4, 6, 8, 10}

// Runner performs a single pipeline run. *pipeline.Driver implements it.
type Runner interface {
	Run(ctx context.Context, cfg pipeline.Config) (*pipeline.RunResult, error)
}

// Config controls a benchmark.
type Config struct {
	InputPath    string
	OutputPath   string
	PoolSizes    []int
	Repetitions  int
	Codec        string
	MemoryBudget uint64

	// Verify compares the output digest of every run with the first one.
	Verify bool

	// Output receives the human-readable report. Defaults to os.Stdout.
	Output io.Writer

	// Host, when set, is recorded in the report instead of probing the
	// machine with CollectHostInfo.
	Host *HostInfo
}

// Measurement is the outcome of one run.
type Measurement struct {
	PoolSize   int
	Repetition int // 1-based
	Frames     int
	FPS        float64 // source frame rate
	Elapsed    time.Duration
	Digest     []byte
	Err        error
}

// ElapsedSeconds returns Elapsed in seconds.
func (m Measurement) ElapsedSeconds() float64 {
	return m.Elapsed.Seconds()
}

// OK reports whether the run succeeded.
func (m Measurement) OK() bool {
	return m.Err == nil
}

// Report collects every measurement of a benchmark session.
type Report struct {
	SessionID    string
	InputPath    string
	OutputPath   string
	Host         HostInfo
	Started      time.Time
	Finished     time.Time
	Measurements []Measurement

	// Mismatches lists successful runs whose output digest differed from
	// the first successful run.
	Mismatches []Measurement

	Interrupted bool
}

// Failures returns the number of failed runs.
func (r *Report) Failures() int {
	n := 0
	for _, m := range r.Measurements {
		if !m.OK() {
			n++
		}
	}
	return n
}

// Summaries aggregates the measurements per pool size.
func (r *Report) Summaries() []Summary {
	return Summarize(r.Measurements)
}

// Harness drives a Runner through the pool size and repetition matrix.
type Harness struct {
	runner Runner
	config Config
	out    io.Writer
}

// NewHarness validates cfg, fills in defaults and returns a harness.
func NewHarness(runner Runner, cfg Config) (*Harness, error) {
	if runner == nil {
		return nil, fmt.Errorf("%w: nil runner", ErrInvalidConfig)
	}
	if cfg.InputPath == "" {
		return nil, fmt.Errorf("%w: input path is empty", ErrInvalidConfig)
	}
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("%w: output path is empty", ErrInvalidConfig)
	}
	if len(cfg.PoolSizes) == 0 {
		cfg.PoolSizes = append([]int(nil), DefaultPoolSizes...)
	}
	for _, size := range cfg.PoolSizes {
		if size < 1 {
			return nil, fmt.Errorf("%w: pool size %d", ErrInvalidConfig, size)
		}
	}
	if cfg.Repetitions == 0 {
		cfg.Repetitions = DefaultRepetitions
	}
	if cfg.Repetitions < 0 {
		return nil, fmt.Errorf("%w: repetitions %d", ErrInvalidConfig, cfg.Repetitions)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	return &Harness{runner: runner, config: cfg, out: out}, nil
}

// Config returns the effective configuration.
func (h *Harness) Config() Config {
	return h.config
}

// Run executes every configured run in order. The returned report is never
// nil and holds whatever was measured, even when an error ends the
// benchmark early.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		SessionID:  uuid.NewString(),
		InputPath:  h.config.InputPath,
		OutputPath: h.config.OutputPath,
		Started:    time.Now(),
	}
	if h.config.Host != nil {
		report.Host = *h.config.Host
	} else {
		report.Host = CollectHostInfo(ctx)
	}

	log := logrus.WithFields(logrus.Fields{
		"function": "Harness.Run",
		"session":  report.SessionID,
		"input":    h.config.InputPath,
	})
	log.WithFields(logrus.Fields{
		"pool_sizes":  h.config.PoolSizes,
		"repetitions": h.config.Repetitions,
		"host":        report.Host.String(),
	}).Info("Starting benchmark")

	err := h.runMatrix(ctx, report)
	report.Finished = time.Now()

	if err != nil {
		log.WithField("error", err.Error()).Error("Benchmark stopped early")
		return report, err
	}

	fmt.Fprintln(h.out, "\nAll tests completed.")
	log.WithFields(logrus.Fields{
		"runs":       len(report.Measurements),
		"failures":   report.Failures(),
		"mismatches": len(report.Mismatches),
	}).Info("Benchmark completed")

	return report, nil
}

func (h *Harness) runMatrix(ctx context.Context, report *Report) error {
	var reference []byte

	for _, size := range h.config.PoolSizes {
		fmt.Fprintf(h.out, "\n=== Testing with %d workers ===\n", size)

		for rep := 1; rep <= h.config.Repetitions; rep++ {
			if err := ctx.Err(); err != nil {
				report.Interrupted = true
				return fmt.Errorf("%w before pool size %d run %d: %w", ErrInterrupted, size, rep, err)
			}

			fmt.Fprintf(h.out, "--- Run %d ---\n", rep)
			m := h.runOnce(ctx, size, rep)
			report.Measurements = append(report.Measurements, m)

			if !m.OK() {
				fmt.Fprintf(h.out, "Run failed with %d workers: %v\n", size, m.Err)
				if isFatal(m.Err) {
					return fmt.Errorf("%w: %w", ErrAborted, m.Err)
				}
				continue
			}

			fmt.Fprintf(h.out, "Processing video: %d frames, %.2f FPS\n", m.Frames, m.FPS)
			fmt.Fprintf(h.out, "Completed with %d workers in %.2f seconds.\n", size, m.ElapsedSeconds())

			if !h.config.Verify || m.Digest == nil {
				continue
			}
			if reference == nil {
				reference = m.Digest
				continue
			}
			if !bytes.Equal(reference, m.Digest) {
				report.Mismatches = append(report.Mismatches, m)
				fmt.Fprintf(h.out, "Output differs from the first run (workers %d, run %d)\n", size, rep)
				logrus.WithFields(logrus.Fields{
					"function":   "Harness.runMatrix",
					"session":    report.SessionID,
					"pool_size":  size,
					"repetition": rep,
					"expected":   fmt.Sprintf("%x", reference),
					"actual":     fmt.Sprintf("%x", m.Digest),
				}).Warn("Output digest mismatch")
			}
		}
	}
	return nil
}

func (h *Harness) runOnce(ctx context.Context, size, rep int) Measurement {
	m := Measurement{PoolSize: size, Repetition: rep}

	result, err := h.runner.Run(ctx, pipeline.Config{
		InputPath:    h.config.InputPath,
		OutputPath:   h.config.OutputPath,
		Workers:      size,
		Codec:        h.config.Codec,
		MemoryBudget: h.config.MemoryBudget,
		Digest:       h.config.Verify,
	})
	if err != nil {
		m.Err = err
		return m
	}

	m.Frames = result.Frames
	m.FPS = result.Metadata.FPS
	m.Elapsed = result.Elapsed
	m.Digest = result.Digest

	logrus.WithFields(logrus.Fields{
		"function":        "Harness.runOnce",
		"pool_size":       size,
		"repetition":      rep,
		"frames":          m.Frames,
		"elapsed_seconds": m.ElapsedSeconds(),
	}).Debug("Run measured")

	return m
}

// isFatal reports whether a run failure makes every following run pointless:
// the shared input could not be read or the configuration is unusable.
func isFatal(err error) bool {
	if errors.Is(err, pipeline.ErrInvalidConfig) {
		return true
	}
	phase, ok := pipeline.FailedPhase(err)
	if !ok {
		return true
	}
	return phase == pipeline.StateOpeningSource || phase == pipeline.StateMaterializingFrames
}
