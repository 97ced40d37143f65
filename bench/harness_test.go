package bench

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/framebench/frame"
	"github.com/opd-ai/framebench/limits"
	"github.com/opd-ai/framebench/media"
	"github.com/opd-ai/framebench/pipeline"
)

var testHost = &HostInfo{CPUModel: "test", LogicalCPUs: 4}

// fakeRunner returns scripted results keyed by call number (0-based).
type fakeRunner struct {
	mu      sync.Mutex
	calls   []pipeline.Config
	fail    map[int]error
	digests map[int][]byte
	onCall  func(n int)
}

func (f *fakeRunner) Run(_ context.Context, cfg pipeline.Config) (*pipeline.RunResult, error) {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, cfg)
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(n)
	}
	if err := f.fail[n]; err != nil {
		return nil, err
	}
	digest := []byte{1, 2, 3}
	if d, ok := f.digests[n]; ok {
		digest = d
	}
	return &pipeline.RunResult{
		Workers:  cfg.Workers,
		Frames:   10,
		Metadata: media.Metadata{FPS: 25, Width: 8, Height: 8, FrameCount: 10},
		Elapsed:  time.Duration(100/cfg.Workers) * time.Millisecond,
		Digest:   digest,
	}, nil
}

func testHarnessConfig(out *bytes.Buffer) Config {
	return Config{
		InputPath:  "clip.mp4",
		OutputPath: "clip_output.avi",
		Output:     out,
		Host:       testHost,
		Verify:     true,
	}
}

func TestNewHarness_Defaults(t *testing.T) {
	h, err := NewHarness(&fakeRunner{}, Config{InputPath: "a.mp4", OutputPath: "a_output.avi"})
	require.NoError(t, err)

	cfg := h.Config()
	assert.Equal(t, []int{2, 4, 6, 8, 10}, cfg.PoolSizes)
	assert.Equal(t, DefaultRepetitions, cfg.Repetitions)
}

func TestNewHarness_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		runner Runner
		cfg    Config
	}{
		{"nil runner", nil, Config{InputPath: "a", OutputPath: "b"}},
		{"no input", &fakeRunner{}, Config{OutputPath: "b"}},
		{"no output", &fakeRunner{}, Config{InputPath: "a"}},
		{"zero pool size", &fakeRunner{}, Config{InputPath: "a", OutputPath: "b", PoolSizes: []int{2, 0}}},
		{"negative repetitions", &fakeRunner{}, Config{InputPath: "a", OutputPath: "b", Repetitions: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHarness(tt.runner, tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestHarness_RunsFullMatrix(t *testing.T) {
	var out bytes.Buffer
	runner := &fakeRunner{}
	h, err := NewHarness(runner, testHarnessConfig(&out))
	require.NoError(t, err)

	report, err := h.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, runner.calls, 25)
	for i, call := range runner.calls {
		assert.Equal(t, DefaultPoolSizes[i/5], call.Workers, "call %d", i)
		assert.Equal(t, "clip.mp4", call.InputPath)
		assert.Equal(t, "clip_output.avi", call.OutputPath)
		assert.True(t, call.Digest)
	}

	require.Len(t, report.Measurements, 25)
	assert.Equal(t, 2, report.Measurements[0].PoolSize)
	assert.Equal(t, 1, report.Measurements[0].Repetition)
	assert.Equal(t, 10, report.Measurements[24].PoolSize)
	assert.Equal(t, 5, report.Measurements[24].Repetition)
	assert.Zero(t, report.Failures())
	assert.Empty(t, report.Mismatches)
	assert.False(t, report.Interrupted)
	assert.NotEmpty(t, report.SessionID)
	assert.Equal(t, "test", report.Host.CPUModel)

	text := out.String()
	assert.Contains(t, text, "=== Testing with 6 workers ===")
	assert.Contains(t, text, "--- Run 5 ---")
	assert.Contains(t, text, "Processing video: 10 frames, 25.00 FPS")
	assert.Contains(t, text, "Completed with 2 workers in 0.05 seconds.")
	assert.Equal(t, 25, strings.Count(text, "Completed with"))
	assert.True(t, strings.HasSuffix(text, "All tests completed.\n"))
}

func TestHarness_NonFatalFailureContinues(t *testing.T) {
	var out bytes.Buffer
	sinkErr := &pipeline.RunError{
		Phase: pipeline.StateOpeningSink,
		Input: "clip.mp4",
		Err:   fmt.Errorf("%w: permission denied", media.ErrSinkOpen),
	}
	runner := &fakeRunner{fail: map[int]error{1: sinkErr}}

	cfg := testHarnessConfig(&out)
	cfg.PoolSizes = []int{2, 4}
	cfg.Repetitions = 2
	h, err := NewHarness(runner, cfg)
	require.NoError(t, err)

	report, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, runner.calls, 4)
	assert.Equal(t, 1, report.Failures())
	assert.ErrorIs(t, report.Measurements[1].Err, media.ErrSinkOpen)
	assert.Contains(t, out.String(), "Run failed with 2 workers")
	assert.Contains(t, out.String(), "All tests completed.")
}

func TestHarness_SourceFailureAborts(t *testing.T) {
	tests := []struct {
		name  string
		phase pipeline.State
		cause error
	}{
		{"open", pipeline.StateOpeningSource, media.ErrSourceOpen},
		{"budget", pipeline.StateMaterializingFrames, limits.ErrFrameBudgetExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			runErr := &pipeline.RunError{Phase: tt.phase, Input: "clip.mp4", Err: tt.cause}
			runner := &fakeRunner{fail: map[int]error{0: runErr}}

			h, err := NewHarness(runner, testHarnessConfig(&out))
			require.NoError(t, err)

			report, err := h.Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAborted)
			assert.ErrorIs(t, err, tt.cause)
			require.NotNil(t, report)
			assert.Len(t, runner.calls, 1)
			assert.Equal(t, 1, report.Failures())
			assert.NotContains(t, out.String(), "All tests completed.")
		})
	}
}

func TestHarness_InterruptBetweenRuns(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &fakeRunner{onCall: func(n int) {
		if n == 2 {
			cancel()
		}
	}}
	h, err := NewHarness(runner, testHarnessConfig(&out))
	require.NoError(t, err)

	report, err := h.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, report.Interrupted)
	assert.Len(t, runner.calls, 3, "the in-flight run completes")
	assert.Len(t, report.Measurements, 3)
}

func TestHarness_DigestMismatch(t *testing.T) {
	var out bytes.Buffer
	runner := &fakeRunner{digests: map[int][]byte{3: {9, 9, 9}}}

	cfg := testHarnessConfig(&out)
	cfg.PoolSizes = []int{2, 4}
	cfg.Repetitions = 2
	h, err := NewHarness(runner, cfg)
	require.NoError(t, err)

	report, err := h.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, 4, report.Mismatches[0].PoolSize)
	assert.Equal(t, 2, report.Mismatches[0].Repetition)
	assert.Contains(t, out.String(), "Output differs from the first run (workers 4, run 2)")
}

func TestHarness_VerifyDisabled(t *testing.T) {
	var out bytes.Buffer
	runner := &fakeRunner{digests: map[int][]byte{1: {9}}}

	cfg := testHarnessConfig(&out)
	cfg.Verify = false
	cfg.PoolSizes = []int{2}
	cfg.Repetitions = 2
	h, err := NewHarness(runner, cfg)
	require.NoError(t, err)

	report, err := h.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Mismatches)
	assert.False(t, runner.calls[0].Digest)
}

func TestHarness_WithDriver(t *testing.T) {
	frames, err := frame.Synthetic(10, 10, 2)
	require.NoError(t, err)
	backend := media.NewMemoryBackend(media.Metadata{FPS: 30, Width: 10, Height: 10}, frames)
	backend.Discard = true
	driver := pipeline.NewDriver(backend, frame.NewEdgeHighlightEffect())

	var out bytes.Buffer
	cfg := testHarnessConfig(&out)
	cfg.Repetitions = 2
	h, err := NewHarness(driver, cfg)
	require.NoError(t, err)

	report, err := h.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Measurements, 10)
	for _, m := range report.Measurements {
		assert.True(t, m.OK())
		assert.Equal(t, 2, m.Frames)
	}
	assert.Empty(t, report.Mismatches)

	sinks := backend.Sinks()
	require.Len(t, sinks, 10)
	for _, s := range sinks {
		assert.Equal(t, "clip_output.avi", s.Path)
		assert.Equal(t, 2, s.Count())
		assert.True(t, s.Closed())
	}
}

func TestHarness_WithDriverSourceFailure(t *testing.T) {
	backend := media.NewMemoryBackend(media.Metadata{FPS: 30, Width: 10, Height: 10}, nil)
	backend.SourceErr = errors.New("no such file or directory")
	driver := pipeline.NewDriver(backend, frame.NewEdgeHighlightEffect())

	var out bytes.Buffer
	h, err := NewHarness(driver, testHarnessConfig(&out))
	require.NoError(t, err)

	report, err := h.Run(context.Background())
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, media.ErrSourceOpen)
	assert.Len(t, report.Measurements, 1)
	assert.Empty(t, backend.Sinks())
}
