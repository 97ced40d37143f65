package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/framebench/frame"
	"github.com/opd-ai/framebench/limits"
	"github.com/opd-ai/framebench/media"
	"github.com/opd-ai/framebench/pool"
)

// maxPrealloc caps the frame slice capacity taken from container metadata,
// which can be wildly wrong.
const maxPrealloc = 1 << 14

// Config describes one pipeline run.
type Config struct {
	InputPath    string
	OutputPath   string
	Workers      int    // worker pool size, >= 1
	Codec        string // sink four-character code; defaults to media.CodecMJPG
	MemoryBudget uint64 // ceiling for materialized frames in bytes; 0 = unlimited
	Digest       bool   // compute a running digest of the written frames
}

func (c *Config) validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("%w: input path is empty", ErrInvalidConfig)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path is empty", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: worker count %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// RunResult holds the measurements of a successful run.
type RunResult struct {
	Workers  int
	Frames   int // frames written to the sink
	Metadata media.Metadata
	Elapsed  time.Duration // dispatch through sink close
	Digest   []byte        // running digest of written frames, nil unless Config.Digest

	// DecodeFault is set when the source stopped on a decode error; the
	// frames decoded before it were still processed.
	DecodeFault error
}

// ElapsedSeconds returns Elapsed in seconds.
func (r *RunResult) ElapsedSeconds() float64 {
	return r.Elapsed.Seconds()
}

// Driver executes pipeline runs against a media backend. A Driver may be
// reused for any number of sequential runs but never runs two at once.
type Driver struct {
	backend      media.Backend
	effect       frame.Effect
	timeProvider TimeProvider

	mu       sync.Mutex
	state    State
	running  bool
	onChange func(from, to State)
}

// NewDriver creates a driver that applies effect to every frame.
func NewDriver(backend media.Backend, effect frame.Effect) *Driver {
	return &Driver{
		backend: backend,
		effect:  effect,
		state:   StateIdle,
	}
}

// SetTimeProvider replaces the clock used for elapsed time. Pass nil to
// restore the system clock.
func (d *Driver) SetTimeProvider(tp TimeProvider) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeProvider = tp
}

// OnStateChange registers a callback invoked synchronously on every state
// transition.
func (d *Driver) OnStateChange(fn func(from, to State)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onChange = fn
}

// State returns the current state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) setState(next State) {
	d.mu.Lock()
	prev := d.state
	d.state = next
	fn := d.onChange
	d.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Driver.setState",
		"from":     prev.String(),
		"to":       next.String(),
	}).Debug("Pipeline state change")

	if fn != nil {
		fn(prev, next)
	}
}

func (d *Driver) clock() TimeProvider {
	d.mu.Lock()
	defer d.mu.Unlock()
	return getTimeProvider(d.timeProvider)
}

// Run performs one complete pass: open and fully decode the source, open
// the sink, filter every frame on a fresh worker pool and write the results
// in order. Any failure aborts the run and is returned as a *RunError.
func (d *Driver) Run(ctx context.Context, cfg Config) (*RunResult, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Codec == "" {
		cfg.Codec = media.CodecMJPG
	}

	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil, ErrBusy
	}
	d.running = true
	d.state = StateIdle
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	in, err := d.materialize(ctx, cfg)
	if err != nil {
		return nil, d.fail(cfg, d.State(), err)
	}

	result, phase, err := d.process(ctx, cfg, in.frames, in.meta)
	if err != nil {
		return nil, d.fail(cfg, phase, err)
	}
	result.DecodeFault = in.decodeFault

	d.setState(StateDone)

	logrus.WithFields(logrus.Fields{
		"function":        "Driver.Run",
		"input":           cfg.InputPath,
		"workers":         cfg.Workers,
		"frames":          result.Frames,
		"elapsed_seconds": result.ElapsedSeconds(),
	}).Info("Pipeline run completed")

	return result, nil
}

func (d *Driver) fail(cfg Config, phase State, err error) error {
	d.setState(StateFailed)

	logrus.WithFields(logrus.Fields{
		"function": "Driver.Run",
		"input":    cfg.InputPath,
		"output":   cfg.OutputPath,
		"workers":  cfg.Workers,
		"phase":    phase.String(),
		"error":    err.Error(),
	}).Error("Pipeline run failed")

	return &RunError{Phase: phase, Input: cfg.InputPath, Err: err}
}

// materialized is the fully decoded input of a run.
type materialized struct {
	frames      []*frame.Buffer
	meta        media.Metadata
	decodeFault error
}

// materialize opens the source, decodes every frame into memory and closes
// the source again. A decode fault ends the sequence early; it is recorded
// in the result and does not fail the run.
func (d *Driver) materialize(ctx context.Context, cfg Config) (*materialized, error) {
	d.setState(StateOpeningSource)

	src, err := d.backend.OpenSource(ctx, cfg.InputPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Driver.materialize",
				"input":    cfg.InputPath,
				"error":    cerr.Error(),
			}).Warn("Closing frame source failed")
		}
	}()

	meta := src.Metadata()
	if err := limits.ValidateDimensions(meta.Width, meta.Height); err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.InputPath, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":       "Driver.materialize",
		"input":          cfg.InputPath,
		"metadata":       meta.String(),
		"estimate_bytes": limits.EstimateMaterialization(meta.Width, meta.Height, meta.FrameCount),
		"budget_bytes":   cfg.MemoryBudget,
	}).Debug("Materializing frames")

	d.setState(StateMaterializingFrames)

	budget := limits.NewBudget(cfg.MemoryBudget)
	frames := make([]*frame.Buffer, 0, capHint(meta.FrameCount))
	var decodeFault error

	for {
		f, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			decodeFault = err
			logrus.WithFields(logrus.Fields{
				"function": "Driver.materialize",
				"input":    cfg.InputPath,
				"decoded":  len(frames),
				"error":    err.Error(),
			}).Warn("Decode fault, using frames decoded so far")
			break
		}
		if f == nil || len(f.Data) == 0 {
			continue
		}
		if err := budget.Reserve(len(f.Data)); err != nil {
			return nil, fmt.Errorf("%s after %d frames: %w", cfg.InputPath, len(frames), err)
		}
		frames = append(frames, f)
	}

	return &materialized{frames: frames, meta: meta, decodeFault: decodeFault}, nil
}

// process is the timed part of a run. It returns the phase a failure
// occurred in alongside the error.
func (d *Driver) process(ctx context.Context, cfg Config, frames []*frame.Buffer, meta media.Metadata) (*RunResult, State, error) {
	d.setState(StateOpeningSink)

	sink, err := d.backend.OpenSink(ctx, cfg.OutputPath, media.SinkConfig{
		Codec:  cfg.Codec,
		FPS:    meta.FPS,
		Width:  meta.Width,
		Height: meta.Height,
	})
	if err != nil {
		return nil, StateOpeningSink, err
	}

	clock := d.clock()
	start := clock.Now()

	d.setState(StateDispatching)

	exec, err := pool.New[*frame.Buffer](cfg.Workers)
	if err != nil {
		sink.Close()
		return nil, StateDispatching, err
	}

	// The pool is joined and the sink closed on every path out of here.
	released := false
	release := func() error {
		if released {
			return nil
		}
		released = true
		exec.Close()
		return sink.Close()
	}
	defer release()

	written, digest, phase, err := d.dispatchAndWrite(cfg, exec, sink, frames)
	if err != nil {
		if cerr := release(); cerr != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Driver.process",
				"output":   cfg.OutputPath,
				"error":    cerr.Error(),
			}).Warn("Closing frame sink after failure also failed")
		}
		return nil, phase, err
	}

	d.setState(StateClosing)
	if err := release(); err != nil {
		return nil, StateClosing, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	elapsed := clock.Since(start)

	return &RunResult{
		Workers:  cfg.Workers,
		Frames:   written,
		Metadata: meta,
		Elapsed:  elapsed,
		Digest:   digest,
	}, StateDone, nil
}

// dispatchAndWrite submits every frame to the pool, then waits for each
// result in index order and writes it before asking for the next one.
func (d *Driver) dispatchAndWrite(cfg Config, exec *pool.Executor[*frame.Buffer], sink media.Sink, frames []*frame.Buffer) (int, []byte, State, error) {
	effect := d.effect
	tasks := make([]pool.Task[*frame.Buffer], len(frames))
	for i, f := range frames {
		tasks[i] = func() (*frame.Buffer, error) {
			return effect.Apply(f)
		}
	}

	batch, err := exec.Submit(tasks)
	if err != nil {
		return 0, nil, StateDispatching, err
	}

	d.setState(StateCollectingWriting)

	var digest *frame.DigestWriter
	if cfg.Digest {
		digest = frame.NewDigestWriter()
	}

	written := 0
	for i := 0; i < batch.Len(); i++ {
		out, err := batch.Wait(i)
		frames[i] = nil
		if err != nil {
			return written, nil, StateCollectingWriting, fmt.Errorf("%w: frame %d: %w", ErrFilter, i, err)
		}
		if err := sink.Write(out); err != nil {
			return written, nil, StateCollectingWriting, fmt.Errorf("%w: frame %d: %w", ErrWrite, i, err)
		}
		if digest != nil {
			digest.Add(out)
		}
		written++
	}

	if digest == nil {
		return written, nil, StateCollectingWriting, nil
	}
	return written, digest.Sum(), StateCollectingWriting, nil
}

func capHint(count int64) int {
	if count <= 0 {
		return 0
	}
	if count > maxPrealloc {
		return maxPrealloc
	}
	return int(count)
}
