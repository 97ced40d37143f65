package media

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/opd-ai/framebench/frame"
)

// MemoryBackend serves a fixed set of in-memory frames and records every
// sink it opens. Frames are shared between sources, never copied; effects
// must not mutate them.
type MemoryBackend struct {
	mu     sync.Mutex
	meta   Metadata
	frames []*frame.Buffer
	sinks  []*MemorySink

	// SourceErr, when set, makes OpenSource fail with it wrapped in ErrSourceOpen.
	SourceErr error
	// SinkErr, when set, makes OpenSink fail with it wrapped in ErrSinkOpen.
	SinkErr error
	// Discard makes new sinks count frames without retaining them.
	Discard bool
}

// NewMemoryBackend creates a backend over frames. FrameCount in meta is
// overwritten with len(frames).
func NewMemoryBackend(meta Metadata, frames []*frame.Buffer) *MemoryBackend {
	meta.FrameCount = int64(len(frames))
	return &MemoryBackend{meta: meta, frames: frames}
}

// NewSyntheticBackend creates a backend over frame.Synthetic frames.
func NewSyntheticBackend(width, height, count int, fps float64) (*MemoryBackend, error) {
	frames, err := frame.Synthetic(width, height, count)
	if err != nil {
		return nil, err
	}
	return NewMemoryBackend(Metadata{FPS: fps, Width: width, Height: height}, frames), nil
}

// OpenSource returns a new source positioned at the first frame.
func (b *MemoryBackend) OpenSource(_ context.Context, path string) (Source, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.SourceErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceOpen, path, b.SourceErr)
	}
	return &MemorySource{meta: b.meta, frames: b.frames}, nil
}

// OpenSink returns a new recording sink.
func (b *MemoryBackend) OpenSink(_ context.Context, path string, cfg SinkConfig) (Sink, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.SinkErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrSinkOpen, path, b.SinkErr)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkOpen, err)
	}

	s := &MemorySink{Path: path, Config: cfg, discard: b.Discard}
	b.sinks = append(b.sinks, s)
	return s, nil
}

// Sinks returns every sink opened so far, oldest first.
func (b *MemoryBackend) Sinks() []*MemorySink {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*MemorySink(nil), b.sinks...)
}

// LastSink returns the most recently opened sink, or nil.
func (b *MemoryBackend) LastSink() *MemorySink {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sinks) == 0 {
		return nil
	}
	return b.sinks[len(b.sinks)-1]
}

// MemorySource yields frames from a slice.
type MemorySource struct {
	meta   Metadata
	frames []*frame.Buffer
	pos    int
	closed bool
}

func (s *MemorySource) Metadata() Metadata {
	return s.meta
}

func (s *MemorySource) Next() (*frame.Buffer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.pos >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.pos]
	s.pos++
	return f, nil
}

func (s *MemorySource) Close() error {
	s.closed = true
	return nil
}

// MemorySink records written frames.
type MemorySink struct {
	Path   string
	Config SinkConfig

	mu      sync.Mutex
	frames  []*frame.Buffer
	written int
	discard bool
	closed  bool
}

func (s *MemorySink) Write(b *frame.Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("%w: %v", ErrWrite, ErrClosed)
	}
	if err := checkFrameSize(b, s.Config); err != nil {
		return fmt.Errorf("%w: %s frame %d: %v", ErrWrite, s.Path, s.written, err)
	}
	s.written++
	if !s.discard {
		s.frames = append(s.frames, b)
	}
	return nil
}

func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frames returns the frames written so far, in write order.
func (s *MemorySink) Frames() []*frame.Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*frame.Buffer(nil), s.frames...)
}

// Count returns the number of frames accepted, retained or not.
func (s *MemorySink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

// Closed reports whether Close has been called.
func (s *MemorySink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
