package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/opd-ai/framebench/frame"
)

// ffmpegSource reads raw bgr24 frames from an ffmpeg decoder's stdout.
type ffmpegSource struct {
	path      string
	meta      Metadata
	frameSize int

	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer

	decoded  int
	finished bool

	waitOnce sync.Once
	waitErr  error
	closed   bool
}

// startDecoder launches ffmpeg for path. The decoder is not tied to ctx:
// once a run has started its frames are read to the end.
func startDecoder(_ context.Context, ffmpeg, path string, meta Metadata) (*ffmpegSource, error) {
	args := []string{
		"-nostdin", "-hide_banner",
		"-v", "error",
		"-noautorotate",
		"-i", path,
		"-map", "0:v:0",
		"-an", "-sn",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"pipe:1",
	}

	s := &ffmpegSource{
		path:      path,
		meta:      meta,
		frameSize: frame.Size(meta.Width, meta.Height),
	}

	s.cmd = exec.Command(ffmpeg, args...)
	s.cmd.Stderr = &s.stderr

	stdout, err := s.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdout pipe: %w", err)
	}
	s.stdout = stdout

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg decoder: %w", err)
	}
	return s, nil
}

func (s *ffmpegSource) Metadata() Metadata {
	return s.meta
}

// Next reads exactly one frame. A short read or a non-zero decoder exit is
// reported as ErrDecode; a clean end of stream as io.EOF.
func (s *ffmpegSource) Next() (*frame.Buffer, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if s.finished {
		return nil, io.EOF
	}

	data := make([]byte, s.frameSize)
	n, err := io.ReadFull(s.stdout, data)
	switch {
	case err == nil:
		s.decoded++
		return frame.FromBytes(s.meta.Width, s.meta.Height, data)
	case errors.Is(err, io.EOF):
		s.finished = true
		if werr := s.wait(); werr != nil {
			return nil, fmt.Errorf("%w: %s after %d frames: %v%s", ErrDecode, s.path, s.decoded, werr, stderrTail(&s.stderr))
		}
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.finished = true
		s.wait()
		return nil, fmt.Errorf("%w: %s: frame %d truncated (%d of %d bytes)%s",
			ErrDecode, s.path, s.decoded, n, s.frameSize, stderrTail(&s.stderr))
	default:
		s.finished = true
		return nil, fmt.Errorf("%w: %s: frame %d: %v", ErrDecode, s.path, s.decoded, err)
	}
}

// Close stops the decoder if it is still running.
func (s *ffmpegSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if !s.finished && s.cmd.Process != nil {
		// Killed on purpose; the resulting exit status is not an error.
		_ = s.cmd.Process.Kill()
		s.wait()
		return nil
	}
	s.wait()
	return nil
}

func (s *ffmpegSource) wait() error {
	s.waitOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
	})
	return s.waitErr
}

// stderrTail returns the last part of an ffmpeg stderr capture, formatted
// for appending to an error message. Only call it after the process exited.
func stderrTail(buf *bytes.Buffer) string {
	msg := strings.TrimSpace(buf.String())
	if msg == "" {
		return ""
	}
	if len(msg) > 512 {
		msg = msg[len(msg)-512:]
	}
	return ": " + msg
}
