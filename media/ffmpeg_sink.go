package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"

	"github.com/opd-ai/framebench/frame"
)

// encoder maps a four-character code to ffmpeg encoder arguments.
type encoder struct {
	name string
	args []string
}

// encoders lists the codec tags the ffmpeg sink can write into AVI.
var encoders = map[string]encoder{
	CodecMJPG: {name: "mjpeg", args: []string{"-c:v", "mjpeg", "-pix_fmt", "yuvj420p", "-q:v", "3", "-vtag", "MJPG"}},
	"XVID":    {name: "mpeg4", args: []string{"-c:v", "mpeg4", "-q:v", "3", "-vtag", "XVID"}},
	"FFV1":    {name: "ffv1", args: []string{"-c:v", "ffv1", "-vtag", "FFV1"}},
}

// ffmpegSink feeds raw bgr24 frames into an ffmpeg encoder's stdin.
type ffmpegSink struct {
	path   string
	cfg    SinkConfig
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer

	written int
	closed  bool
}

// startEncoder launches ffmpeg writing an AVI container to path.
func startEncoder(_ context.Context, ffmpeg, path string, cfg SinkConfig, enc encoder) (*ffmpegSink, error) {
	args := []string{
		"-y", "-hide_banner",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "bgr24",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", strconv.FormatFloat(cfg.FPS, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
	}
	args = append(args, enc.args...)
	args = append(args, "-f", "avi", path)

	s := &ffmpegSink{path: path, cfg: cfg}
	s.cmd = exec.Command(ffmpeg, args...)
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg encoder: %w", err)
	}
	return s, nil
}

// Write sends one frame to the encoder.
func (s *ffmpegSink) Write(b *frame.Buffer) error {
	if s.closed {
		return fmt.Errorf("%w: %v", ErrWrite, ErrClosed)
	}
	if err := checkFrameSize(b, s.cfg); err != nil {
		return fmt.Errorf("%w: %s frame %d: %v", ErrWrite, s.path, s.written, err)
	}
	if _, err := s.stdin.Write(b.Data); err != nil {
		return fmt.Errorf("%w: %s frame %d: %v", ErrWrite, s.path, s.written, err)
	}
	s.written++
	return nil
}

// Close ends the input stream and waits for ffmpeg to finalize the file.
func (s *ffmpegSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	closeErr := s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("%w: %s after %d frames: %v%s", ErrFinalize, s.path, s.written, err, stderrTail(&s.stderr))
	}
	if closeErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrFinalize, s.path, closeErr)
	}
	return nil
}
