package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/opd-ai/framebench/frame"
)

// CodecMJPG is the four-character code for motion-JPEG.
const CodecMJPG = "MJPG"

// OutputSuffix is appended to the input name (without extension) to form
// the output path.
const OutputSuffix = "_output.avi"

// SupportedExtensions lists the container extensions offered for input
// selection. The list is informational; decoding does not enforce it.
var SupportedExtensions = []string{"mp4", "avi", "mov", "mkv", "wmv", "flv", "mpeg", "mpg"}

// Metadata describes a decoded video stream.
type Metadata struct {
	FPS        float64
	Width      int
	Height     int
	FrameCount int64 // container estimate; the decoded count may differ
}

// String formats the metadata for log output.
func (m Metadata) String() string {
	return fmt.Sprintf("%dx%d @ %.2f fps, %d frames", m.Width, m.Height, m.FPS, m.FrameCount)
}

// Source produces decoded frames in temporal order.
type Source interface {
	// Metadata returns the stream properties read at open time.
	Metadata() Metadata
	// Next returns the next frame, or io.EOF once the sequence is exhausted.
	// Errors wrapping ErrDecode report a frame that could not be decoded.
	Next() (*frame.Buffer, error)
	// Close releases the decoder.
	Close() error
}

// Sink persists frames to a container in the order they are written.
type Sink interface {
	// Write appends one frame. The sink never reorders frames.
	Write(b *frame.Buffer) error
	// Close flushes and finalizes the container.
	Close() error
}

// SinkConfig describes the container a sink creates.
type SinkConfig struct {
	Codec  string // four-character code, e.g. CodecMJPG
	FPS    float64
	Width  int
	Height int
}

// Validate checks the configuration before any file is touched.
func (c SinkConfig) Validate() error {
	if len(c.Codec) != 4 {
		return fmt.Errorf("%w: %q is not a four-character code", ErrUnsupportedCodec, c.Codec)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid output dimensions: %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("invalid output frame rate: %v", c.FPS)
	}
	return nil
}

// Backend opens sources and sinks.
type Backend interface {
	OpenSource(ctx context.Context, path string) (Source, error)
	OpenSink(ctx context.Context, path string, cfg SinkConfig) (Sink, error)
}

// OutputPath maps an input path to "<input-without-extension>_output.avi".
func OutputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + OutputSuffix
}

// IsSupportedVideo reports whether path has one of SupportedExtensions,
// ignoring case.
func IsSupportedVideo(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func checkFrameSize(b *frame.Buffer, cfg SinkConfig) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Width != cfg.Width || b.Height != cfg.Height {
		return fmt.Errorf("frame size mismatch: expected %dx%d, got %dx%d",
			cfg.Width, cfg.Height, b.Width, b.Height)
	}
	return nil
}
