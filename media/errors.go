package media

import "errors"

// Initialization errors.
var (
	// ErrToolchainUnavailable indicates ffmpeg or ffprobe could not be found
	// or executed.
	ErrToolchainUnavailable = errors.New("imaging toolchain unavailable")
)

// Open errors.
var (
	// ErrSourceOpen indicates the input could not be opened or probed.
	ErrSourceOpen = errors.New("cannot open frame source")

	// ErrSinkOpen indicates the output container could not be created.
	ErrSinkOpen = errors.New("cannot open frame sink")

	// ErrNoVideoStream indicates the input has no decodable video stream.
	ErrNoVideoStream = errors.New("no video stream")

	// ErrUnsupportedCodec indicates a codec tag the sink cannot encode.
	ErrUnsupportedCodec = errors.New("unsupported codec tag")
)

// Stream errors.
var (
	// ErrDecode indicates a frame failed to decode mid-stream.
	ErrDecode = errors.New("frame decode failed")

	// ErrWrite indicates the sink rejected a frame.
	ErrWrite = errors.New("frame write failed")

	// ErrFinalize indicates the sink failed to flush or finalize its container.
	ErrFinalize = errors.New("container finalize failed")

	// ErrClosed indicates use of a source or sink after Close.
	ErrClosed = errors.New("already closed")
)
