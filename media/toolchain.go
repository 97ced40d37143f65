package media

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// Toolchain is the ffmpeg-backed Backend. It is created once per process
// by Init and shared by every run.
type Toolchain struct {
	FFmpegPath  string
	FFprobePath string
	Version     string // first line of `ffmpeg -version`
}

// Init locates ffmpeg and ffprobe and verifies that ffmpeg executes.
func Init(ctx context.Context) (*Toolchain, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not found on PATH: %v", ErrToolchainUnavailable, err)
	}
	ffprobe, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe not found on PATH: %v", ErrToolchainUnavailable, err)
	}

	out, err := exec.CommandContext(ctx, ffmpeg, "-hide_banner", "-version").Output()
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg -version failed: %v", ErrToolchainUnavailable, err)
	}
	version := strings.TrimSpace(string(out))
	if idx := strings.Index(version, "\n"); idx > 0 {
		version = version[:idx]
	}

	logrus.WithFields(logrus.Fields{
		"function": "media.Init",
		"ffmpeg":   ffmpeg,
		"ffprobe":  ffprobe,
		"version":  version,
	}).Info("Imaging toolchain initialized")

	return &Toolchain{
		FFmpegPath:  ffmpeg,
		FFprobePath: ffprobe,
		Version:     version,
	}, nil
}

// OpenSource probes path and starts an ffmpeg decoder streaming bgr24
// frames. All failures wrap ErrSourceOpen.
func (t *Toolchain) OpenSource(ctx context.Context, path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceOpen, err)
	}

	meta, err := probeVideo(ctx, t.FFprobePath, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceOpen, err)
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return nil, fmt.Errorf("%w: %s: invalid stream dimensions %dx%d", ErrSourceOpen, path, meta.Width, meta.Height)
	}

	src, err := startDecoder(ctx, t.FFmpegPath, path, meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceOpen, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Toolchain.OpenSource",
		"path":     path,
		"metadata": meta.String(),
	}).Debug("Frame source opened")

	return src, nil
}

// OpenSink creates path and starts an ffmpeg encoder reading bgr24 frames.
// All failures wrap ErrSinkOpen.
func (t *Toolchain) OpenSink(ctx context.Context, path string, cfg SinkConfig) (Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkOpen, err)
	}
	enc, ok := encoders[strings.ToUpper(cfg.Codec)]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", ErrSinkOpen, ErrUnsupportedCodec, cfg.Codec)
	}

	// ffmpeg only reports an unwritable destination once the first packet is
	// muxed; create the file up front so the failure surfaces at open.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkOpen, err)
	}
	f.Close()

	sink, err := startEncoder(ctx, t.FFmpegPath, path, cfg, enc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkOpen, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Toolchain.OpenSink",
		"path":     path,
		"codec":    cfg.Codec,
		"encoder":  enc.name,
		"width":    cfg.Width,
		"height":   cfg.Height,
		"fps":      cfg.FPS,
	}).Debug("Frame sink opened")

	return sink, nil
}
