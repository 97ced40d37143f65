package media

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// probeVideo runs one ffprobe JSON call against path.
func probeVideo(ctx context.Context, ffprobe, path string) (Metadata, error) {
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-select_streams", "v",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return Metadata{}, fmt.Errorf("ffprobe %q: %w: %s", path, err, strings.TrimSpace(string(ee.Stderr)))
		}
		return Metadata{}, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	return ParseProbeJSON(out)
}

// ParseProbeJSON extracts Metadata for the primary video stream from raw
// ffprobe JSON output. Exported for testing without a real ffprobe binary.
func ParseProbeJSON(data []byte) (Metadata, error) {
	var raw ffprobeOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return Metadata{}, fmt.Errorf("parse ffprobe JSON: %w", err)
	}

	for i := range raw.Streams {
		s := &raw.Streams[i]
		if s.CodecType != "video" || s.Disposition["attached_pic"] == 1 {
			continue
		}
		return convertVideo(s, &raw.Format), nil
	}
	return Metadata{}, ErrNoVideoStream
}

// --- ffprobe JSON wire types ---

type ffprobeOutput struct {
	Format  ffprobeFormat   `json:"format"`
	Streams []ffprobeStream `json:"streams"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeStream struct {
	CodecType    string         `json:"codec_type"`
	Width        int            `json:"width"`
	Height       int            `json:"height"`
	AvgFrameRate string         `json:"avg_frame_rate"`
	RFrameRate   string         `json:"r_frame_rate"`
	NbFrames     string         `json:"nb_frames"`
	Duration     string         `json:"duration"`
	Disposition  map[string]int `json:"disposition"`
}

func convertVideo(s *ffprobeStream, f *ffprobeFormat) Metadata {
	fps := parseFrameRate(s.AvgFrameRate)
	if fps == 0 {
		fps = parseFrameRate(s.RFrameRate)
	}

	count := parseInt64(s.NbFrames)
	if count == 0 && fps > 0 {
		duration := parseFloat(s.Duration)
		if duration == 0 {
			duration = parseFloat(f.Duration)
		}
		count = int64(math.Round(duration * fps))
	}

	return Metadata{
		FPS:        fps,
		Width:      s.Width,
		Height:     s.Height,
		FrameCount: count,
	}
}

// parseFrameRate converts "30000/1001" or "25" to frames per second.
// Malformed or zero-denominator rates yield 0.
func parseFrameRate(s string) float64 {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found {
		return parseFloat(num)
	}
	n := parseFloat(num)
	d := parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

// --- Numeric parsing helpers (ffprobe returns numbers as strings) ---

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
