package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeJSON(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected Metadata
	}{
		{
			name: "nb_frames present",
			json: `{"streams":[{"codec_type":"video","width":1920,"height":1080,
				"avg_frame_rate":"30000/1001","r_frame_rate":"30000/1001","nb_frames":"1800"}],
				"format":{"duration":"60.06"}}`,
			expected: Metadata{FPS: 30000.0 / 1001.0, Width: 1920, Height: 1080, FrameCount: 1800},
		},
		{
			name: "count from stream duration",
			json: `{"streams":[{"codec_type":"video","width":640,"height":480,
				"avg_frame_rate":"25/1","duration":"4.0"}],"format":{"duration":"5.0"}}`,
			expected: Metadata{FPS: 25, Width: 640, Height: 480, FrameCount: 100},
		},
		{
			name: "count from format duration",
			json: `{"streams":[{"codec_type":"video","width":320,"height":240,
				"avg_frame_rate":"0/0","r_frame_rate":"24/1"}],"format":{"duration":"2.5"}}`,
			expected: Metadata{FPS: 24, Width: 320, Height: 240, FrameCount: 60},
		},
		{
			name: "skips audio and cover art",
			json: `{"streams":[
				{"codec_type":"audio"},
				{"codec_type":"video","width":600,"height":600,"avg_frame_rate":"0/0","disposition":{"attached_pic":1}},
				{"codec_type":"video","width":1280,"height":720,"avg_frame_rate":"60","nb_frames":"10"}]}`,
			expected: Metadata{FPS: 60, Width: 1280, Height: 720, FrameCount: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := ParseProbeJSON([]byte(tt.json))
			require.NoError(t, err)
			assert.InDelta(t, tt.expected.FPS, meta.FPS, 1e-9)
			assert.Equal(t, tt.expected.Width, meta.Width)
			assert.Equal(t, tt.expected.Height, meta.Height)
			assert.Equal(t, tt.expected.FrameCount, meta.FrameCount)
		})
	}
}

func TestParseProbeJSON_Errors(t *testing.T) {
	_, err := ParseProbeJSON([]byte(`{"streams":[{"codec_type":"audio"}]}`))
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = ParseProbeJSON([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25/1", 25},
		{"30000/1001", 30000.0 / 1001.0},
		{"0/0", 0},
		{"24", 24},
		{"", 0},
		{"abc/def", 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, parseFrameRate(tt.in), 1e-9, tt.in)
	}
}
