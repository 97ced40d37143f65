package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/framebench/bench"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("framebench", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseCLIFlags_Defaults(t *testing.T) {
	config, err := parseCLIFlags(newFlagSet(), []string{"clip.mp4"})
	require.NoError(t, err)

	assert.Equal(t, "clip.mp4", config.input)
	assert.Equal(t, "", config.output)
	assert.Equal(t, "2,4,6,8,10", config.pools)
	assert.Equal(t, 5, config.runs)
	assert.Equal(t, uint64(0), config.memoryBudget)
	assert.True(t, config.verify)
	assert.Equal(t, "INFO", config.logLevel)
	assert.Equal(t, "text", config.logFormat)
	assert.False(t, config.help)
}

func TestParseCLIFlags_Explicit(t *testing.T) {
	config, err := parseCLIFlags(newFlagSet(), []string{
		"-input", "a.mkv", "-output", "out.avi", "-pools", "1,3", "-runs", "2",
		"-memory-budget", "1048576", "-verify=false", "-plot", "p.png",
		"-log-level", "debug", "-log-format", "json", "ignored.mp4",
	})
	require.NoError(t, err)

	assert.Equal(t, "a.mkv", config.input, "-input wins over the positional argument")
	assert.Equal(t, "out.avi", config.output)
	assert.Equal(t, "1,3", config.pools)
	assert.Equal(t, 2, config.runs)
	assert.Equal(t, uint64(1<<20), config.memoryBudget)
	assert.False(t, config.verify)
	assert.Equal(t, "p.png", config.plot)
	assert.Equal(t, "json", config.logFormat)
}

func TestParseCLIFlags_Unknown(t *testing.T) {
	_, err := parseCLIFlags(newFlagSet(), []string{"-bogus"})
	assert.Error(t, err)
}

func TestValidateCLIConfig(t *testing.T) {
	valid := func() *CLIConfig {
		return &CLIConfig{input: "clip.mp4", pools: "2,4", runs: 5, logLevel: "INFO", logFormat: "text"}
	}

	tests := []struct {
		name        string
		mutate      func(c *CLIConfig)
		wantErr     bool
		errContains string
	}{
		{name: "valid config", mutate: func(c *CLIConfig) {}},
		{name: "synthetic without input", mutate: func(c *CLIConfig) { c.input = ""; c.synthetic = "16x8x4" }},
		{name: "missing input", mutate: func(c *CLIConfig) { c.input = "" }, wantErr: true, errContains: "input video path is required"},
		{name: "zero runs", mutate: func(c *CLIConfig) { c.runs = 0 }, wantErr: true, errContains: "runs must be at least 1"},
		{name: "bad pool size", mutate: func(c *CLIConfig) { c.pools = "2,x" }, wantErr: true, errContains: "invalid pool size"},
		{name: "zero pool size", mutate: func(c *CLIConfig) { c.pools = "0" }, wantErr: true, errContains: "invalid pool size"},
		{name: "empty pools", mutate: func(c *CLIConfig) { c.pools = " , " }, wantErr: true, errContains: "at least one pool size"},
		{name: "bad synthetic", mutate: func(c *CLIConfig) { c.synthetic = "16x8" }, wantErr: true, errContains: "invalid synthetic input"},
		{name: "bad log level", mutate: func(c *CLIConfig) { c.logLevel = "LOUD" }, wantErr: true, errContains: "invalid log level"},
		{name: "bad log format", mutate: func(c *CLIConfig) { c.logFormat = "xml" }, wantErr: true, errContains: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			err := validateCLIConfig(config)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidateCLIConfig_DerivedFields(t *testing.T) {
	config := &CLIConfig{synthetic: "32X24X6", pools: " 1, 2 ,8", runs: 1, logLevel: "warn", logFormat: "JSON"}
	require.NoError(t, validateCLIConfig(config))

	assert.Equal(t, []int{1, 2, 8}, config.poolSizes)
	assert.Equal(t, 32, config.synthW)
	assert.Equal(t, 24, config.synthH)
	assert.Equal(t, 6, config.synthN)
}

func TestCreateBenchConfig(t *testing.T) {
	host := bench.HostInfo{AvailableMemory: 4 << 30}
	var out bytes.Buffer

	config := &CLIConfig{input: "/videos/clip.mp4", runs: 3, verify: true, poolSizes: []int{2, 4}}
	cfg := createBenchConfig(config, host, &out)
	assert.Equal(t, "/videos/clip.mp4", cfg.InputPath)
	assert.Equal(t, "/videos/clip_output.avi", cfg.OutputPath)
	assert.Equal(t, []int{2, 4}, cfg.PoolSizes)
	assert.Equal(t, 3, cfg.Repetitions)
	assert.Equal(t, "MJPG", cfg.Codec)
	assert.Equal(t, uint64(4<<30), cfg.MemoryBudget)
	assert.True(t, cfg.Verify)
	require.NotNil(t, cfg.Host)
	assert.Same(t, &out, cfg.Output)

	config = &CLIConfig{synthetic: "16x16x2", output: "x.avi", memoryBudget: 1024}
	cfg = createBenchConfig(config, host, &out)
	assert.Equal(t, "synthetic-16x16x2", cfg.InputPath)
	assert.Equal(t, "x.avi", cfg.OutputPath)
	assert.Equal(t, uint64(1024), cfg.MemoryBudget)
}

func TestSetupLogging(t *testing.T) {
	defer func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	}()

	path := filepath.Join(t.TempDir(), "bench.log")
	closer, err := setupLogging(&CLIConfig{logLevel: "DEBUG", logFormat: "json", logFile: path})
	require.NoError(t, err)

	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	logrus.WithField("function", "TestSetupLogging").Info("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	closer, err = setupLogging(&CLIConfig{logLevel: "info", logFormat: "text"})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())

	_, err = setupLogging(&CLIConfig{logLevel: "info", logFormat: "text", logFile: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestRun_Synthetic(t *testing.T) {
	plotPath := filepath.Join(t.TempDir(), "timings.png")
	config := &CLIConfig{
		synthetic: "16x12x3",
		pools:     "1,2",
		runs:      2,
		verify:    true,
		plot:      plotPath,
		logLevel:  "error",
		logFormat: "text",
	}
	require.NoError(t, validateCLIConfig(config))

	var out bytes.Buffer
	report, err := run(context.Background(), config, &out)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Len(t, report.Measurements, 4)
	assert.Zero(t, report.Failures())
	assert.Empty(t, report.Mismatches)
	assert.Equal(t, "synthetic-16x12x3_output.avi", report.OutputPath)

	text := out.String()
	assert.Contains(t, text, "=== Testing with 1 workers ===")
	assert.Contains(t, text, "Processing video: 3 frames, 30.00 FPS")
	assert.Contains(t, text, "All tests completed.")
	assert.Contains(t, text, "speedup")
	assert.True(t, strings.Contains(text, "Plot written to"))

	_, err = os.Stat(plotPath)
	assert.NoError(t, err)
}
