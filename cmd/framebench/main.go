// Package main provides the command-line interface for the frame processing
// benchmark.
//
// The executable decodes a video into memory once per run, applies the edge
// highlight filter on worker pools of varying size and writes the result to
// an MJPG AVI file, reporting the time taken for every run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/framebench/bench"
	"github.com/opd-ai/framebench/frame"
	"github.com/opd-ai/framebench/media"
	"github.com/opd-ai/framebench/pipeline"
)

// syntheticFPS is the frame rate reported for -synthetic inputs.
const syntheticFPS = 30

// CLI configuration
type CLIConfig struct {
	input        string
	output       string
	pools        string
	runs         int
	memoryBudget uint64
	verify       bool
	plot         string
	synthetic    string
	logLevel     string
	logFormat    string
	logFile      string
	help         bool

	// Derived by validateCLIConfig.
	poolSizes []int
	synthW    int
	synthH    int
	synthN    int
}

// parseCLIFlags parses command-line flags into a configuration. A single
// positional argument is accepted as the input path.
func parseCLIFlags(fs *flag.FlagSet, args []string) (*CLIConfig, error) {
	config := &CLIConfig{}

	// Input and output
	fs.StringVar(&config.input, "input", "", "Input video file")
	fs.StringVar(&config.output, "output", "", "Output AVI file (default: <input>_output.avi)")

	// Benchmark matrix
	fs.StringVar(&config.pools, "pools", "2,4,6,8,10", "Comma-separated worker pool sizes")
	fs.IntVar(&config.runs, "runs", bench.DefaultRepetitions, "Runs per pool size")
	fs.Uint64Var(&config.memoryBudget, "memory-budget", 0, "Maximum bytes of decoded frames (0: available host memory)")
	fs.BoolVar(&config.verify, "verify", true, "Check that every run writes identical frames")
	fs.StringVar(&config.plot, "plot", "", "Write an elapsed-time plot to this file (png, svg, pdf)")
	fs.StringVar(&config.synthetic, "synthetic", "", "Use generated WxHxN frames instead of a video file")

	// Logging configuration
	fs.StringVar(&config.logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&config.logFormat, "log-format", "text", "Log format (text, json)")
	fs.StringVar(&config.logFile, "log-file", "", "Log file path (default: stderr)")

	// Help
	fs.BoolVar(&config.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if config.input == "" && fs.NArg() > 0 {
		config.input = fs.Arg(0)
	}
	return config, nil
}

// printUsage prints the usage information.
func printUsage(fs *flag.FlagSet) {
	fmt.Println("Frame Processing Benchmark")
	fmt.Println("==========================")
	fmt.Println()
	fmt.Println("Measures how the edge highlight filter scales with worker pool size:")
	fmt.Println("  • Decodes every frame of the input into memory")
	fmt.Println("  • Filters the frames on a fixed-size worker pool")
	fmt.Println("  • Writes the frames in order to an MJPG AVI file")
	fmt.Println("  • Repeats for every pool size and reports the timings")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [options] <video>\n", os.Args[0])
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  # Benchmark a clip with the default matrix\n")
	fmt.Printf("  %s clip.mp4\n", os.Args[0])
	fmt.Println()
	fmt.Printf("  # Fewer runs, custom pool sizes and a plot\n")
	fmt.Printf("  %s -pools 1,2,4 -runs 3 -plot timings.png clip.mp4\n", os.Args[0])
	fmt.Println()
	fmt.Printf("  # No ffmpeg required\n")
	fmt.Printf("  %s -synthetic 640x480x120\n", os.Args[0])
}

// validateCLIConfig validates the configuration and fills the derived fields.
func validateCLIConfig(config *CLIConfig) error {
	if config.input == "" && config.synthetic == "" {
		return fmt.Errorf("input video path is required")
	}

	if config.runs < 1 {
		return fmt.Errorf("runs must be at least 1")
	}

	sizes, err := parsePoolSizes(config.pools)
	if err != nil {
		return err
	}
	config.poolSizes = sizes

	if config.synthetic != "" {
		w, h, n, err := parseSynthetic(config.synthetic)
		if err != nil {
			return err
		}
		config.synthW, config.synthH, config.synthN = w, h, n
	}

	if _, err := logrus.ParseLevel(config.logLevel); err != nil {
		return fmt.Errorf("invalid log level %q", config.logLevel)
	}

	switch strings.ToLower(config.logFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json")
	}

	return nil
}

// parsePoolSizes parses a comma-separated list of positive worker counts.
func parsePoolSizes(s string) ([]int, error) {
	var sizes []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid pool size %q: must be a positive integer", field)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("at least one pool size is required")
	}
	return sizes, nil
}

// parseSynthetic parses a WxHxN synthetic input description.
func parseSynthetic(s string) (width, height, count int, err error) {
	parts := strings.Split(strings.ToLower(s), "x")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid synthetic input %q: expected WIDTHxHEIGHTxFRAMES", s)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		v, convErr := strconv.Atoi(p)
		if convErr != nil || v < 1 {
			return 0, 0, 0, fmt.Errorf("invalid synthetic input %q: expected WIDTHxHEIGHTxFRAMES", s)
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}

// setupLogging configures the global logrus logger. The returned closer
// releases the log file, if any.
func setupLogging(config *CLIConfig) (io.Closer, error) {
	level, err := logrus.ParseLevel(config.logLevel)
	if err != nil {
		return nil, err
	}
	logrus.SetLevel(level)

	if strings.EqualFold(config.logFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if config.logFile == "" {
		logrus.SetOutput(os.Stderr)
		return io.NopCloser(nil), nil
	}

	logFile, err := os.OpenFile(config.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logrus.SetOutput(logFile)
	return logFile, nil
}

// createBackend returns the in-memory backend for synthetic input or the
// ffmpeg toolchain otherwise.
func createBackend(ctx context.Context, config *CLIConfig) (media.Backend, error) {
	if config.synthetic != "" {
		backend, err := media.NewSyntheticBackend(config.synthW, config.synthH, config.synthN, syntheticFPS)
		if err != nil {
			return nil, err
		}
		backend.Discard = true
		return backend, nil
	}
	return media.Init(ctx)
}

// createBenchConfig converts the CLI configuration to a harness configuration.
func createBenchConfig(config *CLIConfig, host bench.HostInfo, out io.Writer) bench.Config {
	input := config.input
	if input == "" {
		input = "synthetic-" + strings.ToLower(config.synthetic)
	}
	output := config.output
	if output == "" {
		output = media.OutputPath(input)
	}
	budget := config.memoryBudget
	if budget == 0 {
		budget = host.AvailableMemory
	}

	return bench.Config{
		InputPath:    input,
		OutputPath:   output,
		PoolSizes:    config.poolSizes,
		Repetitions:  config.runs,
		Codec:        media.CodecMJPG,
		MemoryBudget: budget,
		Verify:       config.verify,
		Output:       out,
		Host:         &host,
	}
}

// setupSignalHandling sets up graceful shutdown on interrupt signals.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		sig := <-sigChan
		fmt.Printf("\n🛑 Received signal %v, stopping after the current run...\n", sig)
		cancel()
	}()
}

// run executes the benchmark described by config, writing the report to out.
func run(ctx context.Context, config *CLIConfig, out io.Writer) (*bench.Report, error) {
	if config.synthetic == "" && !media.IsSupportedVideo(config.input) {
		logrus.WithFields(logrus.Fields{
			"function":  "run",
			"input":     config.input,
			"supported": strings.Join(media.SupportedExtensions, ","),
		}).Warn("Input extension is not a known video type, trying anyway")
	}

	backend, err := createBackend(ctx, config)
	if err != nil {
		return nil, err
	}

	host := bench.CollectHostInfo(ctx)
	harness, err := bench.NewHarness(
		pipeline.NewDriver(backend, frame.NewEdgeHighlightEffect()),
		createBenchConfig(config, host, out),
	)
	if err != nil {
		return nil, err
	}

	report, err := harness.Run(ctx)
	if report != nil && len(report.Measurements) > 0 {
		fmt.Fprintln(out)
		if werr := bench.WriteSummary(out, report.Summaries()); werr != nil {
			return report, werr
		}
		if config.plot != "" {
			if perr := bench.WritePlot(report, config.plot); perr != nil {
				logrus.WithFields(logrus.Fields{
					"function": "run",
					"plot":     config.plot,
					"error":    perr.Error(),
				}).Error("Writing plot failed")
			} else {
				fmt.Fprintf(out, "\n📈 Plot written to %s\n", config.plot)
			}
		}
	}
	return report, err
}

// main is the entry point for the benchmark.
func main() {
	// Parse command-line flags
	cliConfig, err := parseCLIFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	// Show help if requested
	if cliConfig.help {
		printUsage(flag.CommandLine)
		os.Exit(0)
	}

	// Validate configuration
	if err := validateCLIConfig(cliConfig); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use -help for usage information.\n")
		os.Exit(1)
	}

	logCloser, err := setupLogging(cliConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Logging setup failed: %v\n", err)
		os.Exit(1)
	}

	// Set up context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	fmt.Println("🚀 Starting frame processing benchmark...")

	report, err := run(ctx, cliConfig, os.Stdout)

	exitCode := 0
	switch {
	case errors.Is(err, media.ErrToolchainUnavailable):
		fmt.Fprintf(os.Stderr, "\n❌ Imaging toolchain unavailable: %v\n", err)
		exitCode = 1
	case errors.Is(err, bench.ErrInterrupted):
		fmt.Fprintf(os.Stderr, "\n🛑 Benchmark interrupted\n")
		exitCode = 130
	case err != nil:
		fmt.Fprintf(os.Stderr, "\n❌ Benchmark failed: %v\n", err)
		exitCode = 1
	case len(report.Mismatches) > 0:
		fmt.Fprintf(os.Stderr, "\n❌ %d runs wrote different frames than the first run\n", len(report.Mismatches))
		exitCode = 1
	}

	if report != nil {
		fmt.Printf("\n📊 Summary: %d runs, %d failed (session %s)\n",
			len(report.Measurements), report.Failures(), report.SessionID)
	}

	logCloser.Close()
	os.Exit(exitCode)
}
