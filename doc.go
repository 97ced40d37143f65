// Package framebench measures how a per-frame image filter scales across
// worker pool sizes.
//
// A benchmark decodes a whole video into memory, filters every frame on a
// fixed-size pool of goroutines and writes the filtered frames, in their
// original order, to a motion-JPEG AVI file. The run is repeated for each
// configured pool size and the wall-clock time of the filter and write
// phase is reported.
//
// # Packages
//
//   - frame: BGR pixel buffers, the edge highlight filter, digests and
//     synthetic frame generation
//   - pool: a bounded generic worker pool whose results are collected by
//     submission index
//   - media: frame sources and sinks, backed by ffmpeg or by memory
//   - limits: frame size and memory budget checks
//   - pipeline: the driver for a single timed run
//   - bench: the benchmark matrix, statistics, plots and host details
//
// # Getting Started
//
//	toolchain, err := media.Init(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	driver := pipeline.NewDriver(toolchain, frame.NewEdgeHighlightEffect())
//	harness, err := bench.NewHarness(driver, bench.Config{
//	    InputPath:  "clip.mp4",
//	    OutputPath: media.OutputPath("clip.mp4"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := harness.Run(ctx)
//
// The cmd/framebench binary wraps the same steps behind command-line flags.
package framebench
