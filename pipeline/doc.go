// Package pipeline runs one timed benchmark pass over a video.
//
// A Driver moves through a fixed sequence of states:
//
//	Idle → OpeningSource → MaterializingFrames → OpeningSink →
//	Dispatching → CollectingWriting → Closing → Done
//
// with Failed reachable from any step. Every decoded frame is held in memory
// before filtering starts. Filtering runs on a fresh pool.Executor with the
// configured worker count; results are collected strictly in frame order and
// each one is written to the sink before the next is requested.
//
// The elapsed time in a RunResult covers dispatch, collection, writing and
// sink finalization only. Opening the source and decoding frames are not
// timed.
//
//	driver := pipeline.NewDriver(toolchain, frame.NewEdgeHighlightEffect())
//	result, err := driver.Run(ctx, pipeline.Config{
//	    InputPath:  "clip.mp4",
//	    OutputPath: "clip_output.avi",
//	    Workers:    4,
//	})
package pipeline
