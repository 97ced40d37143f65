// Package media provides the frame source and frame sink used by the
// benchmark pipeline.
//
// A Backend opens Sources (ordered, finite, non-restartable sequences of
// decoded frames plus stream metadata) and Sinks (containers that accept
// frames in final output order). Two backends are provided:
//
//   - Toolchain decodes and encodes through the ffmpeg and ffprobe binaries.
//     Frames cross the process boundary as raw bgr24 over pipes. Obtain one
//     with Init, which fails with ErrToolchainUnavailable when either binary
//     is missing.
//   - MemoryBackend serves frames held in memory and records what is written.
//     It needs no external tools and is used by tests and synthetic runs.
//
// Example:
//
//	tc, err := media.Init(ctx)
//	if err != nil {
//	    return err
//	}
//	src, err := tc.OpenSource(ctx, "clip.mp4")
//	if err != nil {
//	    return err // wraps ErrSourceOpen
//	}
//	defer src.Close()
//
//	meta := src.Metadata()
//	sink, err := tc.OpenSink(ctx, media.OutputPath("clip.mp4"), media.SinkConfig{
//	    Codec:  media.CodecMJPG,
//	    FPS:    meta.FPS,
//	    Width:  meta.Width,
//	    Height: meta.Height,
//	})
package media
