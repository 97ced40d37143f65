// Package bench runs the pipeline repeatedly over a matrix of worker pool
// sizes and aggregates the timings.
//
// A Harness performs Repetitions sequential runs for every entry in
// PoolSizes against the same input and output paths, printing one report
// line per run followed by a final completion line. Runs never overlap.
//
// A source failure (the input cannot be opened, has unusable dimensions
// or exceeds the memory budget) ends the whole benchmark since every run
// reuses the same input. Any other failed run is reported and skipped.
//
// Summaries are computed with gonum/stat, plots are drawn with gonum/plot
// and host details come from gopsutil.
package bench
