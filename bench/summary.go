package bench

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the successful runs of one pool size. Times are in
// seconds.
type Summary struct {
	PoolSize int
	Runs     int // successful runs
	Failures int
	Mean     float64
	StdDev   float64
	Min      float64
	Max      float64

	// Speedup is the mean of the smallest pool size divided by this mean.
	Speedup float64

	// Throughput is frames processed per second at the mean time.
	Throughput float64
}

// Summarize groups measurements by pool size, in order of first
// appearance. Pool sizes whose runs all failed are kept with zero
// statistics.
func Summarize(measurements []Measurement) []Summary {
	var order []int
	elapsed := make(map[int][]float64)
	frames := make(map[int]int)
	failures := make(map[int]int)

	for _, m := range measurements {
		if _, seen := elapsed[m.PoolSize]; !seen {
			order = append(order, m.PoolSize)
			elapsed[m.PoolSize] = nil
		}
		if !m.OK() {
			failures[m.PoolSize]++
			continue
		}
		elapsed[m.PoolSize] = append(elapsed[m.PoolSize], m.ElapsedSeconds())
		frames[m.PoolSize] = m.Frames
	}

	summaries := make([]Summary, 0, len(order))
	baseline, baselineSize := 0.0, 0
	for _, size := range order {
		xs := elapsed[size]
		s := Summary{PoolSize: size, Runs: len(xs), Failures: failures[size]}
		if len(xs) > 0 {
			s.Mean = stat.Mean(xs, nil)
			if len(xs) > 1 {
				s.StdDev = stat.StdDev(xs, nil)
			}
			s.Min = floats.Min(xs)
			s.Max = floats.Max(xs)
			if s.Mean > 0 {
				s.Throughput = float64(frames[size]) / s.Mean
			}
			if s.Mean > 0 && (baselineSize == 0 || size < baselineSize) {
				baseline, baselineSize = s.Mean, size
			}
		}
		summaries = append(summaries, s)
	}

	for i := range summaries {
		if summaries[i].Mean > 0 {
			summaries[i].Speedup = baseline / summaries[i].Mean
		}
	}
	return summaries
}

// WriteSummary prints summaries as an aligned table.
func WriteSummary(w io.Writer, summaries []Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "workers\truns\tfailed\tmean s\tstddev s\tmin s\tmax s\tspeedup\tframes/s\t")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.2fx\t%.1f\t\n",
			s.PoolSize, s.Runs, s.Failures, s.Mean, s.StdDev, s.Min, s.Max, s.Speedup, s.Throughput)
	}
	return tw.Flush()
}
