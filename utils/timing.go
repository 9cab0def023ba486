package utils

import (
	"fmt"
	"io"
	"os"
	"time"
)

// Verbose controls whether timing statistics are printed.
// Set to false to suppress output.
var Verbose = true

// Output is the writer where timing statistics are printed.
// Defaults to os.Stdout.
var Output io.Writer = os.Stdout

// TimingStats holds timing information for different operations
type TimingStats struct {
	TotalTime           time.Duration
	DataGenTime         time.Duration
	ModelInitTime       time.Duration
	ForwardPassTime     time.Duration
	LossComputationTime time.Duration
	BackwardPassTime    time.Duration
	UpdateTime          time.Duration
	EvalTime            time.Duration
}

// PrintTimingStats prints detailed timing statistics.
// Respects the Verbose flag - does nothing if Verbose is false.
func PrintTimingStats(stats *TimingStats, steps int) {
	if !Verbose {
		return
	}
	if steps <= 0 || stats.TotalTime <= 0 {
		return
	}
	fmt.Fprintln(Output, "\n=== TIMING STATISTICS ===")
	fmt.Fprintf(Output, "Total training time: %v\n", stats.TotalTime)
	fmt.Fprintf(Output, "Average time per step: %v\n", stats.TotalTime/time.Duration(steps))
	fmt.Fprintf(Output, "Steps completed: %d\n", steps)
	fmt.Fprintln(Output, "\nBreakdown by operation:")
	fmt.Fprintf(Output, "  Data generation: %v (%.1f%%)\n", stats.DataGenTime, pct(stats.DataGenTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Model initialization: %v (%.1f%%)\n", stats.ModelInitTime, pct(stats.ModelInitTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Forward pass: %v (%.1f%%)\n", stats.ForwardPassTime, pct(stats.ForwardPassTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Loss computation: %v (%.1f%%)\n", stats.LossComputationTime, pct(stats.LossComputationTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Backward pass: %v (%.1f%%)\n", stats.BackwardPassTime, pct(stats.BackwardPassTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Weight updates: %v (%.1f%%)\n", stats.UpdateTime, pct(stats.UpdateTime, stats.TotalTime))
	fmt.Fprintf(Output, "  Evaluation: %v (%.1f%%)\n", stats.EvalTime, pct(stats.EvalTime, stats.TotalTime))
}

func pct(part, total time.Duration) float64 {
	return float64(part) / float64(total) * 100
}
