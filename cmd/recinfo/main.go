// Command recinfo reports the layout and per-channel statistics of a raw
// interleaved recording.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"eeg-scope/internal/recording"
)

func main() {
	recPath := flag.String("recording", "", "Path to the raw recording file")
	channels := flag.Int("channels", 0, "Channel count (0 = infer from sidecars or file size)")
	probe := flag.Int("probe", 5000, "Samples to probe for per-channel statistics (0 = skip)")
	flag.Parse()

	if *recPath == "" {
		fmt.Println("Usage: recinfo -recording <path> [-channels N] [-probe 5000]")
		os.Exit(1)
	}

	rec, err := recording.Open(*recPath, *channels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open recording: %v\n", err)
		os.Exit(1)
	}
	defer rec.Close()

	meta := rec.Metadata()
	rate := rec.SamplingRate()

	fmt.Printf("Recording: %s\n", filepath.Base(rec.Path()))
	fmt.Printf("File size: %d bytes\n", rec.FileSize())
	fmt.Printf("Channels:  %d\n", rec.NumChannels())
	fmt.Printf("Samples:   %d per channel\n", rec.NumSamples())
	fmt.Printf("Rate:      %.2f Hz", rate)
	if meta.HasTimestamps() {
		fmt.Printf(" (from timestamp sidecar, %d entries)\n", len(meta.Timestamps))
	} else {
		fmt.Printf(" (default, no timestamp sidecar)\n")
	}
	fmt.Printf("Duration:  %.2f s\n", float64(rec.NumSamples())/rate)
	if n := len(meta.SampleNumbers); n > 0 {
		fmt.Printf("Sample numbers: %d entries, first %d, last %d\n",
			n, meta.SampleNumbers[0], meta.SampleNumbers[n-1])
	}

	if *probe <= 0 {
		return
	}

	result, err := rec.Probe(*probe)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Probe failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nStatistics over first %d samples:\n", result.SamplesProbed)
	fmt.Printf("%-8s %12s %12s %10s %10s %10s\n",
		"Channel", "Mean", "StdDev", "Min", "Max", "PkPk")
	for ch, s := range result.Channels {
		fmt.Printf("%-8d %12.2f %12.2f %10.0f %10.0f %10.0f\n",
			ch, s.Mean, s.StdDev, s.Min, s.Max, s.PeakToPeak())
	}
}
