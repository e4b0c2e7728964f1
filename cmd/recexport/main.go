// Command recexport extracts a span of channels from a raw recording and
// writes it as CSV or float32 binary, with a JSON metadata sidecar.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"eeg-scope/internal/dsp"
	"eeg-scope/internal/export"
	"eeg-scope/internal/recording"
	"eeg-scope/internal/viewport"
)

func main() {
	recPath := flag.String("recording", "", "Path to the raw recording file")
	channels := flag.Int("channels", 0, "Channel count (0 = infer from sidecars or file size)")
	selectArg := flag.String("select", "", "Comma-separated channel indices to export (default all)")
	startSec := flag.Float64("start", 0, "Start time in seconds")
	endSec := flag.Float64("end", 0, "End time in seconds (0 = end of recording)")
	out := flag.String("out", "", "Output path; .csv writes CSV, anything else raw float32")
	removeDC := flag.Bool("dc", false, "Remove per-channel DC offset")
	normalize := flag.Bool("normalize", false, "Z-score each channel")
	reref := flag.String("reref", "none", "Re-referencing: none or average")
	noMeta := flag.Bool("no-meta", false, "Skip the JSON metadata sidecar")
	flag.Parse()

	if *recPath == "" || *out == "" {
		fmt.Println("Usage: recexport -recording <path> -out <path> [-channels N] [-select 0,1,2] [-start S] [-end S] [-dc] [-normalize] [-reref average]")
		os.Exit(1)
	}

	rec, err := recording.Open(*recPath, *channels)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open recording: %v\n", err)
		os.Exit(1)
	}
	defer rec.Close()

	selection, err := parseSelection(*selectArg, rec.NumChannels())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad channel selection: %v\n", err)
		os.Exit(1)
	}

	rate := rec.SamplingRate()
	span := viewport.SampleRange{
		Start: int64(*startSec * rate),
		End:   int64(*endSec * rate),
	}
	if *endSec <= 0 || span.End > rec.NumSamples() {
		span.End = rec.NumSamples()
	}
	if span.Start < 0 || span.Start >= span.End {
		fmt.Fprintf(os.Stderr, "Empty span [%g s, %g s)\n", *startSec, *endSec)
		os.Exit(1)
	}

	buf, err := rec.LoadChannels(selection, span.Start, span.End)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read failed: %v\n", err)
		os.Exit(1)
	}

	opts := dsp.Options{
		RemoveDC:  *removeDC,
		Normalize: *normalize,
		Reref:     dsp.RerefModeFromString(*reref),
	}
	dsp.Process(buf, opts)

	if filepath.Ext(*out) == ".csv" {
		err = export.WriteCSV(*out, buf)
	} else {
		err = export.WriteRaw(*out, buf)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Write failed: %v\n", err)
		os.Exit(1)
	}

	if !*noMeta {
		meta := export.BuildMetadata(rec.Path(), "", selection, span, rate, opts, nil)
		if err := export.WriteMetadata(*out, meta); err != nil {
			fmt.Fprintf(os.Stderr, "Metadata write failed: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Exported %d samples x %d channels (%.2f s) to %s\n",
		buf.Rows(), len(selection), float64(span.Len())/rate, *out)
}

// parseSelection parses "0,3,7" into channel indices, defaulting to all
// channels when the argument is empty.
func parseSelection(arg string, numChannels int) ([]int, error) {
	if arg == "" {
		all := make([]int, numChannels)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	parts := strings.Split(arg, ",")
	sel := make([]int, 0, len(parts))
	for _, p := range parts {
		ch, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid channel %q", p)
		}
		if ch < 0 || ch >= numChannels {
			return nil, fmt.Errorf("channel %d not in [0, %d)", ch, numChannels)
		}
		sel = append(sel, ch)
	}
	return sel, nil
}
