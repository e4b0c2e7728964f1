// Package dsp implements the signal processing applied to loaded sample
// buffers: DC removal, per-channel normalization, re-referencing, and
// zero-phase IIR filtering, plus spectral estimates for the spectrum views.
package dsp

import (
	"gonum.org/v1/gonum/stat"

	"eeg-scope/internal/recording"
)

// RerefMode selects the re-referencing scheme.
type RerefMode int

const (
	RerefNone RerefMode = iota
	// RerefAverage subtracts the cross-channel mean of the selected
	// channels from every channel (common average reference).
	RerefAverage
)

// String returns the session-file name of the mode.
func (m RerefMode) String() string {
	switch m {
	case RerefAverage:
		return "average"
	default:
		return "none"
	}
}

// RerefModeFromString parses a session-file mode name. Unknown names map
// to RerefNone.
func RerefModeFromString(s string) RerefMode {
	if s == "average" {
		return RerefAverage
	}
	return RerefNone
}

// Options is the set of enabled buffer transforms. They are applied in a
// fixed order: DC removal, then normalization, then re-referencing.
type Options struct {
	RemoveDC  bool
	Normalize bool
	Reref     RerefMode
}

// Process applies the enabled transforms to buf in place. A constant
// channel normalizes to identically zero: zero variance is guarded, never
// divided by.
func Process(buf *recording.Buffer, opts Options) {
	rows := buf.Rows()
	if rows == 0 || buf.Channels == 0 {
		return
	}

	if opts.RemoveDC || opts.Normalize {
		col := make([]float64, 0, rows)
		for ch := 0; ch < buf.Channels; ch++ {
			col = buf.Column(ch, col)
			mean := stat.Mean(col, nil)

			if opts.RemoveDC {
				for i := range col {
					col[i] -= mean
				}
				mean = 0
			}

			if opts.Normalize {
				sd := stat.StdDev(col, nil)
				if sd > 0 {
					for i := range col {
						col[i] = (col[i] - mean) / sd
					}
				} else if opts.RemoveDC {
					// Constant channel: already all zero.
				} else {
					for i := range col {
						col[i] = 0
					}
				}
			}

			buf.SetColumn(ch, col)
		}
	}

	if opts.Reref == RerefAverage && buf.Channels > 1 {
		for s := 0; s < rows; s++ {
			row := buf.Row(s)
			var sum float32
			for _, v := range row {
				sum += v
			}
			avg := sum / float32(len(row))
			for i := range row {
				row[i] -= avg
			}
		}
	}
}
