package render

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"eeg-scope/internal/recording"
)

const (
	// spacingPad is the margin added above the largest post-gain
	// peak-to-peak amplitude, so adjacent traces never touch.
	spacingPad = 1.2
	// spacingFloor keeps flat or near-flat channels readably apart.
	spacingFloor = 10.0
)

// Stacked holds fully positioned trace data for the drawing surface:
// one y series per displayed channel, centered on the plotted slice,
// gain-scaled, and offset by displayIndex * Spacing.
type Stacked struct {
	Series  [][]float64
	Spacing float64
}

// ChannelSpacing derives the vertical gap between stacked traces from
// the amplitudes actually being plotted. It is the maximum post-gain
// peak-to-peak across the displayed channels, padded, with a floor.
// Spacing must be computed per channel after gain; a single shared
// statistic under-spaces channels whose gain has been raised.
func ChannelSpacing(buf *recording.Buffer, gains []float64) float64 {
	maxPP := 0.0
	col := make([]float64, 0, buf.Rows())
	for ch := 0; ch < buf.Channels; ch++ {
		col = buf.Column(ch, col)
		if pp := peakToPeak(col) * gainFor(gains, ch); pp > maxPP {
			maxPP = pp
		}
	}
	spacing := maxPP * spacingPad
	if spacing < spacingFloor {
		spacing = spacingFloor
	}
	return spacing
}

// Stack positions every channel of a plotted buffer for display. Each
// channel is centered by subtracting its own mean over the plotted
// slice, scaled by its individual gain, then offset by its display
// index times the computed spacing.
func Stack(buf *recording.Buffer, gains []float64) Stacked {
	spacing := ChannelSpacing(buf, gains)
	series := make([][]float64, buf.Channels)
	for ch := 0; ch < buf.Channels; ch++ {
		col := buf.Column(ch, nil)
		mean := 0.0
		if len(col) > 0 {
			mean = stat.Mean(col, nil)
		}
		gain := gainFor(gains, ch)
		offset := float64(ch) * spacing
		for i, v := range col {
			col[i] = (v-mean)*gain + offset
		}
		series[ch] = col
	}
	return Stacked{Series: series, Spacing: spacing}
}

func gainFor(gains []float64, ch int) float64 {
	if ch < len(gains) && gains[ch] > 0 {
		return gains[ch]
	}
	return 1.0
}

func peakToPeak(col []float64) float64 {
	if len(col) == 0 {
		return 0
	}
	return floats.Max(col) - floats.Min(col)
}
