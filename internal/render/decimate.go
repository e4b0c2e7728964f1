package render

import (
	"eeg-scope/internal/recording"
	"eeg-scope/internal/viewport"
)

const (
	// Below this visible duration the view plots every sample. Spike and
	// artifact inspection needs full resolution.
	fullResSeconds = 2.0
	// Extra samples extracted on each side of the visible range at full
	// resolution, so small pans don't immediately hit the buffer edge.
	fullResPadRatio = 0.1

	mediumZoomSeconds = 10.0
	wideZoomSeconds   = 60.0

	mediumPointsPerPixel = 3.5
	widePointsPerPixel   = 2.0

	mediumMinPoints = 10_000
	mediumMaxPoints = 500_000
	wideMinPoints   = 20_000
	wideMaxPoints   = 200_000
	flatMaxPoints   = 100_000
)

// Mode identifies which resolution tier a plan used.
type Mode int

const (
	// ModeFullRes plots every sample of the visible sub-range.
	ModeFullRes Mode = iota
	// ModeDecimated plots the whole loaded buffer with a stride.
	ModeDecimated
)

func (m Mode) String() string {
	switch m {
	case ModeFullRes:
		return "full-res"
	case ModeDecimated:
		return "decimated"
	default:
		return "unknown"
	}
}

// Plan describes how a loaded buffer is reduced for drawing: either a
// full-resolution extraction of the visible sub-range, or a strided
// pass over the whole loaded buffer.
type Plan struct {
	Mode   Mode
	Stride int

	// Extraction bounds relative to the loaded buffer, valid in
	// ModeFullRes. Half-open, already clamped.
	ExtractStart int
	ExtractEnd   int

	// FirstSample is the absolute sample index of the first plotted
	// point, for building the time axis.
	FirstSample int64
}

// PlanView selects the resolution tier for a visible range over a
// loaded range. Budgets grow with the visible duration so that zoomed-in
// views keep detail while zoomed-out views stay bounded.
func PlanView(visible, loaded viewport.SampleRange, samplingRate float64) Plan {
	visibleSeconds := float64(visible.Len()) / samplingRate

	if visibleSeconds < fullResSeconds && !visible.Empty() {
		pad := int64(float64(visible.Len()) * fullResPadRatio)
		if pad < 1 {
			pad = 1
		}
		start := visible.Start - pad
		if start < loaded.Start {
			start = loaded.Start
		}
		end := visible.End + pad
		if end > loaded.End {
			end = loaded.End
		}
		return Plan{
			Mode:         ModeFullRes,
			Stride:       1,
			ExtractStart: int(start - loaded.Start),
			ExtractEnd:   int(end - loaded.Start),
			FirstSample:  start,
		}
	}

	var maxPoints int
	switch {
	case visibleSeconds < mediumZoomSeconds:
		maxPoints = clampPoints(int(float64(visible.Len())*mediumPointsPerPixel), mediumMinPoints, mediumMaxPoints)
	case visibleSeconds < wideZoomSeconds:
		maxPoints = clampPoints(int(float64(visible.Len())*widePointsPerPixel), wideMinPoints, wideMaxPoints)
	default:
		maxPoints = flatMaxPoints
	}

	stride := 1
	if total := int(loaded.Len()); total > maxPoints {
		stride = total / maxPoints
		if stride < 1 {
			stride = 1
		}
	}
	return Plan{
		Mode:        ModeDecimated,
		Stride:      stride,
		FirstSample: loaded.Start,
	}
}

func clampPoints(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// Apply reduces buf according to the plan. The result is a copy; the
// loaded buffer stays intact for the next re-plan.
func (p Plan) Apply(buf *recording.Buffer) *recording.Buffer {
	if p.Mode == ModeFullRes {
		start, end := p.ExtractStart, p.ExtractEnd
		if start < 0 {
			start = 0
		}
		if end > buf.Rows() {
			end = buf.Rows()
		}
		if end <= start {
			return buf.Clone()
		}
		return buf.Slice(start, end)
	}
	if p.Stride <= 1 {
		return buf.Clone()
	}
	return buf.Decimate(p.Stride)
}

// SampleAt returns the absolute sample index of plotted point i.
func (p Plan) SampleAt(i int) int64 {
	return p.FirstSample + int64(i*p.Stride)
}

// TimeAxis builds the x axis in seconds for a plotted buffer of n rows.
func (p Plan) TimeAxis(n int, samplingRate float64) []float64 {
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = float64(p.SampleAt(i)) / samplingRate
	}
	return axis
}
