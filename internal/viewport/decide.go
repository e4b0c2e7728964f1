// Package viewport converts renderer-reported visible time ranges into
// sample-indexed fetch decisions against a recording, with hysteresis so
// interactive pan and zoom gestures do not thrash the loader.
package viewport

import "fmt"

const (
	// MinWindowSamples is the floor on the visible window: narrower
	// requests are widened around their midpoint before any fetch.
	MinWindowSamples = 100

	// BufferRatio is the extra data fetched on each side of the visible
	// window, as a fraction of the window length.
	BufferRatio = 0.5

	// marginFloorSamples bounds the staleness tolerance from below so
	// sub-pixel range jitter never triggers a reload.
	marginFloorSamples = 1000

	// fullResSeconds is the window length below which the loaded span is
	// kept tight so the renderer can show every sample.
	fullResSeconds = 2.0

	// widePanSeconds is the window length above which extra context is
	// preloaded for smooth far panning.
	widePanSeconds = 60.0
)

// SampleRange is a half-open sample interval [Start, End).
type SampleRange struct {
	Start, End int64
}

// Len returns the number of samples in the range.
func (r SampleRange) Len() int64 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range holds no samples.
func (r SampleRange) Empty() bool { return r.End <= r.Start }

// Contains reports whether other lies entirely within r.
func (r SampleRange) Contains(other SampleRange) bool {
	return r.Start <= other.Start && other.End <= r.End
}

// String implements fmt.Stringer.
func (r SampleRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// clamp confines the range to [0, maxSamples].
func (r SampleRange) clamp(maxSamples int64) SampleRange {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > maxSamples {
		r.End = maxSamples
	}
	return r
}

// Source tags the provenance of a range-change event. Programmatic updates
// are echoes of the loader's own view adjustments and never trigger a
// fetch; only user-initiated changes do.
type Source int

const (
	UserInitiated Source = iota
	ProgrammaticUpdate
)

// Reason explains why a reload decision was made.
type Reason int

const (
	// ReasonNone means the loaded window still covers the view.
	ReasonNone Reason = iota
	// ReasonSpatial means the desired range leaves the loaded range by
	// more than the jitter margin.
	ReasonSpatial
	// ReasonFullRes means the view zoomed in far enough that the wide
	// loaded buffer should be replaced by a tight full-resolution one.
	ReasonFullRes
	// ReasonWidePan means the view zoomed out far enough that more
	// context should be preloaded.
	ReasonWidePan
)

// String implements fmt.Stringer.
func (r Reason) String() string {
	switch r {
	case ReasonSpatial:
		return "outside loaded range"
	case ReasonFullRes:
		return "full resolution"
	case ReasonWidePan:
		return "wide pan context"
	default:
		return "none"
	}
}

// Decision is the outcome of comparing a visible range against the loaded
// window.
type Decision struct {
	Reload  bool
	Reason  Reason
	Visible SampleRange // after clamping and window-floor widening
	Fetch   SampleRange // buffered superset to load when Reload is set
}

// ApplyWindowFloor widens a visible range narrower than MinWindowSamples
// to the floor, centered on the original midpoint and clamped into
// [0, maxSamples].
func ApplyWindowFloor(visible SampleRange, maxSamples int64) SampleRange {
	visible = visible.clamp(maxSamples)
	if visible.Len() >= MinWindowSamples {
		return visible
	}

	center := (visible.Start + visible.End) / 2
	start := center - MinWindowSamples/2
	if start < 0 {
		start = 0
	}
	end := start + MinWindowSamples
	if end > maxSamples {
		end = maxSamples
		if end-MinWindowSamples > 0 {
			start = end - MinWindowSamples
		} else {
			start = 0
		}
	}
	return SampleRange{Start: start, End: end}
}

// DesiredRange returns the buffered superset of visible that a fetch
// should cover: BufferRatio extra on each side, clamped to the recording.
func DesiredRange(visible SampleRange, maxSamples int64) SampleRange {
	buffer := int64(float64(visible.Len()) * BufferRatio)
	return SampleRange{
		Start: visible.Start - buffer,
		End:   visible.End + buffer,
	}.clamp(maxSamples)
}

// Decide evaluates whether the loaded window still serves the visible
// range. The reload test is twofold: a spatial staleness check with a
// jitter margin, and a resolution-regime check that forces a tight
// refetch when zoomed in close and a wide refetch when zoomed out far.
// Either alone would over-fetch when zoomed out or under-resolve when
// zoomed in.
func Decide(visible, loaded SampleRange, maxSamples int64, samplingRate float64) Decision {
	visible = ApplyWindowFloor(visible, maxSamples)
	if visible.Empty() {
		return Decision{Visible: visible}
	}

	desired := DesiredRange(visible, maxSamples)
	d := Decision{Visible: visible, Fetch: desired}

	if loaded.Empty() {
		d.Reload = true
		d.Reason = ReasonSpatial
		return d
	}

	window := visible.Len()
	margin := window / 10
	if margin < marginFloorSamples {
		margin = marginFloorSamples
	}
	if desired.Start < loaded.Start-margin || desired.End > loaded.End+margin {
		d.Reload = true
		d.Reason = ReasonSpatial
		return d
	}

	windowSeconds := float64(window) / samplingRate
	loadedSpan := loaded.Len()
	switch {
	case windowSeconds < fullResSeconds && loadedSpan > 5*window:
		d.Reload = true
		d.Reason = ReasonFullRes
	case windowSeconds > widePanSeconds && loadedSpan < 2*window:
		d.Reload = true
		d.Reason = ReasonWidePan
	}
	return d
}
