package traceview

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"eeg-scope/internal/recording"
	"eeg-scope/internal/viewport"
	"eeg-scope/pkg/palette"
)

// Overview is the whole-recording navigation strip shown under the trace
// view. It draws a downsampled thumbnail of one channel, the currently
// visible range, and any detected event markers. Clicking jumps the view
// to the clicked time.
type Overview struct {
	widget.BaseWidget

	mu sync.Mutex

	samples      []float32
	totalSamples int64
	samplingRate float64
	visible      viewport.SampleRange
	markers      []int64

	raster *fynecanvas.Raster

	onSeek func(centerSec float64)
}

// NewOverview creates an empty overview strip.
func NewOverview() *Overview {
	ov := &Overview{samplingRate: recording.DefaultSamplingRate}
	ov.raster = fynecanvas.NewRaster(ov.draw)
	ov.raster.ScaleMode = fynecanvas.ImageScalePixels
	ov.raster.SetMinSize(fyne.NewSize(640, 56))
	ov.ExtendBaseWidget(ov)
	return ov
}

// OnSeek registers the click-to-navigate callback. The argument is the
// clicked position in seconds from the start of the recording.
func (ov *Overview) OnSeek(fn func(centerSec float64)) {
	ov.onSeek = fn
}

// SetData installs the downsampled channel thumbnail.
func (ov *Overview) SetData(samples []float32, totalSamples int64, samplingRate float64) {
	ov.mu.Lock()
	ov.samples = samples
	ov.totalSamples = totalSamples
	if samplingRate > 0 {
		ov.samplingRate = samplingRate
	}
	ov.mu.Unlock()
	ov.raster.Refresh()
}

// SetVisible updates the highlighted range indicator.
func (ov *Overview) SetVisible(v viewport.SampleRange) {
	ov.mu.Lock()
	ov.visible = v
	ov.mu.Unlock()
	ov.raster.Refresh()
}

// SetMarkers sets the event marker positions, in samples.
func (ov *Overview) SetMarkers(samples []int64) {
	ov.mu.Lock()
	ov.markers = append([]int64(nil), samples...)
	ov.mu.Unlock()
	ov.raster.Refresh()
}

// Clear drops the thumbnail and markers.
func (ov *Overview) Clear() {
	ov.mu.Lock()
	ov.samples = nil
	ov.totalSamples = 0
	ov.markers = nil
	ov.visible = viewport.SampleRange{}
	ov.mu.Unlock()
	ov.raster.Refresh()
}

// Tapped jumps to the clicked time.
func (ov *Overview) Tapped(ev *fyne.PointEvent) {
	ov.mu.Lock()
	total := ov.totalSamples
	rate := ov.samplingRate
	ov.mu.Unlock()

	w := float64(ov.Size().Width)
	if ov.onSeek == nil || total <= 0 || w <= 0 {
		return
	}
	frac := float64(ev.Position.X) / w
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	ov.onSeek(frac * float64(total) / rate)
}

// CreateRenderer implements fyne.Widget.
func (ov *Overview) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ov.raster)
}

func (ov *Overview) draw(w, h int) image.Image {
	ov.mu.Lock()
	samples := ov.samples
	total := ov.totalSamples
	visible := ov.visible
	markers := ov.markers
	ov.mu.Unlock()

	return overviewImage(samples, total, visible, markers, w, h)
}

// overviewImage rasterizes the navigation strip: thumbnail waveform,
// marker ticks, and the visible-range box.
func overviewImage(samples []float32, totalSamples int64, visible viewport.SampleRange, markers []int64, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(out, palette.Background)
	if w == 0 || h == 0 {
		return out
	}

	if len(samples) > 0 {
		lo, hi := samples[0], samples[0]
		for _, v := range samples {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		span := float64(hi - lo)
		if span == 0 {
			span = 1
		}
		wave := palette.Dim(palette.Trace(0), 0.7)
		for x := 0; x < w; x++ {
			i0 := x * len(samples) / w
			i1 := (x + 1) * len(samples) / w
			if i1 <= i0 {
				i1 = i0 + 1
			}
			if i1 > len(samples) {
				i1 = len(samples)
			}
			cLo, cHi := samples[i0], samples[i0]
			for _, v := range samples[i0:i1] {
				if v < cLo {
					cLo = v
				}
				if v > cHi {
					cHi = v
				}
			}
			y0 := int((1 - (float64(cHi) - float64(lo)) / span) * float64(h-1))
			y1 := int((1 - (float64(cLo) - float64(lo)) / span) * float64(h-1))
			for y := y0; y <= y1; y++ {
				out.SetRGBA(x, y, wave)
			}
		}
	}

	if totalSamples <= 0 {
		return out
	}

	for _, m := range markers {
		x := int(m * int64(w) / totalSamples)
		if x < 0 || x >= w {
			continue
		}
		for y := 0; y < h/3; y++ {
			out.SetRGBA(x, y, palette.Marker)
		}
	}

	if !visible.Empty() {
		x0 := int(visible.Start * int64(w) / totalSamples)
		x1 := int(visible.End * int64(w) / totalSamples)
		if x0 < 0 {
			x0 = 0
		}
		if x1 >= w {
			x1 = w - 1
		}
		if x1 <= x0 {
			x1 = x0 + 1
			if x1 >= w {
				x0, x1 = w-2, w-1
			}
		}
		for y := 0; y < h; y++ {
			out.SetRGBA(x0, y, palette.Cursor)
			out.SetRGBA(x1, y, palette.Cursor)
		}
		for x := x0; x <= x1; x++ {
			out.SetRGBA(x, 0, palette.Cursor)
			out.SetRGBA(x, h-1, palette.Cursor)
		}
	}
	return out
}
