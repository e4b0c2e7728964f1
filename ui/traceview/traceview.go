// Package traceview provides the stacked multi-channel signal view with
// pan and zoom.
package traceview

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"eeg-scope/internal/recording"
	"eeg-scope/internal/render"
	"eeg-scope/internal/viewport"
	"eeg-scope/pkg/palette"
)

const (
	zoomStep      = 1.25
	minWindowSecs = 0.05
	maxWindowSecs = 3600.0
)

// RangeChangeFunc receives the new visible range in seconds together
// with what caused it. Programmatic updates echo the view's own state
// and must not trigger another fetch.
type RangeChangeFunc func(startSec, endSec float64, src viewport.Source)

// TraceView renders the loaded buffer as stacked traces and turns mouse
// gestures into visible-range changes.
type TraceView struct {
	widget.BaseWidget

	mu sync.Mutex

	buf          *recording.Buffer
	loaded       viewport.SampleRange
	visible      viewport.SampleRange
	samplingRate float64
	totalSamples int64
	gains        []float64
	labels       []string

	raster  *fynecanvas.Raster
	content *gestureArea

	onRangeChange RangeChangeFunc
}

// New creates an empty trace view.
func New() *TraceView {
	tv := &TraceView{samplingRate: recording.DefaultSamplingRate}
	tv.raster = fynecanvas.NewRaster(tv.draw)
	tv.raster.ScaleMode = fynecanvas.ImageScalePixels
	tv.raster.SetMinSize(fyne.NewSize(640, 360))
	tv.content = newGestureArea(tv, tv.raster)
	tv.ExtendBaseWidget(tv)
	return tv
}

// Container returns the canvas object for embedding in layouts.
func (tv *TraceView) Container() fyne.CanvasObject {
	return tv.content
}

// OnRangeChange registers the range-change callback.
func (tv *TraceView) OnRangeChange(fn RangeChangeFunc) {
	tv.onRangeChange = fn
}

// SetRecordingInfo sets the sampling rate and total sample count used
// for gesture clamping and the time axis.
func (tv *TraceView) SetRecordingInfo(samplingRate float64, totalSamples int64) {
	tv.mu.Lock()
	tv.samplingRate = samplingRate
	tv.totalSamples = totalSamples
	tv.mu.Unlock()
}

// SetGains sets the per-channel display gains, in display order.
func (tv *TraceView) SetGains(gains []float64) {
	tv.mu.Lock()
	tv.gains = append([]float64(nil), gains...)
	tv.mu.Unlock()
	tv.raster.Refresh()
}

// SetLabels sets the channel names, in display order.
func (tv *TraceView) SetLabels(labels []string) {
	tv.mu.Lock()
	tv.labels = append([]string(nil), labels...)
	tv.mu.Unlock()
	tv.raster.Refresh()
}

// ShowUpdate installs a freshly loaded buffer and its ranges. This is a
// programmatic view change; it is reported with ProgrammaticUpdate so
// the loader does not treat it as a new gesture.
func (tv *TraceView) ShowUpdate(u viewport.Update) {
	tv.mu.Lock()
	tv.buf = u.Buffer
	tv.loaded = u.Loaded
	tv.visible = u.Visible
	rate := tv.samplingRate
	visible := tv.visible
	tv.mu.Unlock()

	if tv.onRangeChange != nil {
		tv.onRangeChange(float64(visible.Start)/rate, float64(visible.End)/rate, viewport.ProgrammaticUpdate)
	}
	tv.raster.Refresh()
}

// Visible returns the current visible sample range.
func (tv *TraceView) Visible() viewport.SampleRange {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	return tv.visible
}

// PanSamples shifts the visible range and reports a user gesture. The
// view redraws immediately from the resident buffer; missing regions
// stay blank until the loader catches up.
func (tv *TraceView) PanSamples(delta int64) {
	tv.mu.Lock()
	v := tv.visible
	window := v.Len()
	v.Start += delta
	v.End += delta
	if v.Start < 0 {
		v.Start = 0
		v.End = window
	}
	if tv.totalSamples > 0 && v.End > tv.totalSamples {
		v.End = tv.totalSamples
		v.Start = v.End - window
		if v.Start < 0 {
			v.Start = 0
		}
	}
	tv.visible = v
	rate := tv.samplingRate
	tv.mu.Unlock()

	tv.emitUserRange(v, rate)
	tv.raster.Refresh()
}

// Zoom scales the visible window around its center. factor > 1 widens
// the window (zoom out).
func (tv *TraceView) Zoom(factor float64) {
	tv.mu.Lock()
	v := tv.visible
	rate := tv.samplingRate
	center := float64(v.Start+v.End) / 2
	window := float64(v.Len()) * factor
	if window < minWindowSecs*rate {
		window = minWindowSecs * rate
	}
	if window > maxWindowSecs*rate {
		window = maxWindowSecs * rate
	}
	v.Start = int64(center - window/2)
	v.End = int64(center + window/2)
	if v.Start < 0 {
		v.End -= v.Start
		v.Start = 0
	}
	if tv.totalSamples > 0 && v.End > tv.totalSamples {
		v.End = tv.totalSamples
		if v.Start >= v.End {
			v.Start = 0
		}
	}
	tv.visible = v
	tv.mu.Unlock()

	tv.emitUserRange(v, rate)
	tv.raster.Refresh()
}

// ZoomIn narrows the visible window.
func (tv *TraceView) ZoomIn() { tv.Zoom(1 / zoomStep) }

// ZoomOut widens the visible window.
func (tv *TraceView) ZoomOut() { tv.Zoom(zoomStep) }

// ZoomToFull shows the whole recording.
func (tv *TraceView) ZoomToFull() {
	tv.mu.Lock()
	total := tv.totalSamples
	rate := tv.samplingRate
	if total <= 0 {
		tv.mu.Unlock()
		return
	}
	v := viewport.SampleRange{Start: 0, End: total}
	tv.visible = v
	tv.mu.Unlock()

	tv.emitUserRange(v, rate)
	tv.raster.Refresh()
}

func (tv *TraceView) emitUserRange(v viewport.SampleRange, rate float64) {
	if tv.onRangeChange != nil {
		tv.onRangeChange(float64(v.Start)/rate, float64(v.End)/rate, viewport.UserInitiated)
	}
}

// CreateRenderer implements fyne.Widget.
func (tv *TraceView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(tv.content)
}

// samplesPerPixel converts a horizontal pixel distance into samples for
// the current window and widget width.
func (tv *TraceView) samplesPerPixel() float64 {
	tv.mu.Lock()
	defer tv.mu.Unlock()
	w := float64(tv.content.Size().Width)
	if w <= 0 {
		w = 640
	}
	return float64(tv.visible.Len()) / w
}

// draw rasterizes the current view.
func (tv *TraceView) draw(w, h int) image.Image {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(out, palette.Background)
	if w == 0 || h == 0 {
		return out
	}

	tv.mu.Lock()
	buf := tv.buf
	loaded := tv.loaded
	visible := tv.visible
	rate := tv.samplingRate
	gains := tv.gains
	labels := tv.labels
	tv.mu.Unlock()

	startSec := float64(visible.Start) / rate
	endSec := float64(visible.End) / rate
	drawGrid(out, startSec, endSec, w, h)

	if buf == nil || buf.Rows() == 0 || visible.Empty() {
		return out
	}

	plan := render.PlanView(visible, loaded, rate)
	plotted := plan.Apply(buf)
	stacked := render.Stack(plotted, gains)

	drawTraces(out, stacked, plan, startSec, endSec, rate, w, h)
	drawChannelLabels(out, labels, len(stacked.Series), stacked.Spacing, h)
	return out
}

// gestureArea wraps the raster to receive drag and scroll events.
type gestureArea struct {
	widget.BaseWidget
	view   *TraceView
	raster *fynecanvas.Raster
}

func newGestureArea(view *TraceView, raster *fynecanvas.Raster) *gestureArea {
	ga := &gestureArea{view: view, raster: raster}
	ga.ExtendBaseWidget(ga)
	return ga
}

func (ga *gestureArea) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(ga.raster)
}

func (ga *gestureArea) MinSize() fyne.Size {
	return ga.raster.MinSize()
}

// Dragged pans the view horizontally. Dragging right moves the window
// earlier in time.
func (ga *gestureArea) Dragged(ev *fyne.DragEvent) {
	spp := ga.view.samplesPerPixel()
	ga.view.PanSamples(int64(float64(-ev.Dragged.DX) * spp))
}

func (ga *gestureArea) DragEnd() {}

// Scrolled zooms around the window center.
func (ga *gestureArea) Scrolled(ev *fyne.ScrollEvent) {
	if ev.Scrolled.DY > 0 {
		ga.view.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		ga.view.ZoomOut()
	}
}
