package panels

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"eeg-scope/internal/app"
	"eeg-scope/internal/dsp"
	"eeg-scope/pkg/palette"
)

const welchSegment = 1024

// SpectrumPanel shows the Welch power spectral density or a short-time
// spectrogram of one displayed channel over the currently loaded buffer.
type SpectrumPanel struct {
	state *app.State

	channelSelect *widget.Select
	modeRadio     *widget.RadioGroup
	infoLabel     *widget.Label
	raster        *fynecanvas.Raster
	box           *fyne.Container

	psd *dsp.PSD
	sg  *dsp.Spectrogram
}

// NewSpectrumPanel creates the spectrum panel.
func NewSpectrumPanel(state *app.State) *SpectrumPanel {
	sp := &SpectrumPanel{state: state}

	sp.channelSelect = widget.NewSelect(nil, func(string) { sp.recompute() })
	sp.modeRadio = widget.NewRadioGroup([]string{"psd", "spectrogram"}, func(string) { sp.recompute() })
	sp.modeRadio.Horizontal = true
	sp.modeRadio.Selected = "psd"
	sp.infoLabel = widget.NewLabel("No data")
	sp.raster = fynecanvas.NewRaster(sp.draw)
	sp.raster.SetMinSize(fyne.NewSize(280, 180))

	refresh := widget.NewButton("Compute", sp.recompute)

	sp.box = container.NewBorder(
		container.NewVBox(
			container.NewBorder(nil, nil, widget.NewLabel("Channel"), refresh, sp.channelSelect),
			sp.modeRadio,
			sp.infoLabel,
		),
		nil, nil, nil,
		sp.raster,
	)

	state.On(app.EventSelectionChanged, func(interface{}) { sp.syncChannels() })
	state.On(app.EventRecordingOpened, func(interface{}) { sp.syncChannels() })

	return sp
}

// Container returns the panel container.
func (sp *SpectrumPanel) Container() fyne.CanvasObject {
	return sp.box
}

// syncChannels rebuilds the channel drop-down from the selection.
func (sp *SpectrumPanel) syncChannels() {
	if sp.state.Loader == nil {
		sp.channelSelect.Options = nil
		return
	}
	selection := sp.state.Loader.Selection()
	opts := make([]string, len(selection))
	for i, ch := range selection {
		opts[i] = strconv.Itoa(ch)
	}
	sp.channelSelect.Options = opts
	if len(opts) > 0 {
		sp.channelSelect.SetSelected(opts[0])
	}
	sp.channelSelect.Refresh()
}

// recompute runs the selected analysis over the chosen channel of the
// current buffer.
func (sp *SpectrumPanel) recompute() {
	loader := sp.state.Loader
	if loader == nil {
		return
	}
	buf, loaded := loader.Current()
	if buf == nil {
		sp.infoLabel.SetText("No data")
		return
	}

	display := sp.channelSelect.SelectedIndex()
	if display < 0 || display >= buf.Channels {
		return
	}

	x := buf.Column(display, nil)
	rate := loader.SamplingRate()

	if sp.modeRadio.Selected == "spectrogram" {
		sg, err := dsp.STFT(x, rate, welchSegment, float64(loaded.Start)/rate)
		if err != nil {
			sp.infoLabel.SetText(fmt.Sprintf("Spectrogram: %v", err))
			return
		}
		sp.sg = sg
		sp.infoLabel.SetText(fmt.Sprintf("%d windows x %d bins", len(sg.Times), len(sg.Freqs)))
		sp.raster.Refresh()
		return
	}

	psd, err := dsp.Welch(x, rate, welchSegment)
	if err != nil {
		sp.infoLabel.SetText(fmt.Sprintf("PSD: %v", err))
		return
	}
	sp.psd = psd
	sp.infoLabel.SetText(fmt.Sprintf("%d bins to %.1f Hz", len(psd.Freqs), psd.Freqs[len(psd.Freqs)-1]))
	sp.raster.Refresh()
}

// draw renders the PSD as a log-power line plot, or the spectrogram as
// a heat map.
func (sp *SpectrumPanel) draw(w, h int) image.Image {
	if sp.modeRadio.Selected == "spectrogram" {
		return spectrogramImage(sp.sg, w, h)
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(x, y, palette.Background)
		}
	}
	psd := sp.psd
	if psd == nil || len(psd.Power) < 2 || w == 0 || h == 0 {
		return out
	}

	logPower := make([]float64, len(psd.Power))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, p := range psd.Power {
		lp := math.Log10(p + 1e-12)
		logPower[i] = lp
		if lp < lo {
			lo = lp
		}
		if lp > hi {
			hi = lp
		}
	}
	if hi <= lo {
		return out
	}

	col := palette.Trace(1)
	prevX, prevY := 0, 0
	for i, lp := range logPower {
		x := i * (w - 1) / (len(logPower) - 1)
		y := h - 1 - int((lp-lo)/(hi-lo)*float64(h-1))
		if i > 0 {
			drawPlotSegment(out, prevX, prevY, x, y, col)
		}
		prevX, prevY = x, y
	}
	return out
}

// drawPlotSegment draws a clipped line for the PSD plot.
func drawPlotSegment(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := out.Bounds()
	dx := x2 - x1
	if dx < 0 {
		dx = -dx
	}
	dy := y2 - y1
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy
	for {
		if x1 >= bounds.Min.X && x1 < bounds.Max.X && y1 >= bounds.Min.Y && y1 < bounds.Max.Y {
			out.Set(x1, y1, col)
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// spectrogramImage rasterizes a spectrogram as a time (x) by frequency
// (y, low at the bottom) heat map on a log-power scale.
func spectrogramImage(sg *dsp.Spectrogram, w, h int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetRGBA(x, y, palette.Background)
		}
	}
	if sg == nil || len(sg.Power) == 0 || len(sg.Freqs) == 0 || w == 0 || h == 0 {
		return out
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range sg.Power {
		for _, p := range row {
			lp := math.Log10(p + 1e-12)
			if lp < lo {
				lo = lp
			}
			if lp > hi {
				hi = lp
			}
		}
	}
	if hi <= lo {
		return out
	}

	nt := len(sg.Power)
	nf := len(sg.Freqs)
	for x := 0; x < w; x++ {
		row := sg.Power[x*nt/w]
		for y := 0; y < h; y++ {
			bin := (h - 1 - y) * nf / h
			v := (math.Log10(row[bin]+1e-12) - lo) / (hi - lo)
			out.SetRGBA(x, y, heatColor(v))
		}
	}
	return out
}

// heatColor maps normalized power to a blue-to-red ramp.
func heatColor(v float64) color.RGBA {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return palette.FromHSV(240-240*v, 1, 0.15+0.85*v)
}
