// Package palette provides the trace colors used by the signal views.
package palette

import (
	"image/color"
	"math"
)

// Base colors chosen for visibility on the dark plot background. Traces
// cycle through these in display order.
var traceColors = []color.RGBA{
	{R: 255, G: 255, B: 255, A: 255}, // white
	{R: 255, G: 0, B: 0, A: 255},     // red
	{R: 0, G: 255, B: 0, A: 255},     // green
	{R: 64, G: 128, B: 255, A: 255},  // blue, lightened for contrast
	{R: 0, G: 255, B: 255, A: 255},   // cyan
	{R: 255, G: 0, B: 255, A: 255},   // magenta
	{R: 255, G: 255, B: 0, A: 255},   // yellow
	{R: 255, G: 165, B: 0, A: 255},   // orange
}

// Common plot chrome colors.
var (
	Background = color.RGBA{R: 10, G: 10, B: 14, A: 255}
	Grid       = color.RGBA{R: 60, G: 60, B: 70, A: 255}
	Cursor     = color.RGBA{R: 255, G: 80, B: 80, A: 255}
	Label      = color.RGBA{R: 200, G: 200, B: 210, A: 255}
	Marker     = color.RGBA{R: 255, G: 200, B: 0, A: 255}
)

// Trace returns the color for a display index. Indexes beyond the base
// set fall back to evenly spaced hues so large montages still separate
// adjacent channels.
func Trace(index int) color.RGBA {
	if index < 0 {
		index = 0
	}
	if index < len(traceColors) {
		return traceColors[index]
	}
	hue := math.Mod(float64(index-len(traceColors))*137.5, 360)
	return FromHSV(hue, 0.7, 1.0)
}

// FromHSV converts hue (degrees), saturation and value (0-1) to RGBA.
func FromHSV(h, s, v float64) color.RGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return color.RGBA{
		R: uint8((r + m) * 255),
		G: uint8((g + m) * 255),
		B: uint8((b + m) * 255),
		A: 255,
	}
}

// Dim returns the color at reduced brightness, for deselected traces.
func Dim(c color.RGBA, factor float64) color.RGBA {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}
