package traceview

import (
	"fmt"
	"image"
	"image/color"

	"eeg-scope/internal/render"
	"eeg-scope/pkg/palette"
)

// glyphs contains 3x5 pixel patterns for the characters the axis and
// channel labels use. Each glyph is 5 rows of 3 bits.
var glyphs = map[rune][5]uint8{
	'0': {0b111, 0b101, 0b101, 0b101, 0b111},
	'1': {0b010, 0b110, 0b010, 0b010, 0b111},
	'2': {0b111, 0b001, 0b111, 0b100, 0b111},
	'3': {0b111, 0b001, 0b111, 0b001, 0b111},
	'4': {0b101, 0b101, 0b111, 0b001, 0b001},
	'5': {0b111, 0b100, 0b111, 0b001, 0b111},
	'6': {0b111, 0b100, 0b111, 0b101, 0b111},
	'7': {0b111, 0b001, 0b001, 0b001, 0b001},
	'8': {0b111, 0b101, 0b111, 0b101, 0b111},
	'9': {0b111, 0b101, 0b111, 0b001, 0b111},
	'C': {0b011, 0b100, 0b100, 0b100, 0b011},
	'H': {0b101, 0b101, 0b111, 0b101, 0b101},
	'S': {0b011, 0b100, 0b010, 0b001, 0b110},
	'.': {0b000, 0b000, 0b000, 0b000, 0b010},
	'-': {0b000, 0b000, 0b111, 0b000, 0b000},
	':': {0b000, 0b010, 0b000, 0b010, 0b000},
	' ': {0b000, 0b000, 0b000, 0b000, 0b000},
}

const (
	glyphWidth  = 3
	glyphHeight = 5
	glyphScale  = 2
	labelMargin = 4
)

// drawText renders a label at (x, y) using the scaled pixel font.
func drawText(out *image.RGBA, text string, x, y int, col color.RGBA) {
	bounds := out.Bounds()
	for _, ch := range text {
		pattern, ok := glyphs[ch]
		if !ok {
			pattern = glyphs[' ']
		}
		for row := 0; row < glyphHeight; row++ {
			for bit := 0; bit < glyphWidth; bit++ {
				if pattern[row]&(1<<(glyphWidth-1-bit)) == 0 {
					continue
				}
				for dy := 0; dy < glyphScale; dy++ {
					for dx := 0; dx < glyphScale; dx++ {
						px := x + bit*glyphScale + dx
						py := y + row*glyphScale + dy
						if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
							out.Set(px, py, col)
						}
					}
				}
			}
		}
		x += (glyphWidth + 1) * glyphScale
	}
}

// drawSegment draws a line between two points, clipped to the image.
func drawSegment(out *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := out.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)
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

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// fill paints the whole image with a color.
func fill(out *image.RGBA, col color.RGBA) {
	bounds := out.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out.SetRGBA(x, y, col)
		}
	}
}

// drawGrid draws vertical time gridlines and their second labels. The
// tick interval grows with the visible duration so labels never crowd.
func drawGrid(out *image.RGBA, startSec, endSec float64, w, h int) {
	span := endSec - startSec
	if span <= 0 {
		return
	}
	step := gridStep(span)
	first := float64(int(startSec/step)) * step
	if first < startSec {
		first += step
	}
	for t := first; t < endSec; t += step {
		x := int((t - startSec) / span * float64(w))
		drawSegment(out, x, 0, x, h-1, palette.Grid)
		drawText(out, fmt.Sprintf("%.1fS", t), x+labelMargin, h-glyphHeight*glyphScale-labelMargin, palette.Label)
	}
}

func gridStep(span float64) float64 {
	switch {
	case span <= 2:
		return 0.25
	case span <= 10:
		return 1
	case span <= 60:
		return 5
	case span <= 600:
		return 30
	default:
		return 300
	}
}

// drawTraces rasterizes the stacked series into the image. The stacked
// y range is mapped linearly onto the pixel rows, top channel first.
func drawTraces(out *image.RGBA, stacked render.Stacked, plan render.Plan, startSec, endSec, samplingRate float64, w, h int) {
	if len(stacked.Series) == 0 || stacked.Spacing <= 0 {
		return
	}
	span := endSec - startSec
	if span <= 0 {
		return
	}

	yLow := -stacked.Spacing
	yHigh := float64(len(stacked.Series)-1)*stacked.Spacing + stacked.Spacing
	yScale := float64(h) / (yHigh - yLow)

	for ch, series := range stacked.Series {
		col := palette.Trace(ch)
		prevX, prevY := -1, 0
		for i, v := range series {
			t := float64(plan.SampleAt(i)) / samplingRate
			x := int((t - startSec) / span * float64(w))
			if x < -1 || x > w {
				prevX = -1
				continue
			}
			y := h - 1 - int((v-yLow)*yScale)
			if prevX >= 0 {
				drawSegment(out, prevX, prevY, x, y, col)
			}
			prevX, prevY = x, y
		}
	}
}

// drawChannelLabels writes each channel's name at its baseline.
func drawChannelLabels(out *image.RGBA, labels []string, count int, spacing float64, h int) {
	if count == 0 || spacing <= 0 {
		return
	}
	yLow := -spacing
	yHigh := float64(count-1)*spacing + spacing
	yScale := float64(h) / (yHigh - yLow)

	for ch := 0; ch < count; ch++ {
		name := fmt.Sprintf("CH %d", ch)
		if ch < len(labels) && labels[ch] != "" {
			name = labels[ch]
		}
		y := h - 1 - int((float64(ch)*spacing-yLow)*yScale)
		drawText(out, name, labelMargin, y-glyphHeight*glyphScale/2, palette.Trace(ch))
	}
}
