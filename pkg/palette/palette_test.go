package palette

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceCyclesBaseColors(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, Trace(0))
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 0, A: 255}, Trace(1))
}

func TestTraceExtendsBeyondBaseSet(t *testing.T) {
	seen := map[color.RGBA]bool{}
	for i := 0; i < 24; i++ {
		c := Trace(i)
		assert.Equal(t, uint8(255), c.A)
		seen[c] = true
	}
	// Spaced hues keep generated colors distinct.
	assert.GreaterOrEqual(t, len(seen), 20)
}

func TestTraceNegativeIndex(t *testing.T) {
	assert.Equal(t, Trace(0), Trace(-3))
}

func TestFromHSVPrimaries(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 0, A: 255}, FromHSV(0, 1, 1))
	assert.Equal(t, color.RGBA{R: 0, G: 255, B: 0, A: 255}, FromHSV(120, 1, 1))
	assert.Equal(t, color.RGBA{R: 0, G: 0, B: 255, A: 255}, FromHSV(240, 1, 1))
}

func TestDim(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	d := Dim(c, 0.5)
	assert.Equal(t, uint8(100), d.R)
	assert.Equal(t, uint8(50), d.G)
	assert.Equal(t, uint8(25), d.B)
	assert.Equal(t, uint8(255), d.A)

	assert.Equal(t, color.RGBA{A: 255}, Dim(c, -1))
}
