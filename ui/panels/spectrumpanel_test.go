package panels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eeg-scope/internal/dsp"
	"eeg-scope/pkg/palette"
)

func TestSpectrogramImageHighlightsHotCell(t *testing.T) {
	sg := &dsp.Spectrogram{
		Freqs: []float64{0, 10, 20, 30},
		Times: []float64{0.5, 1.5},
		Power: [][]float64{
			{1e-9, 1e-9, 1e-9, 1e-9},
			{1e-9, 1e-9, 50, 1e-9},
		},
	}
	img := spectrogramImage(sg, 8, 8)
	require.NotNil(t, img)

	// Hot cell: second time window, third frequency bin. Frequency rows
	// run bottom-up, so bin 2 of 4 lands in the upper middle rows.
	hot := img.RGBAAt(6, 3)
	cold := img.RGBAAt(1, 6)
	assert.NotEqual(t, cold, hot)
	assert.Greater(t, int(hot.R), int(cold.R))
}

func TestSpectrogramImageEmptyInput(t *testing.T) {
	img := spectrogramImage(nil, 4, 4)
	require.NotNil(t, img)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, palette.Background, img.RGBAAt(x, y))
		}
	}

	img = spectrogramImage(&dsp.Spectrogram{}, 4, 4)
	assert.Equal(t, palette.Background, img.RGBAAt(0, 0))
}

func TestHeatColorClampsRange(t *testing.T) {
	assert.Equal(t, heatColor(0), heatColor(-2))
	assert.Equal(t, heatColor(1), heatColor(5))
	assert.NotEqual(t, heatColor(0), heatColor(1))
}
