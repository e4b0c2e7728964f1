package traceview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eeg-scope/internal/viewport"
	"eeg-scope/pkg/palette"
)

func TestOverviewImageEmpty(t *testing.T) {
	img := overviewImage(nil, 0, viewport.SampleRange{}, nil, 100, 40)
	require.NotNil(t, img)
	for x := 0; x < 100; x += 10 {
		assert.Equal(t, palette.Background, img.RGBAAt(x, 20))
	}
}

func TestOverviewImageWaveform(t *testing.T) {
	samples := make([]float32, 200)
	for i := range samples {
		if i%2 == 0 {
			samples[i] = -100
		} else {
			samples[i] = 100
		}
	}
	img := overviewImage(samples, 10_000, viewport.SampleRange{}, nil, 100, 40)

	// Alternating extremes span every column top to bottom.
	wave := palette.Dim(palette.Trace(0), 0.7)
	assert.Equal(t, wave, img.RGBAAt(50, 0))
	assert.Equal(t, wave, img.RGBAAt(50, 39))
}

func TestOverviewImageRangeIndicator(t *testing.T) {
	samples := make([]float32, 100)
	visible := viewport.SampleRange{Start: 2500, End: 5000}
	img := overviewImage(samples, 10_000, visible, nil, 100, 40)

	// Edges of the visible window land at 25% and 50% of the width.
	assert.Equal(t, palette.Cursor, img.RGBAAt(25, 20))
	assert.Equal(t, palette.Cursor, img.RGBAAt(50, 20))
	// Top border runs between them.
	assert.Equal(t, palette.Cursor, img.RGBAAt(37, 0))
	// Outside the window there is no indicator at mid-height.
	assert.NotEqual(t, palette.Cursor, img.RGBAAt(10, 20))
}

func TestOverviewImageMarkers(t *testing.T) {
	img := overviewImage(nil, 10_000, viewport.SampleRange{}, []int64{5000}, 100, 42)

	assert.Equal(t, palette.Marker, img.RGBAAt(50, 0))
	assert.Equal(t, palette.Marker, img.RGBAAt(50, 10))
	// Ticks stop in the upper third.
	assert.Equal(t, palette.Background, img.RGBAAt(50, 30))

	// Out-of-range markers are skipped, not drawn at the edge.
	img = overviewImage(nil, 10_000, viewport.SampleRange{}, []int64{20_000}, 100, 42)
	assert.Equal(t, palette.Background, img.RGBAAt(99, 0))
}
