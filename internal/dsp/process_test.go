package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eeg-scope/internal/recording"
)

// makeBuffer builds a rows x channels buffer from a value function.
func makeBuffer(rows, channels int, value func(s, ch int) float32) *recording.Buffer {
	buf := recording.NewBuffer(rows, channels)
	for s := 0; s < rows; s++ {
		for ch := 0; ch < channels; ch++ {
			buf.Set(s, ch, value(s, ch))
		}
	}
	return buf
}

func TestProcessRemoveDC(t *testing.T) {
	buf := makeBuffer(1000, 2, func(s, ch int) float32 {
		return float32(100*(ch+1)) + float32(math.Sin(float64(s)*0.1))
	})

	Process(buf, Options{RemoveDC: true})

	for ch := 0; ch < 2; ch++ {
		col := buf.Column(ch, nil)
		var mean float64
		for _, v := range col {
			mean += v
		}
		mean /= float64(len(col))
		assert.InDelta(t, 0, mean, 1e-3)
	}
}

func TestProcessNormalizeConstantChannelIsZero(t *testing.T) {
	// A constant channel must come out identically zero, with no NaN or
	// Inf from the zero-variance division.
	buf := makeBuffer(500, 2, func(s, ch int) float32 {
		if ch == 0 {
			return 42
		}
		return float32(s % 7)
	})

	Process(buf, Options{RemoveDC: true, Normalize: true})

	for s := 0; s < buf.Rows(); s++ {
		v := buf.At(s, 0)
		require.False(t, math.IsNaN(float64(v)))
		require.False(t, math.IsInf(float64(v), 0))
		require.Zero(t, v)
	}
}

func TestProcessNormalizeUnitVariance(t *testing.T) {
	buf := makeBuffer(2000, 1, func(s, ch int) float32 {
		return float32(math.Sin(float64(s) * 0.05))
	})

	Process(buf, Options{RemoveDC: true, Normalize: true})

	col := buf.Column(0, nil)
	var sum, sumSq float64
	for _, v := range col {
		sum += v
		sumSq += v * v
	}
	n := float64(len(col))
	mean := sum / n
	variance := sumSq/n - mean*mean
	assert.InDelta(t, 0, mean, 1e-3)
	assert.InDelta(t, 1, variance, 1e-2)
}

func TestProcessAverageReref(t *testing.T) {
	buf := makeBuffer(300, 3, func(s, ch int) float32 {
		return float32(s * (ch + 1))
	})

	Process(buf, Options{Reref: RerefAverage})

	// Each row must now sum to zero.
	for s := 0; s < buf.Rows(); s++ {
		row := buf.Row(s)
		var sum float32
		for _, v := range row {
			sum += v
		}
		assert.InDelta(t, 0, float64(sum), 1e-2)
	}
}

func TestProcessRerefSkipsSingleChannel(t *testing.T) {
	buf := makeBuffer(100, 1, func(s, ch int) float32 { return float32(s) })
	want := buf.Clone()

	Process(buf, Options{Reref: RerefAverage})
	assert.Equal(t, want.Data, buf.Data)
}

func TestRerefModeRoundTrip(t *testing.T) {
	assert.Equal(t, RerefAverage, RerefModeFromString(RerefAverage.String()))
	assert.Equal(t, RerefNone, RerefModeFromString(RerefNone.String()))
	assert.Equal(t, RerefNone, RerefModeFromString("bogus"))
}
