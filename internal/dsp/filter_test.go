package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eeg-scope/internal/recording"
)

// sineBuffer builds a single-channel buffer holding a sum of sines.
func sineBuffer(n int, fs float64, freqs ...float64) *recording.Buffer {
	buf := recording.NewBuffer(n, 1)
	for s := 0; s < n; s++ {
		var v float64
		for _, f := range freqs {
			v += math.Sin(2 * math.Pi * f * float64(s) / fs)
		}
		buf.Set(s, 0, float32(v))
	}
	return buf
}

// middleRMS measures the RMS over the central half of the channel, away
// from forward-backward edge transients.
func middleRMS(buf *recording.Buffer, ch int) float64 {
	col := buf.Column(ch, nil)
	q := len(col) / 4
	col = col[q : len(col)-q]
	var sum float64
	for _, v := range col {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(col)))
}

func TestConstructorValidation(t *testing.T) {
	_, err := NewBandpass(30, 5, 4)
	assert.Error(t, err)
	_, err = NewBandpass(0, 5, 4)
	assert.Error(t, err)
	_, err = NewBandpass(1, 40, 0)
	assert.Error(t, err)
	_, err = NewHighpass(-1, 4)
	assert.Error(t, err)
	_, err = NewLowpass(10, -2)
	assert.Error(t, err)
	_, err = NewNotch(50, 0)
	assert.Error(t, err)

	_, err = NewBandpass(1, 40, 4)
	assert.NoError(t, err)
}

func TestCutoffAboveNyquistFails(t *testing.T) {
	const fs = 200.0
	lp, err := NewLowpass(150, 4)
	require.NoError(t, err)

	buf := sineBuffer(1000, fs, 10)
	want := buf.Clone()
	err = Apply(buf, lp, fs)
	assert.ErrorIs(t, err, ErrFilter)
	// Failed application leaves the buffer untouched.
	assert.Equal(t, want.Data, buf.Data)
}

func TestLowpassAttenuatesHighFrequency(t *testing.T) {
	const fs = 500.0
	buf := sineBuffer(10_000, fs, 60)
	before := middleRMS(buf, 0)

	lp, err := NewLowpass(10, 4)
	require.NoError(t, err)
	require.NoError(t, Apply(buf, lp, fs))

	assert.Less(t, middleRMS(buf, 0), before*0.1)
}

func TestLowpassPassesLowFrequency(t *testing.T) {
	const fs = 500.0
	buf := sineBuffer(10_000, fs, 2)
	before := middleRMS(buf, 0)

	lp, err := NewLowpass(50, 4)
	require.NoError(t, err)
	require.NoError(t, Apply(buf, lp, fs))

	assert.InDelta(t, before, middleRMS(buf, 0), before*0.05)
}

func TestHighpassRemovesOffset(t *testing.T) {
	const fs = 500.0
	buf := sineBuffer(10_000, fs, 30)
	for s := 0; s < buf.Rows(); s++ {
		buf.Set(s, 0, buf.At(s, 0)+500)
	}

	hp, err := NewHighpass(1, 4)
	require.NoError(t, err)
	require.NoError(t, Apply(buf, hp, fs))

	col := buf.Column(0, nil)
	q := len(col) / 4
	var mean float64
	for _, v := range col[q : len(col)-q] {
		mean += v
	}
	mean /= float64(len(col) / 2)
	assert.InDelta(t, 0, mean, 1.0)
}

func TestNotchRejectsLineFrequency(t *testing.T) {
	const fs = 500.0
	buf := sineBuffer(20_000, fs, 60)
	before := middleRMS(buf, 0)

	nf, err := NewNotch(60, 30)
	require.NoError(t, err)
	require.NoError(t, Apply(buf, nf, fs))

	assert.Less(t, middleRMS(buf, 0), before*0.1)
}

func TestBandpassKeepsMidBand(t *testing.T) {
	const fs = 500.0
	// 1 Hz drift + 20 Hz signal + 120 Hz noise; the 20 Hz component
	// should survive a 5-45 Hz bandpass while the others go.
	buf := sineBuffer(20_000, fs, 1, 20, 120)

	bp, err := NewBandpass(5, 45, 4)
	require.NoError(t, err)
	require.NoError(t, Apply(buf, bp, fs))

	// A pure 20 Hz sine of unit amplitude has RMS 1/sqrt(2).
	assert.InDelta(t, 1/math.Sqrt2, middleRMS(buf, 0), 0.1)
}

func TestChainRecordsRoundTrip(t *testing.T) {
	bp, _ := NewBandpass(1, 40, 4)
	hp, _ := NewHighpass(0.5, 2)
	lp, _ := NewLowpass(100, 6)
	nf, _ := NewNotch(50, 30)
	chain := Chain{bp, hp, lp, nf}

	got, err := ChainFromRecords(chain.Records())
	require.NoError(t, err)
	assert.Equal(t, chain, got)
}

func TestChainFromRecordsRejectsBadEntries(t *testing.T) {
	_, err := ChainFromRecords([]FilterRecord{{Type: "comb", Freq: 50}})
	assert.Error(t, err)
	_, err = ChainFromRecords([]FilterRecord{{Type: "bandpass", Low: 40, High: 1, Order: 4}})
	assert.Error(t, err)
}

func TestChainDescribe(t *testing.T) {
	assert.Equal(t, "none", Chain{}.Describe())

	nf, _ := NewNotch(50, 30)
	assert.Contains(t, Chain{nf}.Describe(), "notch 50 Hz")
}
