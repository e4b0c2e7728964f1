package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eeg-scope/internal/recording"
	"eeg-scope/internal/viewport"
)

const rate = 200.0

func rampBuffer(rows, channels int) *recording.Buffer {
	buf := recording.NewBuffer(rows, channels)
	for i := 0; i < rows; i++ {
		for ch := 0; ch < channels; ch++ {
			buf.Set(i, ch, float32(i*channels+ch))
		}
	}
	return buf
}

func TestPlanFullResUnderTwoSeconds(t *testing.T) {
	// 1.5 s visible out of a much larger loaded window.
	visible := viewport.SampleRange{Start: 10_000, End: 10_300}
	loaded := viewport.SampleRange{Start: 5000, End: 25_000}

	p := PlanView(visible, loaded, rate)
	assert.Equal(t, ModeFullRes, p.Mode)
	assert.Equal(t, 1, p.Stride)

	// 10% pad on each side of the 300-sample window.
	assert.Equal(t, int(10_000-30-5000), p.ExtractStart)
	assert.Equal(t, int(10_300+30-5000), p.ExtractEnd)
	assert.Equal(t, int64(9970), p.FirstSample)
}

func TestPlanFullResClampsToLoaded(t *testing.T) {
	visible := viewport.SampleRange{Start: 5010, End: 5210}
	loaded := viewport.SampleRange{Start: 5000, End: 5300}

	p := PlanView(visible, loaded, rate)
	assert.Equal(t, ModeFullRes, p.Mode)
	assert.Equal(t, 0, p.ExtractStart) // pad would reach below the buffer
	assert.Equal(t, 230, p.ExtractEnd)
	assert.Equal(t, int64(5000), p.FirstSample)
}

func TestPlanMediumZoomBudget(t *testing.T) {
	// 5 s visible: ~3.5 points per visible sample, but the 10k floor
	// dominates for a 1000-sample window at 200 Hz.
	visible := viewport.SampleRange{Start: 0, End: 1000}
	loaded := viewport.SampleRange{Start: 0, End: 30_000}

	p := PlanView(visible, loaded, rate)
	assert.Equal(t, ModeDecimated, p.Mode)
	// budget = clamp(3500, 10k, 500k) = 10_000; stride = 30_000/10_000.
	assert.Equal(t, 3, p.Stride)
}

func TestPlanWideZoomBudget(t *testing.T) {
	// 30 s visible = 6000 samples; budget = clamp(12_000, 20k, 200k).
	visible := viewport.SampleRange{Start: 0, End: 6000}
	loaded := viewport.SampleRange{Start: 0, End: 100_000}

	p := PlanView(visible, loaded, rate)
	assert.Equal(t, ModeDecimated, p.Mode)
	assert.Equal(t, 100_000/20_000, p.Stride)
}

func TestPlanVeryWideUsesFlatCap(t *testing.T) {
	// 2000 s visible; flat 100k budget regardless of window size.
	visible := viewport.SampleRange{Start: 0, End: 400_000}
	loaded := viewport.SampleRange{Start: 0, End: 600_000}

	p := PlanView(visible, loaded, rate)
	assert.Equal(t, ModeDecimated, p.Mode)
	assert.Equal(t, 6, p.Stride)
}

func TestPlanNoStrideWhenUnderBudget(t *testing.T) {
	visible := viewport.SampleRange{Start: 0, End: 2000}
	loaded := viewport.SampleRange{Start: 0, End: 3000}

	p := PlanView(visible, loaded, rate)
	assert.Equal(t, ModeDecimated, p.Mode)
	assert.Equal(t, 1, p.Stride)
}

func TestApplyFullResExtractsVisibleSlice(t *testing.T) {
	loaded := viewport.SampleRange{Start: 1000, End: 5000}
	visible := viewport.SampleRange{Start: 2000, End: 2200}
	buf := rampBuffer(int(loaded.Len()), 2)

	p := PlanView(visible, loaded, rate)
	out := p.Apply(buf)

	require.Equal(t, p.ExtractEnd-p.ExtractStart, out.Rows())
	assert.Equal(t, buf.At(p.ExtractStart, 0), out.At(0, 0))
	assert.Equal(t, buf.At(p.ExtractEnd-1, 1), out.At(out.Rows()-1, 1))

	// The original loaded buffer is untouched.
	assert.Equal(t, int(loaded.Len()), buf.Rows())
}

func TestApplyStridedKeepsEveryNth(t *testing.T) {
	buf := rampBuffer(100, 1)
	p := Plan{Mode: ModeDecimated, Stride: 7, FirstSample: 500}

	out := p.Apply(buf)
	require.Equal(t, 15, out.Rows())
	for i := 0; i < out.Rows(); i++ {
		assert.Equal(t, buf.At(i*7, 0), out.At(i, 0))
	}
}

func TestTimeAxis(t *testing.T) {
	p := Plan{Mode: ModeDecimated, Stride: 4, FirstSample: 400}
	axis := p.TimeAxis(3, rate)
	assert.Equal(t, []float64{2.0, 2.02, 2.04}, axis)
}
