package trigger

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eeg-scope/internal/recording"
)

func pulseBuffer(rows int, pulses []int, width int, amp float32) *recording.Buffer {
	buf := recording.NewBuffer(rows, 1)
	for _, p := range pulses {
		for i := p; i < p+width && i < rows; i++ {
			buf.Set(i, 0, amp)
		}
	}
	return buf
}

func TestDetectRisingEdges(t *testing.T) {
	buf := pulseBuffer(1000, []int{100, 400, 800}, 20, 50)

	events, err := Detect(buf, 0, Config{Threshold: 25, Edge: Rising})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(100), events[0].Sample)
	assert.Equal(t, int64(400), events[1].Sample)
	assert.Equal(t, int64(800), events[2].Sample)
	for _, e := range events {
		assert.True(t, e.Rising)
	}
}

func TestDetectFallingEdges(t *testing.T) {
	buf := pulseBuffer(1000, []int{100, 400}, 20, 50)

	events, err := Detect(buf, 0, Config{Threshold: 25, Edge: Falling})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(120), events[0].Sample)
	assert.Equal(t, int64(420), events[1].Sample)
	for _, e := range events {
		assert.False(t, e.Rising)
	}
}

func TestDetectEitherEdge(t *testing.T) {
	buf := pulseBuffer(1000, []int{100}, 20, 50)

	events, err := Detect(buf, 0, Config{Threshold: 25, Edge: Either})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Rising)
	assert.False(t, events[1].Rising)
}

func TestRefractorySuppressesRinging(t *testing.T) {
	// A 40 Hz oscillation crosses the threshold every cycle; with a
	// refractory period longer than the burst, only its onset counts.
	buf := recording.NewBuffer(1000, 1)
	for i := 200; i < 400; i++ {
		buf.Set(i, 0, float32(60*math.Sin(2*math.Pi*float64(i-200)/25)))
	}

	noRefractory, err := Detect(buf, 0, Config{Threshold: 30, Edge: Rising})
	require.NoError(t, err)
	assert.Greater(t, len(noRefractory), 1)

	events, err := Detect(buf, 0, Config{Threshold: 30, Edge: Rising, RefractorySamples: 500})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, noRefractory[0].Sample, events[0].Sample)
}

func TestDetectUsesAbsoluteIndices(t *testing.T) {
	buf := pulseBuffer(500, []int{50}, 10, 50)

	events, err := Detect(buf, 7000, Config{Threshold: 25, Edge: Rising})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(7050), events[0].Sample)
}

func TestDetectValidation(t *testing.T) {
	buf := recording.NewBuffer(10, 2)

	_, err := Detect(buf, 0, Config{Channel: 5})
	assert.Error(t, err)

	_, err = Detect(buf, 0, Config{Channel: 0, RefractorySamples: -1})
	assert.Error(t, err)
}

func TestDetectEmptyBuffer(t *testing.T) {
	events, err := Detect(recording.NewBuffer(0, 1), 0, Config{Edge: Rising})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestNextPrev(t *testing.T) {
	events := []Event{{Sample: 100}, {Sample: 400}, {Sample: 800}}

	next := Next(events, 100)
	require.NotNil(t, next)
	assert.Equal(t, int64(400), next.Sample)

	prev := Prev(events, 400)
	require.NotNil(t, prev)
	assert.Equal(t, int64(100), prev.Sample)

	assert.Nil(t, Next(events, 800))
	assert.Nil(t, Prev(events, 100))
}
