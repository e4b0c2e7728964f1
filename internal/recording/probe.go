package recording

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChannelStats summarizes one channel over a probe window.
type ChannelStats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// PeakToPeak returns the amplitude range of the probed window.
func (s ChannelStats) PeakToPeak() float64 {
	return s.Max - s.Min
}

// ProbeResult describes the recording's layout and per-channel statistics
// over a short window read from the start of the file.
type ProbeResult struct {
	NumChannels    int
	NumSamples     int64
	SamplesProbed  int
	BytesPerSample int
	Channels       []ChannelStats
}

// Probe reads the first numSamples frames and computes per-channel
// statistics. It is a cheap sanity check that the assumed channel layout
// matches the data: a wrong layout shows up as wildly implausible ranges.
func (r *Recording) Probe(numSamples int) (*ProbeResult, error) {
	if numSamples <= 0 {
		return nil, fmt.Errorf("%w: probe window %d", ErrRange, numSamples)
	}
	if int64(numSamples) > r.numSamples {
		numSamples = int(r.numSamples)
	}

	buf, err := r.LoadAllChannels(0, int64(numSamples))
	if err != nil {
		return nil, err
	}

	res := &ProbeResult{
		NumChannels:    r.numChannels,
		NumSamples:     r.numSamples,
		SamplesProbed:  buf.Rows(),
		BytesPerSample: BytesPerSample,
		Channels:       make([]ChannelStats, r.numChannels),
	}

	col := make([]float64, 0, buf.Rows())
	for ch := 0; ch < r.numChannels; ch++ {
		col = buf.Column(ch, col)
		res.Channels[ch] = ChannelStats{
			Mean:   stat.Mean(col, nil),
			StdDev: stat.StdDev(col, nil),
			Min:    floats.Min(col),
			Max:    floats.Max(col),
		}
	}
	return res, nil
}
