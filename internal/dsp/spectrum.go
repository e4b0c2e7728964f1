package dsp

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PSD is a one-sided Welch power spectral density estimate.
type PSD struct {
	Freqs []float64 // Hz
	Power []float64 // signal units squared per Hz
}

// Spectrogram is a short-time power spectrum: Power[t][f] for window
// start times Times[t] and frequency bins Freqs[f].
type Spectrogram struct {
	Freqs []float64 // Hz
	Times []float64 // seconds, window centers
	Power [][]float64
}

// Welch estimates the PSD of x with Hann-windowed segments of segLen
// samples and 50% overlap.
func Welch(x []float64, fs float64, segLen int) (*PSD, error) {
	if segLen < 8 || len(x) < segLen {
		return nil, fmt.Errorf("welch: need at least %d samples, have %d", segLen, len(x))
	}

	fft := fourier.NewFFT(segLen)
	bins := segLen/2 + 1
	psd := &PSD{
		Freqs: make([]float64, bins),
		Power: make([]float64, bins),
	}
	for i := range psd.Freqs {
		psd.Freqs[i] = fft.Freq(i) * fs
	}

	// Hann normalization factor: sum of squared window values.
	win := window.Hann(ones(segLen))
	var winPower float64
	for _, w := range win {
		winPower += w * w
	}

	seg := make([]float64, segLen)
	coeffs := make([]complex128, bins)
	step := segLen / 2
	count := 0
	for start := 0; start+segLen <= len(x); start += step {
		copy(seg, x[start:start+segLen])
		detrend(seg)
		window.Hann(seg)
		fft.Coefficients(coeffs, seg)
		for i, c := range coeffs {
			p := cmplx.Abs(c)
			p = p * p / (fs * winPower)
			if i != 0 && i != bins-1 {
				p *= 2 // fold negative frequencies
			}
			psd.Power[i] += p
		}
		count++
	}
	for i := range psd.Power {
		psd.Power[i] /= float64(count)
	}
	return psd, nil
}

// STFT computes a short-time power spectrogram with Hann windows of
// segLen samples and 50% overlap. t0 offsets the reported times, so the
// axis matches the absolute position of x within the recording.
func STFT(x []float64, fs float64, segLen int, t0 float64) (*Spectrogram, error) {
	if segLen < 8 || len(x) < segLen {
		return nil, fmt.Errorf("stft: need at least %d samples, have %d", segLen, len(x))
	}

	fft := fourier.NewFFT(segLen)
	bins := segLen/2 + 1
	sg := &Spectrogram{
		Freqs: make([]float64, bins),
	}
	for i := range sg.Freqs {
		sg.Freqs[i] = fft.Freq(i) * fs
	}

	seg := make([]float64, segLen)
	coeffs := make([]complex128, bins)
	step := segLen / 2
	for start := 0; start+segLen <= len(x); start += step {
		copy(seg, x[start:start+segLen])
		detrend(seg)
		window.Hann(seg)
		fft.Coefficients(coeffs, seg)

		row := make([]float64, bins)
		for i, c := range coeffs {
			a := cmplx.Abs(c)
			row[i] = a * a
		}
		sg.Power = append(sg.Power, row)
		sg.Times = append(sg.Times, t0+(float64(start)+float64(segLen)/2)/fs)
	}
	return sg, nil
}

// detrend removes the segment mean so spectral leakage from DC does not
// swamp the low bins.
func detrend(x []float64) {
	floats.AddConst(-stat.Mean(x, nil), x)
}

// ones returns a slice of n ones, used to materialize window shapes.
func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
