package dsp

import (
	"errors"
	"fmt"
	"math"

	"eeg-scope/internal/recording"
)

// ErrFilter indicates a filter could not be computed for the given
// sampling rate, typically a cutoff at or beyond Nyquist.
var ErrFilter = errors.New("filter computation failed")

// Filter is a frequency-domain filter that can be applied zero-phase to a
// buffer. The set of implementations is closed: Bandpass, Highpass,
// Lowpass, and Notch, each validated at construction.
type Filter interface {
	// Label returns a short human-readable description for status
	// displays and session files.
	Label() string

	// sections compiles the filter into a biquad cascade for the given
	// sampling rate.
	sections(fs float64) ([]biquad, error)
}

// Bandpass passes frequencies between Low and High Hz, realized as a
// Butterworth highpass/lowpass cascade of the given order each.
type Bandpass struct {
	Low, High float64
	Order     int
}

// NewBandpass validates and constructs a bandpass filter.
func NewBandpass(low, high float64, order int) (Bandpass, error) {
	if low <= 0 || high <= low {
		return Bandpass{}, fmt.Errorf("bandpass: need 0 < low < high, got [%g, %g]", low, high)
	}
	if order < 1 {
		return Bandpass{}, fmt.Errorf("bandpass: order must be >= 1, got %d", order)
	}
	return Bandpass{Low: low, High: high, Order: order}, nil
}

// Label implements Filter.
func (f Bandpass) Label() string {
	return fmt.Sprintf("bandpass %g-%g Hz (order %d)", f.Low, f.High, f.Order)
}

func (f Bandpass) sections(fs float64) ([]biquad, error) {
	hp, err := butterworthSections(f.Low, f.Order, fs, highpassBiquad)
	if err != nil {
		return nil, err
	}
	lp, err := butterworthSections(f.High, f.Order, fs, lowpassBiquad)
	if err != nil {
		return nil, err
	}
	return append(hp, lp...), nil
}

// Highpass attenuates frequencies below Cutoff Hz.
type Highpass struct {
	Cutoff float64
	Order  int
}

// NewHighpass validates and constructs a highpass filter.
func NewHighpass(cutoff float64, order int) (Highpass, error) {
	if cutoff <= 0 {
		return Highpass{}, fmt.Errorf("highpass: cutoff must be positive, got %g", cutoff)
	}
	if order < 1 {
		return Highpass{}, fmt.Errorf("highpass: order must be >= 1, got %d", order)
	}
	return Highpass{Cutoff: cutoff, Order: order}, nil
}

// Label implements Filter.
func (f Highpass) Label() string {
	return fmt.Sprintf("highpass %g Hz (order %d)", f.Cutoff, f.Order)
}

func (f Highpass) sections(fs float64) ([]biquad, error) {
	return butterworthSections(f.Cutoff, f.Order, fs, highpassBiquad)
}

// Lowpass attenuates frequencies above Cutoff Hz.
type Lowpass struct {
	Cutoff float64
	Order  int
}

// NewLowpass validates and constructs a lowpass filter.
func NewLowpass(cutoff float64, order int) (Lowpass, error) {
	if cutoff <= 0 {
		return Lowpass{}, fmt.Errorf("lowpass: cutoff must be positive, got %g", cutoff)
	}
	if order < 1 {
		return Lowpass{}, fmt.Errorf("lowpass: order must be >= 1, got %d", order)
	}
	return Lowpass{Cutoff: cutoff, Order: order}, nil
}

// Label implements Filter.
func (f Lowpass) Label() string {
	return fmt.Sprintf("lowpass %g Hz (order %d)", f.Cutoff, f.Order)
}

func (f Lowpass) sections(fs float64) ([]biquad, error) {
	return butterworthSections(f.Cutoff, f.Order, fs, lowpassBiquad)
}

// Notch rejects a narrow band around Freq Hz; Q controls the width.
type Notch struct {
	Freq float64
	Q    float64
}

// NewNotch validates and constructs a notch filter.
func NewNotch(freq, q float64) (Notch, error) {
	if freq <= 0 {
		return Notch{}, fmt.Errorf("notch: frequency must be positive, got %g", freq)
	}
	if q <= 0 {
		return Notch{}, fmt.Errorf("notch: quality must be positive, got %g", q)
	}
	return Notch{Freq: freq, Q: q}, nil
}

// Label implements Filter.
func (f Notch) Label() string {
	return fmt.Sprintf("notch %g Hz (Q %g)", f.Freq, f.Q)
}

func (f Notch) sections(fs float64) ([]biquad, error) {
	if f.Freq >= fs/2 {
		return nil, fmt.Errorf("%w: notch frequency %g Hz at or above Nyquist (%g Hz)", ErrFilter, f.Freq, fs/2)
	}
	return []biquad{notchBiquad(f.Freq, f.Q, fs)}, nil
}

// Apply runs the filter zero-phase (forward then backward) over every
// channel of buf in place. On error the buffer is left untouched.
func Apply(buf *recording.Buffer, f Filter, fs float64) error {
	secs, err := f.sections(fs)
	if err != nil {
		return err
	}

	rows := buf.Rows()
	col := make([]float64, 0, rows)
	for ch := 0; ch < buf.Channels; ch++ {
		col = buf.Column(ch, col)
		filtFilt(secs, col)
		buf.SetColumn(ch, col)
	}
	return nil
}

// butterworthSections compiles an N-th order Butterworth response into
// second-order sections. Odd orders are rounded up to the next even order
// so every section is a conjugate pole pair.
func butterworthSections(cutoff float64, order int, fs float64, design func(fc, q, fs float64) biquad) ([]biquad, error) {
	if cutoff >= fs/2 {
		return nil, fmt.Errorf("%w: cutoff %g Hz at or above Nyquist (%g Hz)", ErrFilter, cutoff, fs/2)
	}
	if order%2 != 0 {
		order++
	}

	secs := make([]biquad, 0, order/2)
	for k := 0; k < order/2; k++ {
		// Pole-pair quality factors of the Butterworth alignment.
		q := 1.0 / (2.0 * math.Cos(math.Pi*float64(2*k+1)/float64(2*order)))
		secs = append(secs, design(cutoff, q, fs))
	}
	return secs, nil
}

// biquad is one second-order IIR section, normalized so a0 == 1.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// newBiquad normalizes raw coefficients by a0.
func newBiquad(b0, b1, b2, a0, a1, a2 float64) biquad {
	inv := 1.0 / a0
	return biquad{
		b0: b0 * inv, b1: b1 * inv, b2: b2 * inv,
		a1: a1 * inv, a2: a2 * inv,
	}
}

// lowpassBiquad designs an RBJ cookbook lowpass section.
func lowpassBiquad(fc, q, fs float64) biquad {
	w0 := 2 * math.Pi * fc / fs
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	return newBiquad(
		(1-cosW)/2, 1-cosW, (1-cosW)/2,
		1+alpha, -2*cosW, 1-alpha,
	)
}

// highpassBiquad designs an RBJ cookbook highpass section.
func highpassBiquad(fc, q, fs float64) biquad {
	w0 := 2 * math.Pi * fc / fs
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	return newBiquad(
		(1+cosW)/2, -(1 + cosW), (1+cosW)/2,
		1+alpha, -2*cosW, 1-alpha,
	)
}

// notchBiquad designs an RBJ cookbook notch section.
func notchBiquad(fc, q, fs float64) biquad {
	w0 := 2 * math.Pi * fc / fs
	cosW := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	return newBiquad(
		1, -2*cosW, 1,
		1+alpha, -2*cosW, 1-alpha,
	)
}

// process runs the section over x in place, direct form I.
func (q biquad) process(x []float64) {
	var x1, x2, y1, y2 float64
	for i, v := range x {
		y := q.b0*v + q.b1*x1 + q.b2*x2 - q.a1*y1 - q.a2*y2
		x2, x1 = x1, v
		y2, y1 = y1, y
		x[i] = y
	}
}

// filtFilt applies the cascade forward and then backward for zero phase
// distortion, matching the forward-backward filtering the offline analysis
// scripts expect.
func filtFilt(secs []biquad, x []float64) {
	for _, s := range secs {
		s.process(x)
	}
	reverse(x)
	for _, s := range secs {
		s.process(x)
	}
	reverse(x)
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
