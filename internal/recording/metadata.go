package recording

import (
	"errors"
	"log"
	"os"
	"path/filepath"
)

// DefaultSamplingRate is assumed when no timestamp sidecar is available.
const DefaultSamplingRate = 200.0

// Sidecar file names, written by the acquisition system next to the
// recording itself.
const (
	timestampsFile    = "timestamps.npy"
	sampleNumbersFile = "sample_numbers.npy"
)

// Metadata holds the optional per-sample sidecar arrays. Either slice may
// be nil when the corresponding file is missing or unreadable; all users
// degrade gracefully.
type Metadata struct {
	Timestamps    []float64
	SampleNumbers []int64
}

// loadMetadata reads the sidecar files from the recording's directory.
// Missing files are normal; unreadable files are logged and skipped.
func loadMetadata(recPath string) *Metadata {
	dir := filepath.Dir(recPath)
	m := &Metadata{}

	ts, err := readNpyFloat64(filepath.Join(dir, timestampsFile))
	switch {
	case err == nil:
		m.Timestamps = ts
	case !errors.Is(err, os.ErrNotExist):
		log.Printf("recording: could not load %s: %v", timestampsFile, err)
	}

	sn, err := readNpyInt64(filepath.Join(dir, sampleNumbersFile))
	switch {
	case err == nil:
		m.SampleNumbers = sn
	case !errors.Is(err, os.ErrNotExist):
		log.Printf("recording: could not load %s: %v", sampleNumbersFile, err)
	}

	if m.Timestamps != nil && m.SampleNumbers != nil && len(m.Timestamps) != len(m.SampleNumbers) {
		log.Printf("recording: sidecar mismatch: %d timestamps vs %d sample numbers",
			len(m.Timestamps), len(m.SampleNumbers))
	}
	return m
}

// checkLength warns when sidecar lengths disagree with the frame count
// derived from the file size.
func (m *Metadata) checkLength(numSamples int64) {
	if n := len(m.Timestamps); n > 0 && int64(n) != numSamples {
		log.Printf("recording: %d timestamps for %d samples", n, numSamples)
	}
	if n := len(m.SampleNumbers); n > 0 && int64(n) != numSamples {
		log.Printf("recording: %d sample numbers for %d samples", n, numSamples)
	}
}

// HasTimestamps reports whether a usable timestamp sidecar was loaded.
func (m *Metadata) HasTimestamps() bool {
	return len(m.Timestamps) > 1
}

// SamplingRate derives the sampling rate as the reciprocal of the mean
// timestamp interval, or DefaultSamplingRate without usable timestamps.
func (m *Metadata) SamplingRate() float64 {
	if !m.HasTimestamps() {
		return DefaultSamplingRate
	}
	n := len(m.Timestamps)
	span := m.Timestamps[n-1] - m.Timestamps[0]
	if span <= 0 {
		return DefaultSamplingRate
	}
	return float64(n-1) / span
}

// DurationSeconds returns the recorded wall-clock span, or zero without
// usable timestamps.
func (m *Metadata) DurationSeconds() float64 {
	if !m.HasTimestamps() {
		return 0
	}
	return m.Timestamps[len(m.Timestamps)-1] - m.Timestamps[0]
}
