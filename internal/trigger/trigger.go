// Package trigger finds threshold crossings in a single channel, so the
// UI can jump between events (spikes, stimulation artifacts) instead of
// panning blindly.
package trigger

import (
	"fmt"

	"eeg-scope/internal/recording"
)

// Edge selects which crossings are reported.
type Edge int

const (
	// Rising reports samples where the signal crosses the threshold
	// upward.
	Rising Edge = iota
	// Falling reports downward crossings.
	Falling
	// Either reports both.
	Either
)

func (e Edge) String() string {
	switch e {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	case Either:
		return "either"
	default:
		return "unknown"
	}
}

// Config describes one detection pass.
type Config struct {
	Channel   int
	Threshold float64
	Edge      Edge
	// RefractorySamples suppresses further events for this many samples
	// after each event, so one oscillatory crossing counts once.
	RefractorySamples int64
}

// Event is one detected crossing.
type Event struct {
	Sample int64 // absolute sample index
	Value  float64
	Rising bool
}

// Detect scans a buffer for threshold crossings. firstSample is the
// absolute index of the buffer's first row, so returned events address
// the whole recording.
func Detect(buf *recording.Buffer, firstSample int64, cfg Config) ([]Event, error) {
	if cfg.Channel < 0 || cfg.Channel >= buf.Channels {
		return nil, fmt.Errorf("channel %d out of range (buffer has %d)", cfg.Channel, buf.Channels)
	}
	if cfg.RefractorySamples < 0 {
		return nil, fmt.Errorf("negative refractory period %d", cfg.RefractorySamples)
	}
	if buf.Rows() < 2 {
		return nil, nil
	}

	var events []Event
	nextAllowed := int64(-1)
	prev := float64(buf.At(0, cfg.Channel))
	for i := 1; i < buf.Rows(); i++ {
		cur := float64(buf.At(i, cfg.Channel))
		sample := firstSample + int64(i)

		rising := prev < cfg.Threshold && cur >= cfg.Threshold
		falling := prev > cfg.Threshold && cur <= cfg.Threshold
		prev = cur

		var hit bool
		switch cfg.Edge {
		case Rising:
			hit = rising
		case Falling:
			hit = falling
		case Either:
			hit = rising || falling
		}
		if !hit || sample < nextAllowed {
			continue
		}

		events = append(events, Event{Sample: sample, Value: cur, Rising: rising})
		nextAllowed = sample + cfg.RefractorySamples
	}
	return events, nil
}

// Next returns the first event strictly after sample, or nil.
func Next(events []Event, sample int64) *Event {
	for i := range events {
		if events[i].Sample > sample {
			return &events[i]
		}
	}
	return nil
}

// Prev returns the last event strictly before sample, or nil.
func Prev(events []Event, sample int64) *Event {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Sample < sample {
			return &events[i]
		}
	}
	return nil
}
