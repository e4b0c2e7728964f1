// Package app provides application lifecycle management, session state, and events.
package app

import (
	"fmt"
	"sync"

	"eeg-scope/internal/dsp"
	"eeg-scope/internal/recording"
	"eeg-scope/internal/viewport"
)

// DefaultGain is the y-scale applied to channels without an override.
const DefaultGain = 1.0

// State holds the application state: the open recording, its viewport
// loader, display settings, and the session bookkeeping. The GUI layer
// holds one State and drives everything through it, so the core stays
// testable without any widget toolkit.
type State struct {
	mu sync.RWMutex

	// Session
	SessionPath string
	SessionID   string
	Modified    bool

	// Recording
	Recording *recording.Recording
	Loader    *viewport.Loader

	// Display
	BaseGain float64
	gains    map[int]float64 // per-channel override, keyed by channel index

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	EventRecordingOpened EventType = iota
	EventRecordingClosed
	EventSessionLoaded
	EventSessionSaved
	EventSelectionChanged
	EventProcessingChanged
	EventFiltersChanged
	EventGainChanged
	EventViewUpdated
	EventModified
	EventStatus
	EventTriggersDetected
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state.
func NewState() *State {
	return &State{
		BaseGain:  DefaultGain,
		gains:     make(map[int]float64),
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the session as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	s.Modified = modified
	s.mu.Unlock()
	s.Emit(EventModified, modified)
}

// OpenRecording opens a recording and builds a fresh loader over it with
// an initial selection. numChannels 0 lets the channel count be inferred
// from the sidecars or the file size. samplingRate 0 keeps the rate from
// the timestamp sidecar or the default. A nil selection selects the first
// channel.
func (s *State) OpenRecording(path string, numChannels int, samplingRate float64, selection []int) error {
	rec, err := recording.Open(path, numChannels)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	rec.SetSamplingRate(samplingRate)
	if len(selection) == 0 {
		selection = []int{0}
	}
	loader := viewport.NewLoader(rec, selection)
	loader.OnUpdate(func(u viewport.Update) { s.Emit(EventViewUpdated, u) })
	loader.OnStatus(func(msg string) { s.Emit(EventStatus, msg) })

	s.mu.Lock()
	if s.Recording != nil {
		s.Recording.Close()
	}
	s.Recording = rec
	s.Loader = loader
	s.gains = make(map[int]float64)
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventRecordingOpened, rec)
	return nil
}

// CloseRecording closes the open recording and drops the loader.
func (s *State) CloseRecording() {
	s.mu.Lock()
	rec := s.Recording
	s.Recording = nil
	s.Loader = nil
	s.mu.Unlock()

	if rec != nil {
		rec.Close()
		s.Emit(EventRecordingClosed, rec.Path())
	}
}

// SetSelection changes the displayed channels.
func (s *State) SetSelection(channels []int) {
	s.mu.RLock()
	loader := s.Loader
	s.mu.RUnlock()
	if loader == nil {
		return
	}
	loader.SetSelection(channels)
	s.SetModified(true)
	s.Emit(EventSelectionChanged, channels)
}

// SetProcessing changes the processing options and reapplies them.
func (s *State) SetProcessing(opts dsp.Options) error {
	s.mu.RLock()
	loader := s.Loader
	s.mu.RUnlock()
	if loader == nil {
		return nil
	}
	if err := loader.SetProcessing(opts); err != nil {
		return err
	}
	s.SetModified(true)
	s.Emit(EventProcessingChanged, opts)
	return nil
}

// AppendFilter adds a filter to the chain.
func (s *State) AppendFilter(f dsp.Filter) error {
	s.mu.RLock()
	loader := s.Loader
	s.mu.RUnlock()
	if loader == nil {
		return nil
	}
	if err := loader.AppendFilter(f); err != nil {
		return err
	}
	s.SetModified(true)
	s.Emit(EventFiltersChanged, loader.Chain())
	return nil
}

// ClearFilters drops the filter chain.
func (s *State) ClearFilters() error {
	s.mu.RLock()
	loader := s.Loader
	s.mu.RUnlock()
	if loader == nil {
		return nil
	}
	if err := loader.ClearFilters(); err != nil {
		return err
	}
	s.SetModified(true)
	s.Emit(EventFiltersChanged, dsp.Chain(nil))
	return nil
}

// Gain returns the y-scale for a channel, falling back to the base gain.
func (s *State) Gain(ch int) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gainLocked(ch)
}

func (s *State) gainLocked(ch int) float64 {
	if g, ok := s.gains[ch]; ok {
		return g
	}
	return s.BaseGain
}

// SetGain sets a per-channel y-scale override. A non-positive gain
// removes the override.
func (s *State) SetGain(ch int, gain float64) {
	s.mu.Lock()
	if gain > 0 {
		s.gains[ch] = gain
	} else {
		delete(s.gains, ch)
	}
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventGainChanged, ch)
}

// SetBaseGain sets the default y-scale for channels without an override.
func (s *State) SetBaseGain(gain float64) {
	if gain <= 0 {
		return
	}
	s.mu.Lock()
	s.BaseGain = gain
	s.mu.Unlock()

	s.SetModified(true)
	s.Emit(EventGainChanged, -1)
}

// SelectionGains resolves the gain for every channel in the current
// selection, in display order, for the layout computation.
func (s *State) SelectionGains() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.Loader == nil {
		return nil
	}
	selection := s.Loader.Selection()
	gains := make([]float64, len(selection))
	for i, ch := range selection {
		gains[i] = s.gainLocked(ch)
	}
	return gains
}
