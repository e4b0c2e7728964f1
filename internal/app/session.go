package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"eeg-scope/internal/dsp"
	"eeg-scope/internal/viewport"
)

// SessionFile is the on-disk form of a viewing session (.eegsession).
// The recording path is stored relative to the session file so a
// session directory can be moved as a unit.
type SessionFile struct {
	Version  int       `json:"version"`
	ID       string    `json:"id"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	RecordingPath string `json:"recording"`
	NumChannels   int    `json:"num_channels,omitempty"`

	Selection []int `json:"selection,omitempty"`

	VisibleStartSec float64 `json:"visible_start_sec"`
	VisibleEndSec   float64 `json:"visible_end_sec"`

	BaseGain     float64         `json:"base_gain,omitempty"`
	ChannelGains map[int]float64 `json:"channel_gains,omitempty"`

	RemoveDC  bool   `json:"remove_dc"`
	Normalize bool   `json:"normalize"`
	Reref     string `json:"reref,omitempty"`

	Filters []dsp.FilterRecord `json:"filters,omitempty"`
}

// sessionVersion is bumped when the file format changes incompatibly.
const sessionVersion = 1

// SaveSession writes the current session to path.
func (s *State) SaveSession(path string) error {
	s.mu.Lock()
	if s.Loader == nil || s.Recording == nil {
		s.mu.Unlock()
		return fmt.Errorf("no recording open")
	}
	if s.SessionID == "" {
		s.SessionID = uuid.NewString()
	}

	rate := s.Loader.SamplingRate()
	visible := s.Loader.Visible()
	opts := s.Loader.Processing()

	sess := SessionFile{
		Version:         sessionVersion,
		ID:              s.SessionID,
		Created:         time.Now(),
		Modified:        time.Now(),
		NumChannels:     s.Recording.NumChannels(),
		Selection:       s.Loader.Selection(),
		VisibleStartSec: float64(visible.Start) / rate,
		VisibleEndSec:   float64(visible.End) / rate,
		BaseGain:        s.BaseGain,
		RemoveDC:        opts.RemoveDC,
		Normalize:       opts.Normalize,
		Reref:           opts.Reref.String(),
		Filters:         s.Loader.Chain().Records(),
	}
	if len(s.gains) > 0 {
		sess.ChannelGains = make(map[int]float64, len(s.gains))
		for ch, g := range s.gains {
			sess.ChannelGains[ch] = g
		}
	}

	sessionDir := filepath.Dir(path)
	rel, err := filepath.Rel(sessionDir, s.Recording.Path())
	if err != nil {
		rel = s.Recording.Path()
	}
	sess.RecordingPath = rel
	s.mu.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	s.mu.Lock()
	s.SessionPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventSessionSaved, path)
	return nil
}

// LoadSession restores a session: it reopens the recording, restores the
// selection, processing options, filter chain, and gains, and reloads
// the saved visible range.
func (s *State) LoadSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var sess SessionFile
	if err := json.Unmarshal(data, &sess); err != nil {
		return fmt.Errorf("parse session: %w", err)
	}

	// Validate the chain before touching any state.
	chain, err := dsp.ChainFromRecords(sess.Filters)
	if err != nil {
		return fmt.Errorf("restore filters: %w", err)
	}

	recPath := sess.RecordingPath
	if !filepath.IsAbs(recPath) {
		recPath = filepath.Join(filepath.Dir(path), recPath)
	}
	if err := s.OpenRecording(recPath, sess.NumChannels, 0, sess.Selection); err != nil {
		return err
	}

	s.mu.Lock()
	s.SessionID = sess.ID
	if s.SessionID == "" {
		s.SessionID = uuid.NewString()
	}
	if sess.BaseGain > 0 {
		s.BaseGain = sess.BaseGain
	}
	for ch, g := range sess.ChannelGains {
		if g > 0 {
			s.gains[ch] = g
		}
	}
	loader := s.Loader
	s.mu.Unlock()

	opts := dsp.Options{
		RemoveDC:  sess.RemoveDC,
		Normalize: sess.Normalize,
		Reref:     dsp.RerefModeFromString(sess.Reref),
	}
	if err := loader.SetProcessing(opts); err != nil {
		return err
	}
	for _, f := range chain {
		if err := loader.AppendFilter(f); err != nil {
			return err
		}
	}

	rate := loader.SamplingRate()
	visible := viewport.SampleRange{
		Start: int64(sess.VisibleStartSec * rate),
		End:   int64(sess.VisibleEndSec * rate),
	}
	if !visible.Empty() {
		if err := loader.LoadVisible(visible); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.SessionPath = path
	s.Modified = false
	s.mu.Unlock()

	s.Emit(EventSessionLoaded, path)
	return nil
}
