package app

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eeg-scope/internal/dsp"
	"eeg-scope/internal/recording"
	"eeg-scope/internal/viewport"
)

func writeRecording(t *testing.T, dir string, channels int, samples int64) string {
	t.Helper()
	raw := make([]byte, samples*int64(channels)*recording.BytesPerSample)
	for s := int64(0); s < samples; s++ {
		for ch := 0; ch < channels; ch++ {
			off := (s*int64(channels) + int64(ch)) * recording.BytesPerSample
			binary.LittleEndian.PutUint16(raw[off:], uint16(int16((s+int64(ch)*100)%2000)))
		}
	}
	path := filepath.Join(dir, "continuous.dat")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestSessionRoundTrip(t *testing.T) {
	dir := t.TempDir()
	recPath := writeRecording(t, dir, 8, 50_000)

	s := NewState()
	require.NoError(t, s.OpenRecording(recPath, 8, 0, []int{1, 5, 3}))
	t.Cleanup(s.CloseRecording)

	require.NoError(t, s.SetProcessing(dsp.Options{RemoveDC: true, Reref: dsp.RerefAverage}))
	notch, err := dsp.NewNotch(60, 30)
	require.NoError(t, err)
	require.NoError(t, s.AppendFilter(notch))
	s.SetGain(5, 4.0)
	s.SetBaseGain(2.0)
	require.NoError(t, s.Loader.LoadVisible(viewport.SampleRange{Start: 10_000, End: 12_000}))

	sessPath := filepath.Join(dir, "view.eegsession")
	require.NoError(t, s.SaveSession(sessPath))
	assert.False(t, s.Modified)
	assert.NotEmpty(t, s.SessionID)

	restored := NewState()
	require.NoError(t, restored.LoadSession(sessPath))
	t.Cleanup(restored.CloseRecording)

	assert.Equal(t, s.SessionID, restored.SessionID)
	assert.Equal(t, []int{1, 5, 3}, restored.Loader.Selection())
	assert.Equal(t, 8, restored.Recording.NumChannels())

	opts := restored.Loader.Processing()
	assert.True(t, opts.RemoveDC)
	assert.Equal(t, dsp.RerefAverage, opts.Reref)

	chain := restored.Loader.Chain()
	require.Len(t, chain, 1)
	assert.Equal(t, notch.Label(), chain[0].Label())

	assert.Equal(t, 2.0, restored.BaseGain)
	assert.Equal(t, 4.0, restored.Gain(5))
	assert.Equal(t, 2.0, restored.Gain(1))

	// The saved visible range is reloaded on restore.
	assert.Equal(t, viewport.SampleRange{Start: 10_000, End: 12_000}, restored.Loader.Visible())
	buf, loaded := restored.Loader.Current()
	require.NotNil(t, buf)
	assert.True(t, loaded.Contains(restored.Loader.Visible()))
}

func TestSessionRecordingPathIsRelative(t *testing.T) {
	dir := t.TempDir()
	recPath := writeRecording(t, dir, 4, 10_000)

	s := NewState()
	require.NoError(t, s.OpenRecording(recPath, 4, 0, nil))
	t.Cleanup(s.CloseRecording)
	require.NoError(t, s.Loader.LoadVisible(viewport.SampleRange{Start: 0, End: 1000}))

	sessPath := filepath.Join(dir, "view.eegsession")
	require.NoError(t, s.SaveSession(sessPath))

	data, err := os.ReadFile(sessPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"recording": "continuous.dat"`)
}

func TestLoadSessionRejectsBadFilter(t *testing.T) {
	dir := t.TempDir()
	writeRecording(t, dir, 4, 10_000)

	sessPath := filepath.Join(dir, "view.eegsession")
	body := `{"version":1,"id":"x","recording":"continuous.dat","num_channels":4,
		"filters":[{"type":"comb","freq":60}]}`
	require.NoError(t, os.WriteFile(sessPath, []byte(body), 0o644))

	s := NewState()
	err := s.LoadSession(sessPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "restore filters")
	// Nothing was opened on a failed restore.
	assert.Nil(t, s.Recording)
}

func TestOpenRecordingReplacesPrevious(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	pathA := writeRecording(t, dirA, 4, 10_000)
	pathB := writeRecording(t, dirB, 8, 10_000)

	s := NewState()
	require.NoError(t, s.OpenRecording(pathA, 4, 0, nil))
	s.SetGain(2, 9.0)

	require.NoError(t, s.OpenRecording(pathB, 8, 0, nil))
	t.Cleanup(s.CloseRecording)

	assert.Equal(t, 8, s.Recording.NumChannels())
	// Gain overrides belong to a recording and are reset with it.
	assert.Equal(t, s.BaseGain, s.Gain(2))
}

func TestStateEvents(t *testing.T) {
	dir := t.TempDir()
	recPath := writeRecording(t, dir, 4, 10_000)

	s := NewState()
	var events []EventType
	for _, ev := range []EventType{EventRecordingOpened, EventSelectionChanged, EventFiltersChanged, EventModified} {
		ev := ev
		s.On(ev, func(interface{}) { events = append(events, ev) })
	}

	require.NoError(t, s.OpenRecording(recPath, 4, 0, nil))
	t.Cleanup(s.CloseRecording)
	s.SetSelection([]int{0, 1})
	require.NoError(t, s.ClearFilters())

	assert.Contains(t, events, EventRecordingOpened)
	assert.Contains(t, events, EventSelectionChanged)
	assert.Contains(t, events, EventFiltersChanged)
	assert.Contains(t, events, EventModified)
}
