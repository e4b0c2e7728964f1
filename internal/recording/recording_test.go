package recording

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleValue is the deterministic test pattern written by writeRecording.
func sampleValue(sample int64, ch int) int16 {
	return int16((sample*7+int64(ch)*13)%1000 - 500)
}

// writeRecording writes an interleaved int16 test file and returns its path.
func writeRecording(t *testing.T, dir string, channels int, samples int64) string {
	t.Helper()
	raw := make([]byte, samples*int64(channels)*BytesPerSample)
	for s := int64(0); s < samples; s++ {
		for ch := 0; ch < channels; ch++ {
			off := (s*int64(channels) + int64(ch)) * BytesPerSample
			binary.LittleEndian.PutUint16(raw[off:], uint16(sampleValue(s, ch)))
		}
	}
	path := filepath.Join(dir, "continuous.dat")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.dat"), 32)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenExplicitChannelCount(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 8, 1000)

	r, err := Open(path, 8)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, 8, r.NumChannels())
	assert.Equal(t, int64(1000), r.NumSamples())
}

func TestOpenTruncatesTrailingBytes(t *testing.T) {
	dir := t.TempDir()
	path := writeRecording(t, dir, 8, 1000)

	// Append a partial frame; it must be ignored, not fatal.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := Open(path, 8)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, int64(1000), r.NumSamples())
}

func TestInferChannelCountFromDivisibility(t *testing.T) {
	// An odd frame count keeps 16/32/64 from dividing evenly, so 72 is
	// the first common count that matches.
	path := writeRecording(t, t.TempDir(), 72, 5001)

	r, err := Open(path, 0)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, 72, r.NumChannels())
}

func TestInferChannelCountFailsOnOddSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "continuous.dat")
	// 2*3*5*7*11 frames of nothing recognizable: no common count divides it.
	require.NoError(t, os.WriteFile(path, make([]byte, 2310), 0o644))

	_, err := Open(path, 0)
	require.Error(t, err)
}

func TestLoadAllChannels(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 4, 500)
	r, err := Open(path, 4)
	require.NoError(t, err)
	defer r.Close()

	buf, err := r.LoadAllChannels(100, 200)
	require.NoError(t, err)
	require.Equal(t, 100, buf.Rows())
	require.Equal(t, 4, buf.Channels)

	for s := 0; s < 100; s++ {
		for ch := 0; ch < 4; ch++ {
			assert.Equal(t, float32(sampleValue(int64(100+s), ch)), buf.At(s, ch))
		}
	}
}

func TestLoadAllChannelsClampsBounds(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 4, 500)
	r, err := Open(path, 4)
	require.NoError(t, err)
	defer r.Close()

	buf, err := r.LoadAllChannels(-50, 10_000)
	require.NoError(t, err)
	assert.Equal(t, 500, buf.Rows())
}

func TestLoadAllChannelsEmptySpan(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 4, 500)
	r, err := Open(path, 4)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.LoadAllChannels(200, 200)
	assert.ErrorIs(t, err, ErrRange)
	_, err = r.LoadAllChannels(300, 200)
	assert.ErrorIs(t, err, ErrRange)
}

func TestLoadChannelsMatchesFullLoad(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 16, 9000)
	r, err := Open(path, 16)
	require.NoError(t, err)
	defer r.Close()

	selection := []int{3, 0, 15, 7}
	// Chunk smaller than the span so the chunked path is exercised.
	narrow, err := r.LoadChannelsChunked(selection, 500, 8500, 1024)
	require.NoError(t, err)
	require.Equal(t, 8000, narrow.Rows())
	require.Equal(t, len(selection), narrow.Channels)

	full, err := r.LoadAllChannels(500, 8500)
	require.NoError(t, err)

	for s := 0; s < narrow.Rows(); s++ {
		for j, ch := range selection {
			assert.Equal(t, full.At(s, ch), narrow.At(s, j),
				"sample %d channel %d", s, ch)
		}
	}
}

func TestLoadChannelsIdempotent(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 8, 4000)
	r, err := Open(path, 8)
	require.NoError(t, err)
	defer r.Close()

	a, err := r.LoadChannels([]int{1, 6}, 100, 3900)
	require.NoError(t, err)
	b, err := r.LoadChannels([]int{1, 6}, 100, 3900)
	require.NoError(t, err)
	assert.Equal(t, a.Data, b.Data)
}

func TestLoadChannelsRejectsBadChannels(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 8, 100)
	r, err := Open(path, 8)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.LoadChannels([]int{0, 8}, 0, 50)
	assert.ErrorIs(t, err, ErrRange)
	_, err = r.LoadChannels([]int{-1}, 0, 50)
	assert.ErrorIs(t, err, ErrRange)
	_, err = r.LoadChannels(nil, 0, 50)
	assert.ErrorIs(t, err, ErrRange)
}

func TestLoadChannelsRejectsEmptySpan(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 8, 100)
	r, err := Open(path, 8)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.LoadChannels([]int{0}, 60, 60)
	assert.ErrorIs(t, err, ErrRange)
}

// TestEndToEnd72Channels reproduces the acquisition layout used in the
// field: 72 interleaved channels, 60k samples per channel.
func TestEndToEnd72Channels(t *testing.T) {
	const (
		channels = 72
		samples  = 60_000
	)
	path := writeRecording(t, t.TempDir(), channels, samples)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(channels*samples*BytesPerSample), info.Size())

	r, err := Open(path, channels)
	require.NoError(t, err)
	defer r.Close()

	buf, err := r.LoadChannels([]int{12, 67}, 0, 10_000)
	require.NoError(t, err)
	require.Equal(t, 10_000, buf.Rows())
	require.Equal(t, 2, buf.Channels)

	for s := int64(0); s < 10_000; s++ {
		require.Equal(t, float32(sampleValue(s, 12)), buf.At(int(s), 0))
		require.Equal(t, float32(sampleValue(s, 67)), buf.At(int(s), 1))
	}
}

func TestProbe(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 4, 2000)
	r, err := Open(path, 4)
	require.NoError(t, err)
	defer r.Close()

	res, err := r.Probe(500)
	require.NoError(t, err)
	assert.Equal(t, 4, res.NumChannels)
	assert.Equal(t, 500, res.SamplesProbed)
	require.Len(t, res.Channels, 4)
	for _, cs := range res.Channels {
		assert.GreaterOrEqual(t, cs.Max, cs.Min)
		assert.Equal(t, cs.Max-cs.Min, cs.PeakToPeak())
	}
}
