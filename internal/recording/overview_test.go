package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverviewChannelStrides(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 4, 1000)
	r, err := Open(path, 4)
	require.NoError(t, err)
	defer r.Close()

	pts, err := r.OverviewChannel(2, 100)
	require.NoError(t, err)
	require.Len(t, pts, 100)

	// Stride is 10 samples with this geometry.
	for i, v := range pts {
		assert.Equal(t, float32(sampleValue(int64(i)*10, 2)), v, "point %d", i)
	}
}

func TestOverviewChannelShortRecording(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 4, 50)
	r, err := Open(path, 4)
	require.NoError(t, err)
	defer r.Close()

	pts, err := r.OverviewChannel(0, 10_000)
	require.NoError(t, err)
	require.Len(t, pts, 50)
	for i, v := range pts {
		assert.Equal(t, float32(sampleValue(int64(i), 0)), v)
	}
}

func TestOverviewChannelRejectsBadArgs(t *testing.T) {
	path := writeRecording(t, t.TempDir(), 4, 100)
	r, err := Open(path, 4)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.OverviewChannel(-1, 100)
	assert.ErrorIs(t, err, ErrRange)

	_, err = r.OverviewChannel(4, 100)
	assert.ErrorIs(t, err, ErrRange)

	_, err = r.OverviewChannel(0, 0)
	assert.ErrorIs(t, err, ErrRange)
}
