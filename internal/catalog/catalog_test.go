package catalog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestLookupUnknownPath(t *testing.T) {
	c := openTestCatalog(t)

	e, err := c.Lookup("/data/missing.dat")
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestRememberAndLookup(t *testing.T) {
	c := openTestCatalog(t)

	opened := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, c.Remember(Entry{
		Path:         "/data/continuous.dat",
		NumChannels:  72,
		SamplingRate: 200,
		NumSamples:   12_000_000,
		LastOpened:   opened,
	}))

	e, err := c.Lookup("/data/continuous.dat")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 72, e.NumChannels)
	assert.Equal(t, 200.0, e.SamplingRate)
	assert.Equal(t, int64(12_000_000), e.NumSamples)
	assert.Equal(t, opened, e.LastOpened)
}

func TestRememberUpdatesExisting(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.Remember(Entry{Path: "/data/a.dat", NumChannels: 16, SamplingRate: 200}))
	require.NoError(t, c.Remember(Entry{Path: "/data/a.dat", NumChannels: 32, SamplingRate: 1000}))

	e, err := c.Lookup("/data/a.dat")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, 32, e.NumChannels)
	assert.Equal(t, 1000.0, e.SamplingRate)

	entries, err := c.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecentOrdersByLastOpened(t *testing.T) {
	c := openTestCatalog(t)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"a.dat", "b.dat", "c.dat"} {
		require.NoError(t, c.Remember(Entry{
			Path:        filepath.Join("/data", name),
			NumChannels: 16,
			LastOpened:  base.Add(time.Duration(i) * time.Hour),
		}))
	}

	entries, err := c.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/data/c.dat", entries[0].Path)
	assert.Equal(t, "/data/b.dat", entries[1].Path)
}

func TestForget(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.Remember(Entry{Path: "/data/a.dat", NumChannels: 16}))
	require.NoError(t, c.Forget("/data/a.dat"))

	e, err := c.Lookup("/data/a.dat")
	require.NoError(t, err)
	assert.Nil(t, e)
}
