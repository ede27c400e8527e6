package wavio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")

	const sr = 48000
	n := sr / 10
	fl := make([]float64, n)
	fr := make([]float64, n)
	for i := range fl {
		fl[i] = math.Sin(2 * math.Pi * 440 * float64(i) / sr)
		fr[i] = math.Sin(2 * math.Pi * 220 * float64(i) / sr)
	}

	require.NoError(t, Write(path, sr, [][]float64{fl, fr}))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, sr, got.SampleRate)
	assert.Equal(t, 32, got.BitDepth)
	require.Len(t, got.L, n)
	require.Len(t, got.R, n)

	for i := range fl {
		assert.InDelta(t, fl[i], got.L[i], 1e-6)
		assert.InDelta(t, fr[i], got.R[i], 1e-6)
	}
}

func TestWriteClampsOutOfRangeSamples(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clamped.wav")

	loud := []float64{2.0, -3.0, 0.5}
	require.NoError(t, Write(path, 48000, [][]float64{loud, loud}))

	got, err := Read(path)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got.L[0], 1e-5)
	assert.InDelta(t, -1.0, got.L[1], 1e-5)
	assert.InDelta(t, 0.5, got.L[2], 1e-5)
}

func TestWriteIntoMissingDirectoryFails(t *testing.T) {
	err := Write("/nonexistent-dir-xyz/out.wav", 48000, [][]float64{{0}})
	assert.Error(t, err)
}

func TestWriteRejectsMismatchedChannelLengths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.wav")
	err := Write(path, 48000, [][]float64{{1, 2, 3}, {1, 2}})
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestReadRejectsNonWAVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notwav.txt")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

	_, err := Read(path)
	assert.Error(t, err)
}
