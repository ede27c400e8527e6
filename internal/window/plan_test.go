package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRejectsInvalidInput exercises New's own defensive backstop for
// out-of-range sample rate and f_low. This package has no caller-facing
// error type of its own and asserts nothing about the concrete error type:
// the user-triggerable case of f_low at or above Nyquist is rejected
// earlier, as a *upmixer.ConfigError, once the caller knows the real
// decoded sample rate (see TestLowFreqAtOrAboveNyquistIsAConfigError at the
// package root) — New only ever sees that case if the caller's own check
// was skipped or miscomputed.
func TestNewRejectsInvalidInput(t *testing.T) {
	_, err := New(0, 1000, 20)
	assert.Error(t, err)

	_, err = New(48000, 1000, 0)
	assert.Error(t, err)

	_, err = New(48000, 1000, 24000)
	assert.Error(t, err)
}

func TestNewSizesWindowToLowFreqHz(t *testing.T) {
	p, err := New(48000, 48000, 20)
	require.NoError(t, err)

	assert.Equal(t, p.Size/2, p.Hop)
	assert.GreaterOrEqual(t, float64(p.Size)/48000, 1.0/20)
	assert.Less(t, float64(p.Size/2)/48000, 1.0/20)
	assert.Equal(t, p.Size/2, p.NyquistBin)
}

func TestMinBinIsCeilingOfLowFreqInBins(t *testing.T) {
	p, err := New(48000, 48000, 20)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, float64(p.MinBin)*48000/float64(p.Size), 20.0)
}

func TestStartsCoverShortInput(t *testing.T) {
	p, err := New(48000, 10, 20)
	require.NoError(t, err)

	assert.Equal(t, []int{0}, p.Starts)
	assert.Equal(t, 1, p.NumWindows())
}

func TestStartsHopByHalfWindow(t *testing.T) {
	p, err := New(48000, 48000*2, 20)
	require.NoError(t, err)

	require.Greater(t, len(p.Starts), 1)
	for i := 1; i < len(p.Starts); i++ {
		assert.Equal(t, p.Hop, p.Starts[i]-p.Starts[i-1])
	}
	assert.GreaterOrEqual(t, p.Starts[len(p.Starts)-1]+p.Size, 48000*2)
}
