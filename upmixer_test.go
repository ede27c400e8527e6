package upmixer_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundfield/upmixer"
	"github.com/soundfield/upmixer/internal/wavio"
)

const sampleRate = 48000

func sine(n int, freqHz float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freqHz * float64(i) / float64(sampleRate))
	}
	return out
}

func writeStereo(t *testing.T, dir, name string, l, r []float64) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, wavio.Write(path, sampleRate, [][]float64{l, r}))
	return path
}

// peak returns the largest absolute sample in ch, skipping the first and
// last skip samples where the averager has not yet seen enough neighbors.
func peak(ch []float64, skip int) float64 {
	if skip*2 >= len(ch) {
		skip = 0
	}
	var m float64
	for _, v := range ch[skip : len(ch)-skip] {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func runAndRead(t *testing.T, dir, caseName string, l, r []float64, cfg upmixer.Config) [][]float64 {
	t.Helper()
	in := writeStereo(t, dir, caseName+"-in.wav", l, r)
	out := filepath.Join(dir, caseName+"-out.wav")
	require.NoError(t, upmixer.Run(in, out, cfg))
	_, channels, err := wavio.ReadMultichannel(out)
	require.NoError(t, err)
	return channels
}

// skipWindow is a generous margin covering the averager's settling region
// near the file boundary at this sample rate and default window size.
const skipWindow = 4096

// S1. In-phase mono content. The steering rule sends it fully front (b=0)
// and the center overlay carries the front sum, so front-left/right and
// center all carry the tone; rear and LFE stay quiet.
func TestS1MonoInPhaseStaysFrontAndCenter(t *testing.T) {
	dir := t.TempDir()
	tone := sine(sampleRate*2, 1000)
	cfg := upmixer.DefaultConfig()
	cfg.Level = upmixer.LevelQuiet
	channels := runAndRead(t, dir, "s1", tone, tone, cfg)
	require.Len(t, channels, 6)
	fl, fr, c, lfe, rl, rr := channels[0], channels[1], channels[2], channels[3], channels[4], channels[5]

	assert.Greater(t, peak(fl, skipWindow), 0.5)
	assert.Greater(t, peak(fr, skipWindow), 0.5)
	assert.Greater(t, peak(c, skipWindow), 0.5)
	assert.Less(t, peak(rl, skipWindow), 0.05)
	assert.Less(t, peak(rr, skipWindow), 0.05)
	assert.Less(t, peak(lfe, skipWindow), 0.05)
}

// S2. Fully out-of-phase content (b=1) steers both sides entirely to the
// rear; the front pair and the center overlay, which draws from the
// (now-cancelling) front sum, go quiet.
func TestS2OutOfPhaseGoesToRear(t *testing.T) {
	dir := t.TempDir()
	l := sine(sampleRate*2, 1000)
	r := make([]float64, len(l))
	for i, v := range l {
		r[i] = -v
	}
	cfg := upmixer.DefaultConfig()
	channels := runAndRead(t, dir, "s2", l, r, cfg)
	fl, fr, c, rl, rr := channels[0], channels[1], channels[2], channels[4], channels[5]

	assert.Greater(t, peak(rl, skipWindow), 0.5)
	assert.Greater(t, peak(rr, skipWindow), 0.5)
	assert.Less(t, peak(fl, skipWindow), 0.1)
	assert.Less(t, peak(fr, skipWindow), 0.1)
	assert.Less(t, peak(c, skipWindow), 0.1)
}

// S3. A tone fully panned to the left, with nothing on the right, steers
// to the left-front channel only; 4.0 has no center/LFE to carry any of
// it either.
func TestS3HardLeftPanStaysFrontLeft(t *testing.T) {
	dir := t.TempDir()
	l := sine(sampleRate*2, 500)
	r := make([]float64, len(l))
	cfg := upmixer.DefaultConfig()
	cfg.Layout = upmixer.Layout40
	channels := runAndRead(t, dir, "s3", l, r, cfg)
	require.Len(t, channels, 4)
	fl, fr, rl, rr := channels[0], channels[1], channels[2], channels[3]

	assert.Greater(t, peak(fl, skipWindow), 0.8)
	assert.Less(t, peak(fr, skipWindow), 0.1)
	assert.Less(t, peak(rl, skipWindow), 0.15)
	assert.Less(t, peak(rr, skipWindow), 0.1)
}

// S4. A sub-cutoff tone is synthesized into the LFE channel while the
// front/center path, steering it as in-phase content, still carries it;
// raising -low past the tone's frequency on a layout with no LFE channel
// passes it through unsteered to FL/FR.
func TestS4LowFrequencyTone(t *testing.T) {
	dir := t.TempDir()
	tone := sine(sampleRate*2, 30)

	withLFE := upmixer.DefaultConfig()
	withLFE.LowFreqHz = 20
	channels := runAndRead(t, dir, "s4-lfe", tone, tone, withLFE)
	lfe, fl, fr, c := channels[3], channels[0], channels[1], channels[2]
	assert.Greater(t, peak(lfe, skipWindow), 0.3)
	assert.Greater(t, peak(fl, skipWindow), 0.3)
	assert.Greater(t, peak(fr, skipWindow), 0.3)
	assert.Greater(t, peak(c, skipWindow), 0.3)

	noLFE := upmixer.DefaultConfig()
	noLFE.Layout = upmixer.Layout50
	noLFE.LowFreqHz = 60
	channels = runAndRead(t, dir, "s4-nolfe", tone, tone, noLFE)
	require.Len(t, channels, 5)
	fl2, fr2 := channels[0], channels[1]
	assert.Greater(t, peak(fl2, skipWindow), 0.3)
	assert.Greater(t, peak(fr2, skipWindow), 0.3)
}

// S5. A pre-encoded Dolby-style LtRt tone with an in-phase component and
// an out-of-phase component round-trips through the dolby matrix with the
// in-phase tone on the front pair and the out-of-phase tone on the rear
// pair.
func TestS5DolbyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	n := sampleRate * 2
	inPhase := sine(n, 1000)
	outOfPhase := sine(n, 500)
	l := make([]float64, n)
	r := make([]float64, n)
	for i := range l {
		l[i] = inPhase[i] + outOfPhase[i]
		r[i] = inPhase[i] - outOfPhase[i]
	}
	cfg := upmixer.DefaultConfig()
	cfg.MatrixName = "dolby"
	channels := runAndRead(t, dir, "s5", l, r, cfg)
	fl, rl := channels[0], channels[4]

	assert.Greater(t, peak(fl, skipWindow), 0.3)
	assert.Greater(t, peak(rl, skipWindow), 0.3)
}

// S6. Output is deterministic regardless of worker pool size: the same
// input run with one worker and with eight must commit byte-identical
// samples through the locked overlap-add buffer.
func TestS6ThreadCountDoesNotAffectOutput(t *testing.T) {
	dir := t.TempDir()
	n := sampleRate * 10
	l := sine(n, 440)
	r := sine(n, 660)
	in := writeStereo(t, dir, "s6-in.wav", l, r)

	run := func(threads int) []byte {
		cfg := upmixer.DefaultConfig()
		cfg.Threads = threads
		out := filepath.Join(dir, "s6-out.wav")
		require.NoError(t, upmixer.Run(in, out, cfg))
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return data
	}

	single := run(1)
	eight := run(8)
	assert.Equal(t, single, eight)
}

// TestLowFreqAtOrAboveNyquistIsAConfigError pins the user-triggerable case of
// -low exceeding the source's own Nyquist frequency (e.g. -low 23000 against
// a 44.1kHz file) to exit code 2, not the internal-error fallback: the
// sample rate is only known after the WAV is decoded, so this is the only
// place that check can ever run.
func TestLowFreqAtOrAboveNyquistIsAConfigError(t *testing.T) {
	dir := t.TempDir()
	n := sampleRate
	in := writeStereo(t, dir, "nyquist-in.wav", sine(n, 440), sine(n, 440))

	cfg := upmixer.DefaultConfig()
	cfg.LowFreqHz = float64(sampleRate) / 2

	err := upmixer.Run(in, filepath.Join(dir, "nyquist-out.wav"), cfg)
	require.Error(t, err)
	var cfgErr *upmixer.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, 2, upmixer.ExitCode(err))
}
