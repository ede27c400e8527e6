package engine

import (
	"github.com/tphakala/simd/c128"

	"github.com/soundfield/upmixer/internal/matrix"
)

// CombineChannelSpectra turns a window's temporally averaged gains and its
// own raw bin pair into one complex half-spectrum per destination channel.
// Gains were averaged across neighboring windows; bases never are — they
// are recomputed here from this window's own spectra, which is what keeps
// averaging from smearing phase (§4.4). Gains and bases are collected into
// one flat slice per channel so the six per-channel multiplies run through
// c128.Mul instead of a per-bin scalar loop.
func CombineChannelSpectra(avgGains []matrix.Gains, spectra Spectra, m matrix.Matrix) [NumChannels][]complex128 {
	n := len(avgGains)
	var gains, bases, out [NumChannels][]complex128
	for c := range out {
		gains[c] = make([]complex128, n)
		bases[c] = make([]complex128, n)
		out[c] = make([]complex128, n)
	}
	for k := 0; k < n; k++ {
		b := m.Bases(spectra.L[k], spectra.R[k])
		g := avgGains[k]
		gains[ChannelFL][k], bases[ChannelFL][k] = g.FL, b.FL
		gains[ChannelFR][k], bases[ChannelFR][k] = g.FR, b.FR
		gains[ChannelC][k], bases[ChannelC][k] = g.C, b.C
		gains[ChannelRL][k], bases[ChannelRL][k] = g.RL, b.RL
		gains[ChannelRR][k], bases[ChannelRR][k] = g.RR, b.RR
		gains[ChannelLFE][k], bases[ChannelLFE][k] = g.LFE, b.LFE
	}
	for c := range out {
		c128.Mul(out[c], gains[c], bases[c])
	}
	return out
}

// ApplyLFESynthesis overwrites the LFE channel's bins below cutoffBin with
// the window's raw front sum, per §4.7: LFE is synthesized directly from
// low bins rather than from any matrix's own (always-zero) LFE gain.
func ApplyLFESynthesis(channels *[NumChannels][]complex128, spectra Spectra, cutoffBin int) {
	lfe := channels[ChannelLFE]
	for k := 0; k < cutoffBin && k < len(lfe); k++ {
		lfe[k] = (spectra.L[k] + spectra.R[k]) * complex(invSqrt2, 0)
	}
}

const invSqrt2 = 0.7071067811865476

// ApplyLevelPolicy scales the center and LFE channel spectra in place.
func ApplyLevelPolicy(channels *[NumChannels][]complex128, policy LevelPolicy) {
	scaleSpectrum(channels[ChannelC], policy.CenterScale)
	scaleSpectrum(channels[ChannelLFE], policy.LFEScale)
}

func scaleSpectrum(spectrum []complex128, scale float64) {
	c128.Scale(spectrum, spectrum, complex(scale, 0))
}

// OverlapAdd sums frame into dst starting at offset start, clipping to
// dst's bounds. Constant-overlap-add with a square-root-Hann
// analysis/synthesis pair at 50% hop needs no further normalization.
func OverlapAdd(dst, frame []float64, start int) {
	for i, v := range frame {
		pos := start + i
		if pos < 0 || pos >= len(dst) {
			continue
		}
		dst[pos] += v
	}
}
