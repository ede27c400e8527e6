// Package matrix implements the steering matrices: pure functions mapping
// a stereo bin pair and its derived pan/phase to destination-channel gains.
//
// Each matrix is a small configured value rather than a type hierarchy —
// default, horseshoe, and qs/rm are the same underlying rule with different
// widening and bias constants, mirroring how the reference engine this
// package is modeled on configures one steering rule for several named
// presets instead of duplicating it.
//
// A matrix separates two things that must never be conflated: the *gain*,
// a dimensionless scalar derived from pan and phase that is safe to
// average across windows, and the *base*, the actual complex signal that
// gain multiplies, which is always recomputed from the current window's
// own bins. Averaging the combined result across windows would average
// away phase; averaging the gain and reapplying it to this window's own
// base preserves it.
package matrix

import "math"

// Gains holds the six destination-channel gain scalars a matrix derives
// from pan and phase for one bin. These are dimensionless multipliers,
// not yet combined with L or R — averaging happens at this stage, before
// Bases turns them into actual channel bin values.
type Gains struct {
	FL, FR, C, RL, RR, LFE complex128
}

// Bases holds the six destination-channel base signals a matrix combines
// its Gains with. Center and LFE ordinarily share (L+R)/sqrt(2); side
// channels ordinarily share L or R directly. A matrix may substitute a
// different base (dolby's rear channels use the out-of-phase component)
// while still keeping its Gains purely a function of pan and phase.
type Bases struct {
	FL, FR, C, RL, RR, LFE complex128
}

// Input is the per-bin quantity a matrix steers from.
type Input struct {
	L, R complex128
	// Pan is (|R|-|L|)/max(|R|+|L|, eps), in [-1, +1]; zeroed below the
	// configured minimum steering amplitude.
	Pan float64
	// Phase is angle(R)-angle(L), normalized to (-pi, +pi]; 0 when either
	// bin is silent.
	Phase float64
}

// Matrix computes destination gains and bases for one frequency bin.
type Matrix interface {
	// Steer returns the six destination gain scalars for in. A caller
	// averages these across windows before combining them with Bases.
	Steer(in Input) Gains
	// Bases returns the six destination base signals for the raw bin
	// pair (l, r) of the window currently being synthesized. Never
	// averaged across windows.
	Bases(l, r complex128) Bases
	// EnergyConstant is the matrix-defined K for
	// |g_FL|^2+|g_FR|^2+|g_RL|^2+|g_RR|^2 (before the Level Policy). For
	// default, horseshoe and qs the sum equals K only for fully front or
	// fully rear bins; their linear front/rear split gives less in between.
	// Center and LFE are overlay sends outside this budget, per §4.7.
	// A negative return means the matrix has no fixed K — it trades
	// strict conservation for its encoding (dolby, sq) and callers
	// should not assert the invariant.
	EnergyConstant() float64
}

const eps = 1e-12

// invSqrt2 is 1/sqrt(2), the standard center/LFE downmix coefficient.
var invSqrt2 = 1 / math.Sqrt2

// sidePreservingBases is the Bases rule shared by every matrix except
// dolby: front and rear side channels draw straight from L or R, center
// and LFE draw from the front sum.
func sidePreservingBases(l, r complex128) Bases {
	center := (l + r) * complex(invSqrt2, 0)
	return Bases{FL: l, FR: r, RL: l, RR: r, C: center, LFE: center}
}

// clamp constrains v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizePhase brings phase into (-pi, +pi], mirroring the reference
// engine's bring_phase_in_range helper.
func normalizePhase(phase float64) float64 {
	for phase > math.Pi {
		phase -= 2 * math.Pi
	}
	for phase <= -math.Pi {
		phase += 2 * math.Pi
	}
	return phase
}

// DerivePanAndPhase computes the Pan and Phase fields of an Input from raw
// complex bins, applying the minimum-steering-amplitude guard. Phase is 0
// when either bin is silent, since a zero bin has no angle to compare.
func DerivePanAndPhase(l, r complex128, minSteeringAmplitude float64) (pan, phase float64) {
	lAbs, rAbs := cAbs(l), cAbs(r)
	sum := lAbs + rAbs
	if sum < eps {
		return 0, 0
	}
	pan = (rAbs - lAbs) / math.Max(sum, eps)
	if lAbs < minSteeringAmplitude && rAbs < minSteeringAmplitude {
		pan = 0
	}
	if lAbs < eps || rAbs < eps {
		return pan, 0
	}
	phase = normalizePhase(cPhase(r) - cPhase(l))
	return pan, phase
}

func cAbs(c complex128) float64   { return math.Hypot(real(c), imag(c)) }
func cPhase(c complex128) float64 { return math.Atan2(imag(c), real(c)) }

// New resolves a canonical matrix name (as normalized by the top-level
// Config) to a Matrix implementation.
func New(name string) (Matrix, error) {
	switch name {
	case "default":
		return defaultRule(), nil
	case "horseshoe":
		return horseshoeRule(), nil
	case "qs":
		return qsRule(), nil
	case "dolby":
		return dolbyMatrix{}, nil
	case "sq":
		return sqMatrix{}, nil
	default:
		return nil, unknownMatrixError{name}
	}
}

type unknownMatrixError struct{ name string }

func (e unknownMatrixError) Error() string { return "matrix: unknown matrix " + e.name }
