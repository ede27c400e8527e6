package engine

import "math"

// LevelPolicy resolves the loud/quiet amplitude-scaling contract for a
// channel layout: a uniform scalar applied to the center channel and,
// where present, the LFE channel. Front and rear side channels are never
// scaled by the Level Policy.
type LevelPolicy struct {
	CenterScale float64
	LFEScale    float64
}

// ResolveLevelPolicy computes the Level Policy for a layout. hasCenter and
// hasLFE describe the layout; loud requests the unscaled variant (invalid,
// and already rejected by Config.Validate, on a layout with no center).
// Quiet (the default on any layout with a center) needs no flag of its
// own — it is simply the absence of loud.
func ResolveLevelPolicy(hasCenter, hasLFE, loud bool) LevelPolicy {
	if !hasCenter {
		return LevelPolicy{CenterScale: 1, LFEScale: 1}
	}
	scale := 1 / math.Sqrt2
	if loud {
		scale = 1
	}
	policy := LevelPolicy{CenterScale: scale, LFEScale: 1}
	if hasLFE {
		policy.LFEScale = scale
	}
	return policy
}

// LFECutoffBin returns the first bin index whose frequency is at or above
// lfeCutoffHz, for a transform of size fftSize at sample rate sr. Bins
// below this index feed the LFE channel.
func LFECutoffBin(lfeCutoffHz float64, fftSize, sampleRate int) int {
	bin := int(math.Ceil(lfeCutoffHz * float64(fftSize) / float64(sampleRate)))
	if bin < 0 {
		bin = 0
	}
	return bin
}
