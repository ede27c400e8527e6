package matrix

import "math"

// panPhaseMatrix is the configurable steering rule shared by default,
// horseshoe, and qs/rm. All three derive front/back position from phase and
// split each source channel between its front and rear destination purely
// by that position; widenFactor controls how much amplitude panning also
// pushes energy to the rear once it would otherwise clip, mirroring the
// reference engine's single configurable matrix struct with a widen factor
// instead of three unrelated implementations.
type panPhaseMatrix struct {
	// widenFactor scales the derived left/right pan before it is clamped.
	// Values above 1 let a hard-panned bin overflow [-1, 1]; the overflow
	// is folded into the back/front position, pushing wide pans toward
	// that side's rear channel.
	widenFactor float64
	// centerBias slightly boosts the center send as bins approach fully
	// in phase, biasing shared front energy toward the center channel.
	centerBias float64
}

func defaultRule() panPhaseMatrix { return panPhaseMatrix{widenFactor: 1.0} }

// horseshoeRule's widen factor is 1.25: pan' = sign(pan)*min(|pan|*1.25, 1).
func horseshoeRule() panPhaseMatrix { return panPhaseMatrix{widenFactor: 1.25} }

// qsRule's widen factor is 1.1, a milder widening than horseshoe's, and its
// center bias of 0.15 leans in-phase energy slightly toward the center.
func qsRule() panPhaseMatrix { return panPhaseMatrix{widenFactor: 1.1, centerBias: 0.15} }

func (m panPhaseMatrix) Steer(in Input) Gains {
	backToFrontFromPhase := math.Abs(in.Phase) / math.Pi

	pan := in.Pan * m.widenFactor
	backToFrontFromPanning := math.Max(math.Abs(pan)-1, 0)

	b := clamp(backToFrontFromPanning+backToFrontFromPhase, 0, 1)
	frontToBack := 1 - b

	centerGain := complex(1+m.centerBias*(1-b), 0)

	return Gains{
		FL: complex(frontToBack, 0),
		FR: complex(frontToBack, 0),
		RL: complex(b, 0),
		RR: complex(b, 0),
		C:  centerGain,
	}
}

func (panPhaseMatrix) Bases(l, r complex128) Bases { return sidePreservingBases(l, r) }

// EnergyConstant reports the matrix's gain-energy budget at the bin's two
// extremes (b = 0, fully front, or b = 1, fully rear), where the linear
// front/rear split is exactly energy-preserving per source channel: K = 2.
// Away from the extremes the literal linear split trades strict
// conservation for a simple, source-preserving crossfade, matching the
// reference engine's own amplitude-domain (not power-domain) split.
func (panPhaseMatrix) EnergyConstant() float64 { return 2.0 }
