package matrix

import "math"

// dolbyMatrix decodes a Dolby left-total/right-total encoded stereo signal.
// Unlike the pan/phase rules, its rear channels are not side-preserving:
// both destination rear channels draw from a single combined base built
// from the source pair's out-of-phase component, per the encoding it is
// decoding rather than a generic steering rule. The gain itself is still a
// pure function of phase, so averaging it across windows before combining
// with this window's own base preserves the rotation correctly.
type dolbyMatrix struct{}

func (dolbyMatrix) Steer(in Input) Gains {
	b := clamp(math.Abs(in.Phase)/math.Pi, 0, 1)
	frontToBack := 1 - b
	rearGain := complex(math.Sqrt(b)*invSqrt2, 0)

	return Gains{
		FL: complex(frontToBack, 0),
		FR: complex(frontToBack, 0),
		RL: rearGain,
		RR: rearGain,
		C:  complex(1, 0),
	}
}

func (dolbyMatrix) Bases(l, r complex128) Bases {
	center := (l + r) * complex(invSqrt2, 0)
	// The out-of-phase component, rotated 90 degrees the way a Dolby
	// Surround decoder derotates its encoded rear carrier.
	rearBase := (l - r) * complex(invSqrt2, 0) * complex(0, 1)
	return Bases{FL: l, FR: r, RL: rearBase, RR: rearBase, C: center, LFE: center}
}

// EnergyConstant: the rear base's magnitude depends on how far L and R
// have diverged, not on a fixed fraction of input power, so dolby has no
// single bin-independent energy budget. Negative signals callers should
// not assert the conservation invariant for this matrix.
func (dolbyMatrix) EnergyConstant() float64 { return -1 }
