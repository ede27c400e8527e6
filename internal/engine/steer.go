package engine

import (
	"github.com/soundfield/upmixer/internal/matrix"
)

// SteerWindow computes the raw, pre-average steering gains for every bin
// of one window's spectra. Bins below minBin are copied unchanged into FL
// and FR only, per the window planner's low-frequency passthrough. The DC
// bin always takes that passthrough, since minBin is at least 1. The
// Nyquist bin (purely real) is steered with phase fixed at zero since
// angle(real) is not meaningful the way it is for a proper bin pair.
func SteerWindow(m matrix.Matrix, spectra Spectra, minBin int, nyquistBin int, minSteeringAmplitude float64) []matrix.Gains {
	gains := make([]matrix.Gains, nyquistBin+1)
	passthrough := matrix.Gains{FL: 1, FR: 1}

	for k := 0; k <= nyquistBin; k++ {
		if k < minBin {
			gains[k] = passthrough
			continue
		}
		l, r := spectra.L[k], spectra.R[k]
		pan, phase := matrix.DerivePanAndPhase(l, r, minSteeringAmplitude)
		if k == 0 || k == nyquistBin {
			phase = 0
		}
		gains[k] = m.Steer(matrix.Input{L: l, R: r, Pan: pan, Phase: phase})
	}
	return gains
}
