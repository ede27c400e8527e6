// Package window computes the short-time analysis window geometry shared by
// every stage of the steering engine: window size, hop, and the set of
// window start indices a source stream is sliced into.
package window

import (
	"fmt"
	"math"
)

// Plan is the immutable geometry derived from a sample rate and the
// configured lowest steered frequency. A 50% hop with a square-root-Hann
// analysis and synthesis window gives exact constant-overlap-add
// reconstruction.
type Plan struct {
	// Size is W, the smallest power of two with W/SampleRate >= 1/LowFreqHz.
	Size int
	// Hop is W/2.
	Hop int
	// SampleRate is the source sample rate the plan was derived from.
	SampleRate int
	// LowFreqHz is the configured lowest steered frequency.
	LowFreqHz float64
	// MinBin is k_min = ceil(LowFreqHz * Size / SampleRate).
	MinBin int
	// NyquistBin is Size/2, the last bin a real FFT of length Size produces.
	NyquistBin int
	// Starts holds every window's starting sample index, including the
	// final, possibly zero-padded, window.
	Starts []int
}

// New derives a Plan for a source of the given sample rate and sample
// count, steering down to lowFreqHz. It returns a plain error when
// lowFreqHz or sampleRate are out of range; this package has no caller-
// facing error type of its own, and the user-triggerable case of these
// two (lowFreqHz at or above Nyquist for the source's actual sample rate)
// is expected to already be rejected by the caller before New is ever
// invoked, once the sample rate is known from the decoded input. The
// checks here remain as a defensive backstop against that invariant.
func New(sampleRate int, numSamples int, lowFreqHz float64) (Plan, error) {
	if sampleRate <= 0 {
		return Plan{}, fmt.Errorf("window: sample rate must be positive, got %d", sampleRate)
	}
	if lowFreqHz <= 0 {
		return Plan{}, fmt.Errorf("window: f_low must be positive, got %v", lowFreqHz)
	}
	nyquist := float64(sampleRate) / 2
	if lowFreqHz >= nyquist {
		return Plan{}, fmt.Errorf("window: f_low (%v) must be below Nyquist (%v)", lowFreqHz, nyquist)
	}

	size := nextPowerOfTwo(int(math.Ceil(float64(sampleRate) / lowFreqHz)))
	hop := size / 2
	minBin := int(math.Ceil(lowFreqHz * float64(size) / float64(sampleRate)))

	var starts []int
	for start := 0; ; start += hop {
		starts = append(starts, start)
		if start+size >= numSamples {
			break
		}
	}
	if len(starts) == 0 {
		starts = []int{0}
	}

	return Plan{
		Size:       size,
		Hop:        hop,
		SampleRate: sampleRate,
		LowFreqHz:  lowFreqHz,
		MinBin:     minBin,
		NyquistBin: size / 2,
		Starts:     starts,
	}, nil
}

// NumWindows returns M, the number of windows the plan produces.
func (p Plan) NumWindows() int { return len(p.Starts) }

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
