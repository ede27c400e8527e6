package engine

import (
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// Spectra holds the half-spectrum (bins [0, size/2]) FFT of a window's left
// and right analysis frames. gonum's Hermitian-packed real FFT never
// produces the upper half, and its inverse reconstructs it internally, so
// neither Transform nor Synthesis ever fills in a mirrored upper half by
// hand.
type Spectra struct {
	L, R []complex128
}

// Transformer runs the forward and inverse real FFTs for one window size
// and owns the coefficients shared by analysis and synthesis. Applying
// Hann itself at both ends of a 50%-hop OLA does not sum to a constant —
// the analysis and synthesis windows multiply sample-by-sample before
// overlap-add, and Hann squared at 50% hop ranges between 0.5 and 1.0, not
// a flat 1. The combination that reconstructs exactly at 50% hop is the
// square root of Hann applied on both ends, whose product is Hann itself;
// that is what this package builds, matching the Hann window the spec
// names while actually satisfying its constant-overlap-add claim. A
// Transformer is not safe for concurrent use: its FFT reuses internal
// scratch space.
type Transformer struct {
	fft    *fourier.FFT
	size   int
	window []float64
}

// NewTransformer builds a Transformer for windows of size samples.
func NewTransformer(size int) *Transformer {
	return &Transformer{
		fft:    fourier.NewFFT(size),
		size:   size,
		window: sqrtHannCoefficients(size),
	}
}

// sqrtHannCoefficients derives Hann's coefficients by applying gonum's
// in-place window function to a sequence of ones (window.Hann multiplies
// a sequence's existing values rather than generating coefficients
// directly), then takes their square root for use as both the analysis
// and synthesis window.
func sqrtHannCoefficients(n int) []float64 {
	seq := make([]float64, n)
	for i := range seq {
		seq[i] = 1
	}
	seq = window.Hann(seq)
	for i, v := range seq {
		seq[i] = math.Sqrt(v)
	}
	return seq
}

// Window returns the shared sqrt-Hann coefficients, read-only.
func (t *Transformer) Window() []float64 { return t.window }

// Size returns the transform length W.
func (t *Transformer) Size() int { return t.size }

// Forward extracts the frame [start, start+W) from l and r (zero-padding
// past the end of the source), applies the square-root-Hann analysis
// window, and
// returns the half-spectrum FFT of each channel.
func (t *Transformer) Forward(l, r []float64, start int) Spectra {
	frameL := t.extractWindowed(l, start)
	frameR := t.extractWindowed(r, start)
	return Spectra{
		L: t.fft.Coefficients(nil, frameL),
		R: t.fft.Coefficients(nil, frameR),
	}
}

func (t *Transformer) extractWindowed(src []float64, start int) []float64 {
	frame := make([]float64, t.size)
	end := start + t.size
	if end > len(src) {
		end = len(src)
	}
	if start < len(src) {
		copy(frame, src[start:end])
	}
	f64.Mul(frame, frame, t.window)
	return frame
}

// Inverse reconstructs a real time-domain frame of length W from a
// half-spectrum and applies the square-root-Hann synthesis window in place.
func (t *Transformer) Inverse(spectrum []complex128) []float64 {
	frame := t.fft.Sequence(nil, spectrum)
	// gonum's IFFT doesn't normalize.
	f64.Scale(frame, frame, 1.0/float64(t.size))
	f64.Mul(frame, frame, t.window)
	return frame
}
