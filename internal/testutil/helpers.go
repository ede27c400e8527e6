// Package testutil provides reusable test helper functions for the upmixing
// engine's tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances used across the engine's property tests.
const (
	DefaultTolerance = 1e-10
	GainTolerance    = 1e-9
	SampleTolerance  = 1e-4
)

// AssertSymmetric verifies that a slice is symmetric (s[i] == s[n-1-i]).
// Suitable for checking that an analysis/synthesis window is symmetric.
func AssertSymmetric(t *testing.T, s []float64, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	n := len(s)
	for i := 0; i < n/2; i++ {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance,
			"slice not symmetric at i=%d: s[%d]=%f != s[%d]=%f", i, i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange(t *testing.T, s []float64, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if v < minVal || v > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// AssertEnergyConserved verifies that the sum of squared gain magnitudes
// across destination channels equals the expected matrix constant.
func AssertEnergyConserved(t *testing.T, gains []complex128, expected, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	var sum float64
	for _, g := range gains {
		sum += real(g)*real(g) + imag(g)*imag(g)
	}
	return assert.InDelta(t, expected, sum, tolerance,
		"energy sum = %f, want %f", sum, expected)
}

// AssertPhaseInRange verifies a phase value lies within (-pi, pi].
func AssertPhaseInRange(t *testing.T, phase float64, msgAndArgs ...any) bool {
	t.Helper()
	if phase <= -math.Pi || phase > math.Pi+1e-9 {
		return assert.Fail(t, "phase out of range", "phase %f not in (-pi, pi]", phase)
	}
	return true
}
