package engine

import "github.com/soundfield/upmixer/internal/matrix"

// GainStore holds every window's raw, pre-average steering gains so the
// Temporal Averager can look at each window's ±AveragingRadius neighbors.
// Publishing is the scheduler's job (it knows when a window's Steering
// Stage has completed); GainStore only holds what has been published and
// computes averages over what is there.
type GainStore struct {
	perWindow [][]matrix.Gains
}

// NewGainStore allocates a store for numWindows windows.
func NewGainStore(numWindows int) *GainStore {
	return &GainStore{perWindow: make([][]matrix.Gains, numWindows)}
}

// Publish records window m's raw steering gains. Safe to call at most once
// per window; callers serialize this themselves (the scheduler assigns
// exactly one worker to each window).
func (s *GainStore) Publish(m int, gains []matrix.Gains) {
	s.perWindow[m] = gains
}

// Raw returns window m's published raw gains, or nil if not yet published.
func (s *GainStore) Raw(m int) []matrix.Gains { return s.perWindow[m] }

// Average computes window m's temporally averaged gains from the published
// raw gains of windows [m-radius, m+radius] intersected with [0, M), per
// §4.4: averaging applies to gains, not combined bin values, so this must
// run before Bases turns gains into channel contributions. All referenced
// neighbors must already be published.
func (s *GainStore) Average(m, radius int) []matrix.Gains {
	lo := m - radius
	if lo < 0 {
		lo = 0
	}
	hi := m + radius
	if hi > len(s.perWindow)-1 {
		hi = len(s.perWindow) - 1
	}

	numBins := len(s.perWindow[m])
	averaged := make([]matrix.Gains, numBins)
	count := complex(float64(hi-lo+1), 0)

	for i := lo; i <= hi; i++ {
		neighbor := s.perWindow[i]
		for k := 0; k < numBins; k++ {
			averaged[k].FL += neighbor[k].FL
			averaged[k].FR += neighbor[k].FR
			averaged[k].C += neighbor[k].C
			averaged[k].RL += neighbor[k].RL
			averaged[k].RR += neighbor[k].RR
			averaged[k].LFE += neighbor[k].LFE
		}
	}
	for k := 0; k < numBins; k++ {
		averaged[k].FL /= count
		averaged[k].FR /= count
		averaged[k].C /= count
		averaged[k].RL /= count
		averaged[k].RR /= count
		averaged[k].LFE /= count
	}
	return averaged
}
