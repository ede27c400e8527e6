package scheduler

import (
	"sync"

	"github.com/soundfield/upmixer/internal/engine"
)

// ChannelBuffer accumulates every window's synthesized frames into the
// final per-destination-channel output buffers. Commits are guarded by a
// mutex per (channel, hop-bucket), where a hop-bucket is one Hop-wide
// slice of the output. A window's frame spans ceil(Size/Hop) consecutive
// buckets (two, at the mandated 50% hop), and Commit locks every bucket
// its own frame touches before writing — so it is serialized against any
// other window whose range overlaps its own (at 50% hop, exactly its
// immediate neighbors), while windows far enough apart to touch disjoint
// samples lock disjoint buckets and commit concurrently.
type ChannelBuffer struct {
	channels   [engine.NumChannels][]float64
	locks      [][engine.NumChannels]sync.Mutex
	hop        int
	numBuckets int
}

// NewChannelBuffer allocates a buffer of numSamples per channel, bucketed
// for windows of the given size and hop.
func NewChannelBuffer(numSamples, size, hop int) *ChannelBuffer {
	if hop <= 0 {
		hop = size
	}
	if hop <= 0 {
		hop = 1
	}
	// +2 covers the bucket span a frame starting in the last bucket can
	// still touch, even past numSamples.
	numBuckets := numSamples/hop + 2
	b := &ChannelBuffer{
		hop:        hop,
		numBuckets: numBuckets,
		locks:      make([][engine.NumChannels]sync.Mutex, numBuckets),
	}
	for c := range b.channels {
		b.channels[c] = make([]float64, numSamples)
	}
	return b
}

// bucketRange returns the inclusive range of hop-buckets the frame
// [windowStart, windowStart+frameLen) touches.
func (b *ChannelBuffer) bucketRange(windowStart, frameLen int) (lo, hi int) {
	lo = windowStart / b.hop
	hi = (windowStart + frameLen - 1) / b.hop
	if hi >= b.numBuckets {
		hi = b.numBuckets - 1
	}
	return lo, hi
}

// Commit overlap-adds frame into channel c at the given window start,
// holding every bucket lock the frame's own range touches for the
// duration of the write.
func (b *ChannelBuffer) Commit(c engine.Channel, windowStart int, frame []float64) {
	lo, hi := b.bucketRange(windowStart, len(frame))
	for i := lo; i <= hi; i++ {
		b.locks[i][c].Lock()
	}
	defer func() {
		for i := lo; i <= hi; i++ {
			b.locks[i][c].Unlock()
		}
	}()
	engine.OverlapAdd(b.channels[c], frame, windowStart)
}

// Channel returns the accumulated buffer for channel c. Only safe to call
// once every committing worker has finished.
func (b *ChannelBuffer) Channel(c engine.Channel) []float64 { return b.channels[c] }
