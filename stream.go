package upmixer

// StereoStream is the decoded, normalized stereo input. Samples are
// normalized to [-1, 1] regardless of the source bit depth. Once
// constructed it is immutable and shared read-only by every worker.
type StereoStream struct {
	SampleRate int
	BitDepth   int
	L          []float64
	R          []float64
}

// NumSamples returns the number of sample pairs in the stream.
func (s *StereoStream) NumSamples() int {
	return len(s.L)
}

// SurroundOutput is the fully assembled output: one real sequence per
// destination channel, ready for interleaving and writing.
type SurroundOutput struct {
	Layout     ChannelLayout
	SampleRate int
	// Channels holds one buffer per destination channel in wire order:
	// 4.0: FL, FR, RL, RR
	// 5.0: FL, FR, C, RL, RR
	// 5.1: FL, FR, C, LFE, RL, RR
	Channels [][]float64
}
