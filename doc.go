// Package upmixer converts a stereo WAV recording into 4.0, 5.0, or 5.1
// surround output.
//
// It steers each short-time spectral bin of the input toward the speaker
// its pan and phase best support, temporally averages the steering
// decision across neighboring windows to avoid audible chattering, and
// reconstructs each destination channel by overlap-add.
//
// # Quick Start
//
//	cfg := upmixer.DefaultConfig()
//	cfg.MatrixName = "dolby"
//	cfg.Layout = upmixer.Layout51
//	if err := upmixer.Run("input.wav", "output.wav", cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// # Steering Matrices
//
// Several matrices trade off how aggressively a stereo pair's pan and
// out-of-phase content are pushed toward the rear or center channels:
//
//   - default: the baseline pan/phase steering rule.
//   - horseshoe: widens panning before clipping, pushing more hard-panned
//     content to the rear than default.
//   - qs / rm: an alias pair for the historical quadraphonic matrix's
//     widening constant.
//   - dolby: decodes a Dolby Surround-style LtRt encoding, feeding the
//     rear channels from the out-of-phase (L-R) component with a 90-degree
//     phase rotation.
//   - sq / sqexperimental: an alias pair placing each bin on a circle of
//     four corner channels by combined pan and phase angle.
//
// # Channel Layouts
//
// Layout40 produces front-left, front-right, rear-left, rear-right.
// Layout50 adds a center channel. Layout51 adds both center and a
// low-frequency-effects channel synthesized from the front sum below a
// fixed crossover. The Level Policy quiets the center and LFE channels by
// default on any layout that carries them; [LevelLoud] undoes that.
//
// # Concurrency
//
// Run fans the steering and synthesis stages out across a bounded worker
// pool sized by Config.Threads (internal/scheduler). Output is
// deterministic regardless of the worker count: windows commit through a
// locked overlap-add buffer, and the Temporal Averager only ever reads
// already-published neighbor gains.
package upmixer
