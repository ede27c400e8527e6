// Package scheduler drives the steering engine's per-window pipeline across
// a bounded worker pool: a monotonically claimed window counter for the
// steering stage, a temporal-averaging barrier, and a locked overlap-add
// commit into a ChannelBuffer.
package scheduler

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/soundfield/upmixer/internal/engine"
	"github.com/soundfield/upmixer/internal/matrix"
	"github.com/soundfield/upmixer/internal/window"
)

// Options carries the run parameters the scheduler needs that are not
// implied by the plan or the matrix itself.
type Options struct {
	MinSteeringAmplitude float64
	LFECutoffHz          float64
	HasLFE               bool
	Policy               engine.LevelPolicy
	Threads              int
	// ProgressFunc, if non-nil, is called after every window's synthesis
	// commits, with the count of windows completed so far and the total.
	ProgressFunc func(done, total int)
}

// Result holds the assembled per-channel output, indexed by engine.Channel.
type Result struct {
	Buffer *ChannelBuffer
	Plan   window.Plan
}

// Run executes the full pipeline over a stereo source: the Transform Stage
// and Steering Stage for every window (stages 3 and 4), the Temporal
// Averager (stage 5), and the Synthesis Stage with its overlap-add commit
// (stage 6), fanned out across a bounded worker pool.
//
// Steering for every window runs to completion before any window's
// synthesis begins. This guarantees the Temporal Averager's neighbor range
// is always fully published by the time a window needs it without risking
// a worker pool deadlocking on a barrier no free worker is left to satisfy
// — a bounded pool smaller than the averaging radius could otherwise stall
// waiting on a neighbor nothing has claimed yet.
func Run(l, r []float64, sampleRate int, lowFreqHz float64, m matrix.Matrix, opts Options) (Result, error) {
	plan, err := window.New(sampleRate, len(l), lowFreqHz)
	if err != nil {
		return Result{}, err
	}

	threads := opts.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}

	// A Transformer's FFT reuses internal scratch space, so each worker
	// takes its own from the pool rather than sharing one.
	transformers := sync.Pool{New: func() any { return engine.NewTransformer(plan.Size) }}
	store := engine.NewGainStore(plan.NumWindows())
	spectra := make([]engine.Spectra, plan.NumWindows())
	buf := NewChannelBuffer(len(l), plan.Size, plan.Hop)

	cutoffBin := engine.LFECutoffBin(opts.LFECutoffHz, plan.Size, sampleRate)

	// cancelled has no writer yet: neither stage below can fail once the
	// plan and matrix are valid. It is threaded through runPhase so a
	// future error-producing stage (disk-backed window sources, say) can
	// poison the run without changing the worker pool's shape.
	var cancelled atomic.Bool

	runPhase(plan.NumWindows(), threads, &cancelled, func(idx int) {
		tf := transformers.Get().(*engine.Transformer)
		defer transformers.Put(tf)
		start := plan.Starts[idx]
		sp := tf.Forward(l, r, start)
		spectra[idx] = sp
		gains := engine.SteerWindow(m, sp, plan.MinBin, plan.NyquistBin, opts.MinSteeringAmplitude)
		store.Publish(idx, gains)
	})

	var completed atomic.Int64
	total := plan.NumWindows()
	runPhase(total, threads, &cancelled, func(idx int) {
		tf := transformers.Get().(*engine.Transformer)
		defer transformers.Put(tf)
		start := plan.Starts[idx]
		avg := store.Average(idx, engine.AveragingRadius)
		combined := engine.CombineChannelSpectra(avg, spectra[idx], m)
		if opts.HasLFE {
			engine.ApplyLFESynthesis(&combined, spectra[idx], cutoffBin)
		}
		engine.ApplyLevelPolicy(&combined, opts.Policy)
		for c := 0; c < engine.NumChannels; c++ {
			frame := tf.Inverse(combined[c])
			buf.Commit(engine.Channel(c), start, frame)
		}
		done := completed.Add(1)
		if opts.ProgressFunc != nil {
			opts.ProgressFunc(int(done), total)
		}
	})

	return Result{Buffer: buf, Plan: plan}, nil
}

// runPhase claims indices [0, n) from a shared counter across threads
// workers, calling work for each claimed index until the counter is
// exhausted or cancelled is set.
func runPhase(n, threads int, cancelled *atomic.Bool, work func(idx int)) {
	if n == 0 {
		return
	}
	if threads > n {
		threads = n
	}
	var counter atomic.Int64
	var wg sync.WaitGroup
	wg.Add(threads)
	for i := 0; i < threads; i++ {
		go func() {
			defer wg.Done()
			for {
				idx := int(counter.Add(1)) - 1
				if idx >= n || cancelled.Load() {
					return
				}
				work(idx)
			}
		}()
	}
	wg.Wait()
}
