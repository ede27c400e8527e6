package upmixer

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/soundfield/upmixer/internal/engine"
	"github.com/soundfield/upmixer/internal/keepawake"
	"github.com/soundfield/upmixer/internal/matrix"
	"github.com/soundfield/upmixer/internal/scheduler"
	"github.com/soundfield/upmixer/internal/wavio"
)

// progressLogInterval throttles the periodic percentage report.
const progressLogInterval = 2 * time.Second

// Run reads inputPath, upmixes it per cfg, and writes the result to
// outputPath. It is the single entry point the CLI and any future caller
// drive the engine through.
func Run(inputPath, outputPath string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.KeepAwake {
		release := keepawake.Hold()
		defer release()
	}

	decoded, err := wavio.Read(inputPath)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return NewIOError("read input", err)
		}
		return NewInputFormatError("%v", err)
	}
	stream := &StereoStream{SampleRate: decoded.SampleRate, BitDepth: decoded.BitDepth, L: decoded.L, R: decoded.R}

	if nyquist := float64(stream.SampleRate) / 2; cfg.LowFreqHz >= nyquist {
		return NewConfigError("-low (%v) must be below Nyquist (%v) for a %d Hz source", cfg.LowFreqHz, nyquist, stream.SampleRate)
	}

	matrixName, err := normalizeMatrixName(cfg.MatrixName)
	if err != nil {
		return err
	}
	m, err := matrix.New(matrixName)
	if err != nil {
		return NewInternalError("%v", err)
	}

	loud := cfg.Level == LevelLoud
	policy := engine.ResolveLevelPolicy(cfg.Layout.HasCenter(), cfg.Layout.HasLFE(), loud)

	lastLog := time.Now()
	opts := scheduler.Options{
		MinSteeringAmplitude: cfg.MinSteeringAmplitude,
		LFECutoffHz:          LFECutoffHz,
		HasLFE:               cfg.Layout.HasLFE(),
		Policy:               policy,
		Threads:              cfg.Threads,
		ProgressFunc: func(done, total int) {
			if !cfg.Verbose {
				return
			}
			now := time.Now()
			if done < total && now.Sub(lastLog) < progressLogInterval {
				return
			}
			lastLog = now
			log.Printf("progress: %d%% (%d/%d windows)", done*100/total, done, total)
		},
	}

	res, err := scheduler.Run(stream.L, stream.R, stream.SampleRate, cfg.LowFreqHz, m, opts)
	if err != nil {
		return NewInternalError("%v", err)
	}

	output := SurroundOutput{
		Layout:     cfg.Layout,
		SampleRate: stream.SampleRate,
		Channels:   wireChannels(res.Buffer, cfg.Layout),
	}
	if err := wavio.Write(outputPath, output.SampleRate, output.Channels); err != nil {
		return NewIOError("write output", err)
	}

	return nil
}

// wireChannels extracts the buffers a layout writes, in wire order:
// 4.0: FL, FR, RL, RR
// 5.0: FL, FR, C, RL, RR
// 5.1: FL, FR, C, LFE, RL, RR
func wireChannels(buf *scheduler.ChannelBuffer, layout ChannelLayout) [][]float64 {
	switch layout {
	case Layout40:
		return [][]float64{
			buf.Channel(engine.ChannelFL),
			buf.Channel(engine.ChannelFR),
			buf.Channel(engine.ChannelRL),
			buf.Channel(engine.ChannelRR),
		}
	case Layout50:
		return [][]float64{
			buf.Channel(engine.ChannelFL),
			buf.Channel(engine.ChannelFR),
			buf.Channel(engine.ChannelC),
			buf.Channel(engine.ChannelRL),
			buf.Channel(engine.ChannelRR),
		}
	default: // Layout51
		return [][]float64{
			buf.Channel(engine.ChannelFL),
			buf.Channel(engine.ChannelFR),
			buf.Channel(engine.ChannelC),
			buf.Channel(engine.ChannelLFE),
			buf.Channel(engine.ChannelRL),
			buf.Channel(engine.ChannelRR),
		}
	}
}
