// Command upmixer converts a stereo WAV recording into 4.0, 5.0, or 5.1
// surround output.
package main

import (
	"log"
	"os"

	"github.com/alecthomas/kong"

	"github.com/soundfield/upmixer"
)

// CLI defines the command-line interface.
type CLI struct {
	Matrix    string  `short:"m" default:"default" help:"Steering matrix: default, horseshoe, dolby, qs, rm, sq, sqexperimental."`
	Channels  string  `short:"c" default:"5.1" help:"Output channel configuration: 4.0, 5.0, or 5.1."`
	Minimum   float64 `default:"0.01" help:"Amplitude below which pan is forced to zero."`
	Low       float64 `default:"20" help:"Lowest frequency the engine steers, in Hz."`
	Loud      bool    `help:"Disable the default center/LFE quieting."`
	Quiet     bool    `help:"Force the default center/LFE quieting (the default on layouts that have it)."`
	Threads   int     `help:"Worker pool size. Defaults to the platform's parallelism hint."`
	Keepawake bool    `default:"true" help:"Hold a best-effort OS wake lock for the duration of the run."`
	Verbose   bool    `short:"v" help:"Enable diagnostic logging."`

	Input  string `arg:"" type:"existingfile" help:"Source stereo WAV file."`
	Output string `arg:"" help:"Destination surround WAV file."`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("upmixer"),
		kong.Description("Upmixes a stereo WAV recording to 4.0, 5.0, or 5.1 surround."),
		kong.UsageOnError(),
	)

	cfg, err := resolveConfig(cli)
	if err != nil {
		log.Print(err)
		os.Exit(upmixer.ExitCode(err))
	}

	if err := upmixer.Run(cli.Input, cli.Output, cfg); err != nil {
		log.Print(err)
		os.Exit(upmixer.ExitCode(err))
	}
}

func resolveConfig(cli CLI) (upmixer.Config, error) {
	cfg := upmixer.DefaultConfig()
	cfg.MatrixName = cli.Matrix
	cfg.MinSteeringAmplitude = cli.Minimum
	cfg.LowFreqHz = cli.Low
	if cli.Threads > 0 {
		cfg.Threads = cli.Threads
	}
	cfg.KeepAwake = cli.Keepawake
	cfg.Verbose = cli.Verbose

	layout, err := upmixer.ParseChannelLayout(cli.Channels)
	if err != nil {
		return upmixer.Config{}, err
	}
	cfg.Layout = layout

	if cli.Loud && cli.Quiet {
		return upmixer.Config{}, upmixer.NewConfigError("-loud and -quiet are mutually exclusive")
	}
	switch {
	case cli.Loud:
		cfg.Level = upmixer.LevelLoud
	case cli.Quiet:
		cfg.Level = upmixer.LevelQuiet
	default:
		cfg.Level = upmixer.LevelDefault
	}

	if err := cfg.Validate(); err != nil {
		return upmixer.Config{}, err
	}
	return cfg, nil
}
