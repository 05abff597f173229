// Command shot-check loads the reference tables and prints the analysis of
// one shot. Its load subcommand drives a running service with synthetic shots.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/okian/fairway/internal/domain/analysis"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/refdata"
	"github.com/okian/fairway/internal/shotload"
	"github.com/okian/fairway/pkg/logger"
)

// Sample shot printed when no measurement is given.
const (
	sampleBallSpeed   = 60.5
	sampleLaunch      = 12.3
	sampleHorizontal  = 1.2
	sampleSpin        = 2600
	sampleSpinAxis    = 3.5
	sampleTimestampNS = 1764477382748215552
)

const (
	defaultNumShots    = 10_000
	defaultTopN        = 50
	defaultTimeout     = 30 * time.Second
	defaultWaitTimeout = 2 * time.Minute
	defaultRunTimeout  = 10 * time.Minute
)

type checkFlags struct {
	file           string
	benchmarksPath string
	tipsPath       string
	handedness     string
	compact        bool

	ballSpeed  float64
	launch     float64
	horizontal float64
	spin       float64
	spinAxis   float64
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		f        checkFlags
		logLevel string
	)

	cmd := &cobra.Command{
		Use:          "shot-check",
		Short:        "Print the analysis of one golf shot",
		Version:      analysis.Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg, err := shotFromFlags(cmd.Flags(), &f)
			if err != nil {
				return err
			}
			return check(cmd.Context(), out, &f, msg)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "read the shot message from a JSON file, - for stdin")
	fs.StringVar(&f.benchmarksPath, "benchmarks", "", "benchmarks table (default: embedded)")
	fs.StringVar(&f.tipsPath, "tips", "", "coaching tips table (default: embedded)")
	fs.StringVar(&f.handedness, "handedness", "", "RH or LH (default: the shot's own flag, else RH)")
	fs.BoolVar(&f.compact, "compact", false, "print JSON on one line")
	fs.Float64Var(&f.ballSpeed, "ball-speed", 0, "ball speed in m/s")
	fs.Float64Var(&f.launch, "launch", 0, "vertical launch angle in degrees")
	fs.Float64Var(&f.horizontal, "horizontal", 0, "horizontal launch angle in degrees")
	fs.Float64Var(&f.spin, "spin", 0, "total spin in rpm")
	fs.Float64Var(&f.spinAxis, "spin-axis", 0, "spin axis in degrees")
	cmd.MarkFlagsMutuallyExclusive("file", "ball-speed")

	cmd.AddCommand(newLoadCmd())
	return cmd
}

// shotFromFlags builds the shot message from --file, the measurement flags,
// or the built-in sample, in that order.
func shotFromFlags(fs *pflag.FlagSet, f *checkFlags) (model.ShotMessage, error) {
	var msg model.ShotMessage

	switch {
	case f.file != "":
		data, err := readInput(f.file)
		if err != nil {
			return msg, err
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			return msg, fmt.Errorf("parse %s: %w", f.file, err)
		}
	case anyChanged(fs, "ball-speed", "launch", "horizontal", "spin", "spin-axis"):
		set := func(name string, v float64) *float64 {
			if fs.Changed(name) {
				return model.Float(v)
			}
			return nil
		}
		msg.BallSpeed = set("ball-speed", f.ballSpeed)
		msg.VerticalLaunchAngle = set("launch", f.launch)
		msg.HorizontalLaunch = set("horizontal", f.horizontal)
		msg.TotalSpin = set("spin", f.spin)
		msg.SpinAxis = set("spin-axis", f.spinAxis)
	default:
		ts := int64(sampleTimestampNS)
		msg = model.ShotMessage{
			TimestampNS:         &ts,
			BallSpeed:           model.Float(sampleBallSpeed),
			VerticalLaunchAngle: model.Float(sampleLaunch),
			HorizontalLaunch:    model.Float(sampleHorizontal),
			TotalSpin:           model.Float(sampleSpin),
			SpinAxis:            model.Float(sampleSpinAxis),
			Handedness:          "RH",
		}
	}

	if f.handedness != "" {
		msg.Handedness = f.handedness
	}
	return msg, nil
}

func anyChanged(fs *pflag.FlagSet, names ...string) bool {
	for _, n := range names {
		if fs.Changed(n) {
			return true
		}
	}
	return false
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func check(ctx context.Context, out io.Writer, f *checkFlags, msg model.ShotMessage) error {
	data, err := refdata.NewLoader(
		refdata.WithBenchmarksPath(f.benchmarksPath),
		refdata.WithTipsPath(f.tipsPath),
	).Load()
	if err != nil {
		return err
	}
	if data.Sanitized {
		logger.Get().Warn(ctx, "reference data needed cleanup before parsing")
	}

	res := analysis.New(data.Benchmarks, data.Tips).Analyze(ctx, analysis.Input{
		Measurement: msg.Measurement(),
		Handedness:  msg.Handedness,
	})

	enc := json.NewEncoder(out)
	if !f.compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}

func newLoadCmd() *cobra.Command {
	cfg := &shotload.Config{}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Submit synthetic shots to a running service and verify the results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultRunTimeout)
			defer cancel()
			_, err := shotload.Run(ctx, cfg)
			return err
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	fs.IntVar(&cfg.NumShots, "shots", defaultNumShots, "number of shots to generate and submit")
	fs.Int64Var(&cfg.FirstShot, "first-shot", 1, "shot number of the first generated shot")
	fs.Float64Var(&cfg.Resend, "resend", 0.05, "fraction of shots sent twice")
	fs.IntVar(&cfg.TopN, "top", defaultTopN, "number of top shots to fetch")
	fs.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "number of concurrent submitters")
	fs.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	fs.DurationVar(&cfg.WaitTimeout, "wait", defaultWaitTimeout, "how long to wait for the history to catch up")
	fs.Uint64Var(&cfg.Seed, "seed", 1, "generator seed")
	fs.StringVar(&cfg.OutputFile, "output", "", "write the generated shots to this file")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "log progress and the top shots")
	return cmd
}
