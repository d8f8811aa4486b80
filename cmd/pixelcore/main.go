// Command pixelcore renders, checks and previews pixelcore projects.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"pixelcore/internal/core"
	"pixelcore/internal/engine"
	"pixelcore/internal/project"
	"pixelcore/internal/sims"
	sig "pixelcore/internal/signal"
)

var (
	verbose  bool
	settings map[string]string
	audioArg map[string]string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "pixelcore:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pixelcore",
		Short:         "Deterministic layered pixel renderer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
				core.SetLogger(slog.New(h))
			}
		},
	}
	pf := root.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "log engine activity to stderr")
	pf.StringToStringVar(&settings, "set", nil, "engine settings: tick_hz, max_frame_delta, seed, global_mask")
	pf.StringToStringVar(&audioArg, "audio", nil, "constant audio values, e.g. energy=0.5,mono0=1")

	root.AddCommand(newRenderCmd(), newCheckCmd(), newWatchCmd(), newPreviewCmd())
	return root
}

// loadEngine reads the project at path and returns an engine showing it.
func loadEngine(path string) (*engine.Engine, *project.Project, error) {
	p, err := project.Load(path)
	if err != nil {
		return nil, nil, err
	}
	e, err := newEngine()
	if err != nil {
		return nil, nil, err
	}
	if err := e.SetProject(p); err != nil {
		return nil, nil, err
	}
	audio, err := parseAudio(audioArg)
	if err != nil {
		return nil, nil, err
	}
	e.SetAudio(audio)
	return e, p, nil
}

func newEngine() (*engine.Engine, error) {
	reg, err := sims.Registry()
	if err != nil {
		return nil, err
	}
	return engine.New(engine.FromMap(settings), reg)
}

func parseAudio(m map[string]string) (sig.Audio, error) {
	out := make(sig.Audio, len(m))
	for k, v := range m {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("audio %s: %w", k, err)
		}
		out[k] = f
	}
	return out, nil
}
