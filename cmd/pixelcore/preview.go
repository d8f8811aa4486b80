package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"pixelcore/internal/app"
	"pixelcore/internal/project"
)

func newPreviewCmd() *cobra.Command {
	var (
		scale  int
		tps    int
		reload bool
	)
	cmd := &cobra.Command{
		Use:   "preview <project>",
		Short: "Show a project in a window (needs the ebiten build tag)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, p, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			opts := app.Options{
				Engine:  e,
				Project: p,
				Title:   "pixelcore - " + filepath.Base(args[0]),
				Scale:   scale,
				TPS:     tps,
			}
			if reload {
				ch := make(chan app.Reload, 1)
				go func() {
					_ = project.Watch(cmd.Context(), args[0], 0, func(p *project.Project, err error) {
						select {
						case ch <- app.Reload{Project: p, Err: err}:
						case <-cmd.Context().Done():
						}
					})
				}()
				opts.Reload = ch
			}
			return app.Run(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.IntVar(&scale, "scale", 8, "screen pixels per LED")
	f.IntVar(&tps, "tps", 60, "window updates per second")
	f.BoolVar(&reload, "reload", true, "reload the project when the file changes")
	return cmd
}
