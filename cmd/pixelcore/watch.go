package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pixelcore/internal/project"
)

func newWatchCmd() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <project>",
		Short: "Re-check a project every time it is saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			check := func(p *project.Project, err error) {
				if err != nil {
					fmt.Fprintf(out, "load: %v\n", err)
					return
				}
				e, err := newEngine()
				if err == nil {
					err = e.SetProject(p)
				}
				if err != nil {
					fmt.Fprintf(out, "load: %v\n", err)
					return
				}
				_ = report(out, e, p)
			}
			check(project.Load(args[0]))
			return project.Watch(cmd.Context(), args[0], debounce, check)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", project.DefaultDebounce, "quiet period before reloading")
	return cmd
}
