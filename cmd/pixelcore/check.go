package main

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"pixelcore/internal/engine"
	"pixelcore/internal/project"
	"pixelcore/internal/render"
)

// errCheckFailed is returned when a project loads but its first frame has
// faults or rule errors.
var errCheckFailed = errors.New("check failed")

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <project>",
		Short: "Validate a project and dry-run its first frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, p, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			return report(cmd.OutOrStdout(), e, p)
		},
	}
}

// report renders one frame and prints what went wrong with it.
func report(w io.Writer, e *engine.Engine, p *project.Project) error {
	buf := e.Render(0)
	fmt.Fprintf(w, "%d layers  %d rules  %d masks  %d pixels  frame sha256:%s\n",
		len(p.Layers), len(p.Rules), len(p.Masks), e.Layout().Len(), render.Hash(buf))

	failed := false
	if err := e.Err(); err != nil {
		fmt.Fprintf(w, "frame: %v\n", err)
		failed = true
	}
	for _, f := range e.Faults() {
		fmt.Fprintf(w, "fault: %v\n", f)
		failed = true
	}
	errs := e.RuleErrors()
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "rule %s: %v\n", k, errs[k])
		failed = true
	}
	if failed {
		return errCheckFailed
	}
	fmt.Fprintln(w, "ok")
	return nil
}
