package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"pixelcore/internal/core"
	"pixelcore/internal/render"
)

func newRenderCmd() *cobra.Command {
	var (
		frames      int
		fps         float64
		outDir      string
		format      string
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "render <project>",
		Short: "Render frames headlessly and print their digest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fps <= 0 {
				return fmt.Errorf("fps must be positive, got %v", fps)
			}
			if format != "png" && format != "ppm" {
				return fmt.Errorf("unknown frame format %q", format)
			}
			e, _, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				stop := serveMetrics(cmd.Context(), metricsAddr)
				defer stop()
			}
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
			}

			digest := render.NewDigest()
			for i := 0; i < frames; i++ {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				buf := e.Render(float64(i) / fps)
				digest.Add(buf)
				if outDir == "" {
					continue
				}
				name := filepath.Join(outDir, fmt.Sprintf("frame_%05d.%s", i, format))
				if err := render.SaveFrame(name, buf, e.Layout()); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames  %d pixels  sha256:%s\n", digest.Frames(), e.Layout().Len(), digest.Sum())
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVarP(&frames, "frames", "n", 60, "number of frames to render")
	f.Float64Var(&fps, "fps", 30, "host frame rate used to derive timestamps")
	f.StringVarP(&outDir, "out", "o", "", "directory for rendered frames (none when empty)")
	f.StringVar(&format, "format", "png", "frame file format: png or ppm")
	f.StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while rendering")
	return cmd
}

// serveMetrics exposes /metrics until the returned func is called.
func serveMetrics(ctx context.Context, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			core.Logger().Error("metrics server", "addr", addr, "err", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
