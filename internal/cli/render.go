package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/lightpillar"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	width   float64
	height  float64
	frames  int    // frames to simulate
	every   int    // snapshot interval in frames; 0 saves only the last frame
	out     string // output directory
	scale   float64
	workers int
	script  string // JSON script; replaces the frame/every schedule
}

func newRenderCmd() *cobra.Command {
	opts := renderOpts{
		width:  640,
		height: 480,
		frames: 60,
		out:    "frames",
		scale:  1,
	}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render frames offscreen to PNG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.frames <= 0 {
				return fmt.Errorf("--frames must be positive, got %d", opts.frames)
			}
			if opts.every < 0 {
				return fmt.Errorf("--every must not be negative, got %d", opts.every)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, &opts)
		},
	}

	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", opts.frames, "number of frames to simulate")
	cmd.Flags().IntVar(&opts.every, "every", 0, "save every Nth frame (0 saves the last frame only)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", opts.out, "output directory")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "render scale (0-1]")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "parallel row bands (0 uses GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.script, "script", "", "JSON script of pointer/resize/snapshot steps")
	return cmd
}

func runRender(ctx context.Context, cfg lightpillar.Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	start := time.Now()

	hl, err := lightpillar.NewHeadless(cfg, opts.width, opts.height, lightpillar.Options{
		Device: &lightpillar.SoftwareDevice{Scale: opts.scale, Workers: opts.workers},
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer hl.Close()
	if hl.Effect.Degraded() {
		return fmt.Errorf("render: %w", hl.Effect.Err())
	}

	var saved []string
	if opts.script != "" {
		saved, err = renderScript(ctx, hl, opts)
	} else {
		saved, err = renderFrames(ctx, hl, opts, logger)
	}
	if err != nil {
		return err
	}
	logger.Infof("Wrote %d frame(s) to %s (%s)", len(saved), opts.out, time.Since(start).Round(time.Millisecond))
	return nil
}

func renderFrames(ctx context.Context, hl *lightpillar.Headless, opts *renderOpts, logger *log.Logger) ([]string, error) {
	var saved []string
	for i := 1; i <= opts.frames; i++ {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		hl.Frame()
		if (opts.every > 0 && i%opts.every == 0) || (opts.every == 0 && i == opts.frames) {
			path, err := hl.Effect.SaveSnapshot(opts.out, fmt.Sprintf("frame-%04d", i))
			if err != nil {
				return saved, err
			}
			logger.Debug("saved frame", "path", path)
			saved = append(saved, path)
		}
	}
	return saved, nil
}

func renderScript(ctx context.Context, hl *lightpillar.Headless, opts *renderOpts) ([]string, error) {
	data, err := os.ReadFile(opts.script)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	s, err := lightpillar.LoadScript(data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := hl.RunScript(s, opts.out, opts.frames); err != nil {
		if errors.Is(err, lightpillar.ErrNoFrame) {
			return s.Snapshots, fmt.Errorf("%w (is the frame size zero?)", err)
		}
		return s.Snapshots, err
	}
	return s.Snapshots, nil
}
