package cli

import (
	"github.com/spf13/cobra"

	"github.com/phanxgames/lightpillar"
)

type runOpts struct {
	title    string
	width    int
	height   int
	fps      bool
	software bool
	scale    float64
	debug    bool
}

func newRunCmd() *cobra.Command {
	opts := runOpts{
		title:  "Light Pillar",
		width:  640,
		height: 480,
		scale:  0.5,
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open a window and animate the light pillar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := loggerFromContext(cmd.Context())
			rc := lightpillar.RunConfig{
				Title:   opts.title,
				Width:   opts.width,
				Height:  opts.height,
				ShowFPS: opts.fps,
				Debug:   opts.debug,
				Logger:  logger,
			}
			if opts.software {
				rc.Device = &lightpillar.SoftwareDevice{Scale: opts.scale}
			}
			logger.Debug("opening window", "width", opts.width, "height", opts.height, "software", opts.software)
			return lightpillar.Run(cfg, rc)
		},
	}

	cmd.Flags().StringVar(&opts.title, "title", opts.title, "window title")
	cmd.Flags().IntVar(&opts.width, "width", opts.width, "window width")
	cmd.Flags().IntVar(&opts.height, "height", opts.height, "window height")
	cmd.Flags().BoolVar(&opts.fps, "fps", false, "show the FPS overlay")
	cmd.Flags().BoolVar(&opts.software, "software", false, "shade on the CPU instead of the GPU")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "software render scale (0-1]")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "log frame timings")
	return cmd
}
