// Package cli implements the lightpillar command-line interface.
//
// # Commands
//
//   - run: open a window and animate the pillar
//   - render: render frames offscreen to PNG files
//   - config: print the effective configuration as TOML
//
// All commands accept --verbose (-v) for debug-level logging and --config to
// load a TOML file. Loggers are passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/lightpillar"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the lightpillar CLI with ctx.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "lightpillar",
		Short:        "Render an animated ray-marched light pillar",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), lightpillar.NewLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("lightpillar %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().String("config", "", "TOML config file")

	root.AddCommand(newRunCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// loadConfig reads --config, or returns the defaults when it is unset.
func loadConfig(cmd *cobra.Command) (lightpillar.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return lightpillar.Config{}, err
	}
	if path == "" {
		return lightpillar.DefaultConfig(), nil
	}
	loggerFromContext(cmd.Context()).Debug("loading config", "path", path)
	return lightpillar.LoadConfig(path)
}
