package cli

import (
	"github.com/spf13/cobra"

	"github.com/phanxgames/lightpillar"
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long:  `Print the configuration after defaults and --config are applied. The output is a valid config file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return lightpillar.EncodeConfig(cmd.OutOrStdout(), cfg)
		},
	}
}
