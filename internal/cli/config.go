package cli

import (
	"github.com/spf13/cobra"

	"github.com/gogpu/typewriter/effect"
)

func newConfigCmd() *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effect configuration as TOML",
		Long: `Print the default effect configuration as TOML. With --from, the given file
is loaded on top of the defaults and printed instead, which shows how it
was read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := effect.DefaultConfig()
			if from != "" {
				var err error
				if cfg, err = effect.Load(from); err != nil {
					return err
				}
			}
			return effect.Encode(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "effect config file to load")
	return cmd
}
