package cli

import (
	"github.com/spf13/cobra"

	"github.com/MacroPower/synclab/internal/scenario"
)

// NewListCmd returns the list command.
func NewListCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cc *cobra.Command, _ []string) error {
			reg, err := scenario.NewDefaultRegistry(cfg.Scenarios)
			if err != nil {
				return err
			}

			all, err := reg.Select()
			if err != nil {
				return err
			}

			renderScenarioList(cc.OutOrStdout(), all)

			return nil
		},
	}
}
