package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MacroPower/synclab/pkg/version"
)

func GetVersionString() string {
	return version.Version
}

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the synclab CLI",
		Run: func(cc *cobra.Command, _ []string) {
			fmt.Fprintln(cc.OutOrStdout(), version.Info())
			fmt.Fprintln(cc.OutOrStdout(), version.BuildContext())
		},
	}
}
