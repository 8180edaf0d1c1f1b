package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newPlatformsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "platforms",
		Short: "List supported platforms and their descriptors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Platforms(cmd.OutOrStdout())
		},
	}
}
