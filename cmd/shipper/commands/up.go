package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up [apps...]",
		Short: "Build, publish, and deploy apps from the current source tree",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Up(cmd.Context(), args, pipelineOptions(cmd))
		},
	}
	addPipelineFlags(cmd)
	return cmd
}
