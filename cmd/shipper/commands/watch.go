package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [apps...]",
		Short: "Deploy apps, then redeploy whenever the source tree changes",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), args, pipelineOptions(cmd))
		},
	}
	addPipelineFlags(cmd)
	return cmd
}
