package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish [apps...]",
		Short: "Build and push images, printing the digest-addressed pull references",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Publish(cmd.Context(), args, pipelineOptions(cmd))
		},
	}
	addPipelineFlags(cmd)
	return cmd
}
