package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Print the content hash of the current source tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Hash(cmd.Context(), pipelineOptions(cmd))
		},
	}
	addPipelineFlags(cmd)
	return cmd
}
