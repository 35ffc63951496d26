package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/shipper/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove cached stage records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			images, _ := cmd.Flags().GetBool("images")
			registry, _ := cmd.Flags().GetBool("registry")
			deployments, _ := cmd.Flags().GetBool("deployments")
			all, _ := cmd.Flags().GetBool("all")

			opts := app.CleanOptions{
				Images:      images,
				Registry:    registry,
				Deployments: deployments,
			}

			// Default behavior: clean everything.
			if all || (!images && !registry && !deployments) {
				opts.Images = true
				opts.Registry = true
				opts.Deployments = true
			}

			return c.app.Clean(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolP("images", "i", false, "Clean cached image build records")
	cmd.Flags().BoolP("registry", "r", false, "Clean cached registry publish records")
	cmd.Flags().BoolP("deployments", "d", false, "Clean cached deployment records")
	cmd.Flags().BoolP("all", "a", false, "Clean all stage caches")

	return cmd
}
