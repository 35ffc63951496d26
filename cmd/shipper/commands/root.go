// Package commands implements the CLI commands for the shipper deploy tool.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/shipper/internal/app"
	"go.trai.ch/shipper/internal/build"
)

// CLI represents the command line interface for shipper.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Up(ctx context.Context, appNames []string, opts app.Options) error
	Build(ctx context.Context, opts app.Options) error
	Publish(ctx context.Context, appNames []string, opts app.Options) error
	Hash(ctx context.Context, opts app.Options) error
	Watch(ctx context.Context, appNames []string, opts app.Options) error
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "shipper",
		Short:         "Deterministic build, publish, and deploy for container apps",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newUpCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newPublishCmd())
	rootCmd.AddCommand(c.newHashCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// pipelineOptions reads the flags shared by the pipeline commands.
func pipelineOptions(cmd *cobra.Command) app.Options {
	noCache, _ := cmd.Flags().GetBool("no-cache")
	uncommitted, _ := cmd.Flags().GetBool("uncommitted")
	return app.Options{
		NoCache:            noCache,
		IncludeUncommitted: uncommitted,
	}
}

// addPipelineFlags registers the flags shared by the pipeline commands.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("no-cache", "n", false, "Bypass cached stage results and force execution")
	cmd.Flags().BoolP("uncommitted", "u", false, "Hash the working tree including uncommitted changes")
}
