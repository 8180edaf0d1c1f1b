// Package commands implements the CLI commands for modrules.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"go.trai.ch/modrules/internal/app"
	"go.trai.ch/modrules/internal/build"
	"go.trai.ch/modrules/internal/core/ports"
)

// logSettings is implemented by loggers whose format and level can change at runtime.
type logSettings interface {
	SetJSON(enable bool)
	SetLevel(level slog.Level)
}

// CLI represents the command line interface for modrules.
type CLI struct {
	app     *app.App
	logger  ports.Logger
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app and logger.
func New(a *app.App, logger ports.Logger) *CLI {
	rootCmd := &cobra.Command{
		Use:           "modrules",
		Short:         "Resolve per-platform build descriptors for the DatabaseConnector module",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to the module rules file (defaults to the built-in rules)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Only log warnings and errors")

	c := &CLI{
		app:     a,
		logger:  logger,
		rootCmd: rootCmd,
	}
	rootCmd.PersistentPreRun = c.configureLogger

	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newPlatformsCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configureLogger(cmd *cobra.Command, _ []string) {
	settings, ok := c.logger.(logSettings)
	if !ok {
		return
	}
	if jsonLogs, _ := cmd.Flags().GetBool("log-json"); jsonLogs {
		settings.SetJSON(true)
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		settings.SetLevel(slog.LevelWarn)
	}
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

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
}
