package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/recoveryd-dev/recoveryd/internal/cli/commands"
	"github.com/recoveryd-dev/recoveryd/internal/config"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree writing command output to out
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &commands.Options{Out: out}

	rootCmd := &cobra.Command{
		Use:   "recoveryd",
		Short: "recoveryd - diagnose failures and restore from backups",
		Long: `recoveryd diagnoses application failures from error logs, suggests repair
scripts, and restores backups into the application's data directory, applying
migration scripts when the backup predates the running code.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Configuration file (default $CONFIG_PATH or config.yaml)")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Override the configured log level")
	flags.StringVar(&opts.LogFormat, "log-format", "", "Override the configured log format (json or console)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recoveryd version %s\n", version)
		},
	})

	rootCmd.AddCommand(commands.NewRestoreCmd(opts))
	rootCmd.AddCommand(commands.NewAnalyzeCmd(opts))
	rootCmd.AddCommand(commands.NewRepairCmd(opts))
	rootCmd.AddCommand(commands.NewIntelligentRestoreCmd(opts))
	rootCmd.AddCommand(commands.NewServeCmd(opts, version))

	rootCmd.SetOut(out)
	return rootCmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	return run(NewRootCmd(os.Stdout), os.Args[1:], os.Stderr)
}

func run(rootCmd *cobra.Command, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *commands.ExitError
	switch {
	case errors.As(err, &exitErr):
		if exitErr.Message != "" {
			fmt.Fprintf(stderr, "Error: %s\n", exitErr.Message)
		}
		return exitErr.Code
	case errors.Is(err, config.ErrConfigFile), errors.Is(err, config.ErrConfigValidation):
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return 1
}
