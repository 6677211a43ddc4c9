package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/askhq/ask/internal/cmd/cliopts"
	"github.com/askhq/ask/internal/logging"
)

// envPrefix is the prefix of every environment variable read by ask.
const envPrefix = "ASK"

// Run the main CLI command with the given args. The args should not contain
// the name of the binary (ex: os.Args[1:]).
func Run(ctx context.Context, args ...string) error {
	cli := newCLI(ctx)
	cmd := NewRootCmd(cli)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func NewRootCmd(cli *CLI) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:               "ask",
		Short:             "Ask is a question and answer website",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := cliopts.DefaultsFromEnv(envPrefix, cmd.Flags()); err != nil {
				return err
			}
			return logging.SetLevel(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(
		newServerCmd(),
		newVersionCmd(cli),
	)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Show logs at or above this level [error, warn, info, debug, trace]")
	rootCmd.SetOut(cli.Stdout)
	rootCmd.SetErr(cli.Stderr)
	return rootCmd
}

// canonicalPath expands environment variables and a leading ~ in path, and
// returns the absolute path.
func canonicalPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[2:])
	}

	return filepath.Abs(path)
}
