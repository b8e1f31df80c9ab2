package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/config"
	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/logging"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	verbose    bool
}

// NewRootCommand builds the reconcile command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "reconcile",
		Short: "Match inbox items against bank transactions",
		Long: `reconcile scores inbox items (receipts, invoices) against bank transactions
and auto-matches or suggests the pairs that are most likely the same payment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "Path to config file (falls back to environment variables)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(
		newServeCommand(opts),
		newRunCommand(opts),
		newScoreCommand(opts),
		newGoldenCommand(opts),
		newMigrateCommand(opts),
	)

	return root
}

// load reads the configuration and builds the logger for cmd. An explicit
// --config must load; the default path falls back to the environment.
func (o *globalOptions) load(cmd *cobra.Command, system string) (*config.Config, *slog.Logger, error) {
	var cfg *config.Config
	if cmd.Flags().Changed("config") {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrEnvWithPath(o.configPath)
	}

	if o.verbose {
		cfg.Observability.Logging.Level = "debug"
	}

	logger := logging.NewLoggerTo(cmd.ErrOrStderr(), cfg.Observability.Logging).With("system", system)
	return cfg, logger, nil
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}
