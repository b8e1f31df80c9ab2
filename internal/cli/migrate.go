package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/inbox-reconcile/internal/infrastructure/storage"
)

func newMigrateCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd, "storage")
			if err != nil {
				return err
			}

			// Open applies pending migrations
			store, err := storage.Open(cmd.Context(), cfg.Storage.Driver, cfg.Storage.DSN, storage.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			version, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s schema at version %d\n", store.Driver(), version)
			return nil
		},
	}
}
