package cli

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/inbox-reconcile/internal/application/reconcile"
)

func newRunCommand(opts *globalOptions) *cobra.Command {
	var flags RunFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile a team's pending inbox items against unmatched transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(cmd, "reconcile")
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			out := cmd.OutOrStdout()
			PrintHeader(out, flags.TeamID, flags.DryRun)

			result, err := a.service.Run(cmd.Context(), reconcile.RunRequest{
				TeamID: flags.TeamID,
				DryRun: flags.DryRun,
			})
			if err != nil {
				return err
			}

			PrintRunSummary(out, result)
			return nil
		},
	}

	flags.Register(cmd)
	_ = cmd.MarkFlagRequired("team")
	return cmd
}
