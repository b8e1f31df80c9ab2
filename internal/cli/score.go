package cli

import (
	"github.com/spf13/cobra"
)

func newScoreCommand(opts *globalOptions) *cobra.Command {
	flags := ScoreFlags{EmbeddingScore: -1}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one inbox item against one transaction",
		Example: `  reconcile score --inbox-amount 599 --inbox-currency SEK --inbox-date 2024-08-23 \
    --tx-amount -599 --tx-currency SEK --tx-date 2024-08-25 --embedding 0.9`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inbox, tx, embedding, err := flags.Records()
			if err != nil {
				return err
			}

			cfg, logger, err := opts.load(cmd, "score")
			if err != nil {
				return err
			}
			m, sim, err := newScoring(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			// scoring a pair never touches storage
			svc := newScoringService(m, sim, logger)
			result, err := svc.ScorePair(cmd.Context(), inbox, tx, embedding)
			if err != nil {
				return err
			}

			PrintScore(cmd.OutOrStdout(), result)
			return nil
		},
	}

	flags.Register(cmd)
	return cmd
}
