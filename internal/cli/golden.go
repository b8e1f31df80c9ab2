package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/inbox-reconcile/internal/domain/golden"
	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

func newGoldenCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "golden <file>",
		Short: "Check the configured matcher against a golden dataset",
		Long: `Scores every case of a golden dataset with the configured weights and
thresholds and reports the cases whose scores fall outside their expected
ranges. Exits non-zero when any case fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd, "golden")
			if err != nil {
				return err
			}
			mc, err := cfg.MatcherConfig()
			if err != nil {
				return err
			}

			ds, err := golden.Load(args[0])
			if err != nil {
				return err
			}

			report := golden.Evaluate(matcher.NewMatcher(mc), ds)
			PrintGoldenReport(cmd.OutOrStdout(), report, opts.verbose)

			if !report.OK() {
				return fmt.Errorf("%d of %d golden cases failed", report.Failed, len(report.Results))
			}
			return nil
		},
	}
}
