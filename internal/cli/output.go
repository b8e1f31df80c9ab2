package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/eshaffer321/inbox-reconcile/internal/application/reconcile"
	"github.com/eshaffer321/inbox-reconcile/internal/domain/golden"
	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

// PrintHeader prints the run header
func PrintHeader(w io.Writer, teamID string, dryRun bool) {
	mode := "PRODUCTION"
	if dryRun {
		mode = "DRY-RUN"
	}
	fmt.Fprintf(w, "reconcile: team %s (%s mode)\n\n", teamID, mode)
}

// PrintRunSummary prints the decisions of a run and its counters
func PrintRunSummary(w io.Writer, result *reconcile.RunResult) {
	if len(result.Decisions) > 0 {
		fmt.Fprintf(w, "%-24s %-24s %-10s %s\n", "INBOX", "TRANSACTION", "CONF", "DECISION")
		for _, d := range result.Decisions {
			fmt.Fprintf(w, "%-24s %-24s %-10.3f %s\n", d.InboxID, d.TransactionID, d.Confidence, d.Decision)
		}
		fmt.Fprintln(w)
	}

	run := result.Run
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Inbox=%d Transactions=%d Pairs=%d AutoMatched=%d Suggested=%d Conflicts=%d\n",
		run.InboxCount,
		run.TransactionCount,
		run.PairsScored,
		run.AutoMatched,
		run.Suggested,
		run.Conflicts)

	if run.DryRun {
		fmt.Fprintln(w, "\nDry run: no decisions were saved.")
	}
}

// PrintScore prints the component scores of a single pair
func PrintScore(w io.Writer, r matcher.MatchResult) {
	fmt.Fprintf(w, "amount     %.4f (%s)\n", r.Scores.Amount, r.AmountMode)
	fmt.Fprintf(w, "currency   %.4f\n", r.Scores.Currency)
	fmt.Fprintf(w, "date       %.4f\n", r.Scores.Date)
	fmt.Fprintf(w, "embedding  %.4f\n", r.Scores.Embedding)
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "confidence %.4f\n", r.Confidence)
	fmt.Fprintf(w, "decision   %s\n", r.Decision)
	if r.CrossCurrency {
		fmt.Fprintln(w, "cross-currency match")
	}
	if r.Gated {
		fmt.Fprintln(w, "gated: different currencies without a base amount match")
	}
}

// PrintGoldenReport prints failing cases, or every case when verbose
func PrintGoldenReport(w io.Writer, report *golden.Report, verbose bool) {
	for _, c := range report.Results {
		if c.Passed {
			if verbose {
				fmt.Fprintf(w, "PASS %s (confidence %.4f, %s)\n", c.Name, c.Result.Confidence, c.Result.Decision)
			}
			continue
		}
		fmt.Fprintf(w, "FAIL %s\n", c.Name)
		for _, f := range c.Failures {
			fmt.Fprintf(w, "     %s\n", f)
		}
	}
	fmt.Fprintf(w, "%s: %d passed, %d failed\n", report.Dataset, report.Passed, report.Failed)
}
