package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/inbox-reconcile/internal/api/dto"
	"github.com/eshaffer321/inbox-reconcile/internal/domain/matcher"
)

// RunFlags are the flags of the run command.
type RunFlags struct {
	TeamID string
	DryRun bool
}

// Register adds the flags to cmd.
func (f *RunFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.TeamID, "team", "", "Team to reconcile")
	cmd.Flags().BoolVar(&f.DryRun, "dry-run", false, "Score and report without saving decisions")
}

// ScoreFlags describe one inbox item and one transaction on the command line.
type ScoreFlags struct {
	Inbox          dto.RecordInput
	Transaction    dto.RecordInput
	EmbeddingScore float64
}

// Register adds the flags to cmd.
func (f *ScoreFlags) Register(cmd *cobra.Command) {
	registerRecord(cmd, "inbox", &f.Inbox)
	registerRecord(cmd, "tx", &f.Transaction)
	cmd.Flags().StringVar(&f.Inbox.Type, "inbox-type", "", "Inbox record type: invoice or expense")
	cmd.Flags().Float64Var(&f.EmbeddingScore, "embedding", f.EmbeddingScore,
		"Descriptor similarity in [0,1]; negative asks the configured provider")
}

func registerRecord(cmd *cobra.Command, prefix string, in *dto.RecordInput) {
	fs := cmd.Flags()
	fs.StringVar(&in.Amount, prefix+"-amount", "", "Signed amount")
	fs.StringVar(&in.Currency, prefix+"-currency", "", "ISO 4217 currency code")
	fs.StringVar(&in.BaseAmount, prefix+"-base-amount", "", "Amount converted to the team base currency")
	fs.StringVar(&in.BaseCurrency, prefix+"-base-currency", "", "Team base currency")
	fs.StringVar(&in.Date, prefix+"-date", "", "Date as YYYY-MM-DD")
	fs.StringVar(&in.Description, prefix+"-description", "", "Free-text descriptor")
}

// Records parses the flags into matcher records. A nil embedding score means
// the similarity provider should be asked.
func (f *ScoreFlags) Records() (inbox, tx matcher.Record, embedding *float64, err error) {
	if inbox, err = f.Inbox.Record("inbox-"); err != nil {
		return inbox, tx, nil, err
	}
	if tx, err = f.Transaction.Record("tx-"); err != nil {
		return inbox, tx, nil, err
	}
	if f.EmbeddingScore > 1 {
		return inbox, tx, nil, fmt.Errorf("--embedding must be at most 1, got %v", f.EmbeddingScore)
	}
	if f.EmbeddingScore >= 0 {
		score := f.EmbeddingScore
		embedding = &score
	}
	return inbox, tx, embedding, nil
}
