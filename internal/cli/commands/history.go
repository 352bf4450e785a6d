package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapclean/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Session string
	Limit   int
	JSON    bool
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded cleaning batches",
		Long: `List the cleaning batches recorded in the history database,
newest first. With --session, list that session's batches in apply order.`,
		Example: `  # Last 20 batches across all sessions
  leapclean history --limit 20

  # Full history for one session
  leapclean history --session 2f9c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "Session id to list")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "Maximum number of batches")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output batches as JSON")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cfg := getConfig()

	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var batches []*state.Batch
	if opts.Session != "" {
		batches, err = store.ListBatches(opts.Session)
	} else {
		batches, err = store.ListRecent(opts.Limit)
	}
	if err != nil {
		return err
	}

	if opts.JSON {
		return renderJSON(cmd.OutOrStdout(), batches)
	}
	renderHistory(cmd.OutOrStdout(), batches)
	return nil
}
