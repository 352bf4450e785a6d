package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapclean/internal/dataset"
	"github.com/leapstack-labs/leapclean/internal/diagnose"
	"github.com/leapstack-labs/leapclean/internal/registry"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// SuggestOptions holds options for the suggest command.
type SuggestOptions struct {
	Threshold float64
	JSON      bool
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand() *cobra.Command {
	opts := &SuggestOptions{}

	cmd := &cobra.Command{
		Use:   "suggest <domain> <file.csv>",
		Short: "Show suggested actions for one cleaning domain",
		Long: `Diagnose a CSV dataset for one cleaning domain and print the
suggested per-column actions without applying anything.

Domains: missing, outliers, correlation, encoding, scaling`,
		Example: `  # Suggest missing-value treatments
  leapclean suggest missing data.csv

  # Correlation suggestions with a custom threshold
  leapclean suggest correlation data.csv --threshold 0.85

  # Machine-readable output
  leapclean suggest outliers data.csv --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "Correlation threshold (default from config)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output suggestions as JSON")

	return cmd
}

func runSuggest(cmd *cobra.Command, domainArg, path string, opts *SuggestOptions) error {
	cfg := getConfig()

	domain, err := core.ParseDomain(domainArg)
	if err != nil {
		return err
	}

	ds, err := dataset.ReadFile(path)
	if err != nil {
		return err
	}

	threshold := cfg.CorrelationThreshold
	if opts.Threshold > 0 {
		threshold = opts.Threshold
	}

	descs := registry.Describe(ds)
	suggestions, err := diagnose.Suggest(domain, ds, descs, threshold)
	if err != nil {
		var insufficient *core.InsufficientDataError
		if errors.As(err, &insufficient) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "No suggestions: %s\n", insufficient.Error())
			return nil
		}
		return err
	}

	if opts.JSON {
		return renderJSON(cmd.OutOrStdout(), sortedRecords(suggestions))
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows, %d columns)\n\n", domain.Step(), ds.Rows(), ds.NumCols())
	renderSuggestions(cmd.OutOrStdout(), domain, suggestions)
	return nil
}
