package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapclean/internal/cli/config"
	"github.com/leapstack-labs/leapclean/internal/dataset"
	"github.com/leapstack-labs/leapclean/internal/diagnose"
	"github.com/leapstack-labs/leapclean/internal/plan"
	"github.com/leapstack-labs/leapclean/internal/registry"
	"github.com/leapstack-labs/leapclean/internal/state"
	"github.com/leapstack-labs/leapclean/internal/transform"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// ApplyOptions holds options for the apply command.
type ApplyOptions struct {
	PlanText    string
	OnUncovered string
	Out         string
	Threshold   float64
}

// NewApplyCommand creates the apply command.
func NewApplyCommand() *cobra.Command {
	opts := &ApplyOptions{}

	cmd := &cobra.Command{
		Use:   "apply <domain> <file.csv>",
		Short: "Apply a cleaning plan to a CSV file",
		Long: `Apply one cleaning domain to a CSV dataset non-interactively and
write the cleaned result.

The plan addresses columns by the ids shown by 'leapclean suggest'.
Columns the domain flags but the plan does not cover are resolved by
the --on-uncovered policy: "suggest" applies the recorded suggestion,
"leave" skips them. Without a policy, uncovered columns are an error.`,
		Example: `  # Fill columns 1 and 2 with the mean, drop column 5
  leapclean apply missing data.csv --plan "mean -1,2 ; drop_col -5"

  # Apply the suggested action everywhere
  leapclean apply outliers data.csv --plan "" --on-uncovered suggest

  # Write to a specific output file
  leapclean apply scaling data.csv --plan "standard -1,2" --out scaled.csv`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.PlanText, "plan", "", `Plan text, e.g. "mean -1,2 ; median -3"`)
	cmd.Flags().StringVar(&opts.OnUncovered, "on-uncovered", "", "Policy for uncovered columns: suggest or leave")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output CSV path (default <file>_cleaned.csv)")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "Correlation threshold (default from config)")

	return cmd
}

func runApply(cmd *cobra.Command, domainArg, path string, opts *ApplyOptions) error {
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
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Nothing to do: %s\n", insufficient.Error())
			return nil
		}
		return err
	}

	callerPlan, problems := plan.Parse(domain, opts.PlanText)
	for _, p := range problems {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", p)
	}
	callerPlan, invalid := registry.FilterPlan(descs, callerPlan)
	for _, id := range invalid {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: ignored unknown column id %d\n", id)
	}

	resolution := plan.NewResolution(domain, callerPlan, diagnose.EligibleIDs(suggestions), suggestions)
	if !resolution.Done() {
		switch opts.OnUncovered {
		case "suggest":
			if err := resolution.Apply(plan.Decision{Kind: plan.DecisionSuggest}); err != nil {
				return err
			}
		case "leave":
			if err := resolution.Apply(plan.Decision{Kind: plan.DecisionLeave}); err != nil {
				return err
			}
		case "":
			return fmt.Errorf("plan leaves columns %v uncovered; supply --on-uncovered suggest|leave or extend the plan", resolution.Uncovered())
		default:
			return fmt.Errorf("unknown --on-uncovered policy %q (want suggest or leave)", opts.OnUncovered)
		}
	}

	res, err := transform.Apply(ds, domain, resolution.Plan(), descs, suggestions)
	if err != nil {
		return err
	}

	renderResult(cmd.OutOrStdout(), res)

	if res.Applied() {
		if err := recordBatch(cfg, uuid.NewString(), filepath.Base(path), res); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not record history: %v\n", err)
		}
	}

	out := opts.Out
	if out == "" {
		out = strings.TrimSuffix(path, ".csv") + "_cleaned.csv"
	}
	if err := dataset.WriteFile(out, ds); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows, %d columns)\n", out, ds.Rows(), ds.NumCols())
	return nil
}

// recordBatch writes one applied batch to the history database.
func recordBatch(cfg *config.Config, sessionID, datasetName string, res *transform.Result) error {
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return store.RecordBatch(&state.Batch{
		SessionID:   sessionID,
		Dataset:     datasetName,
		Step:        res.Entry.Step,
		Ops:         res.Entry.Ops,
		RowsRemoved: res.RowsRemoved,
		ColsDropped: res.Dropped,
	})
}
