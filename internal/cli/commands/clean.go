package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapclean/internal/advisor"
	cliconfig "github.com/leapstack-labs/leapclean/internal/cli/config"
	"github.com/leapstack-labs/leapclean/internal/dataset"
	"github.com/leapstack-labs/leapclean/internal/diagnose"
	"github.com/leapstack-labs/leapclean/internal/export"
	"github.com/leapstack-labs/leapclean/internal/plan"
	"github.com/leapstack-labs/leapclean/internal/registry"
	"github.com/leapstack-labs/leapclean/internal/session"
	"github.com/leapstack-labs/leapclean/internal/state"
	"github.com/leapstack-labs/leapclean/internal/transform"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// cleanDomains is the pipeline order the interactive walk follows.
var cleanDomains = []core.Domain{
	core.DomainMissing,
	core.DomainOutliers,
	core.DomainCorrelation,
	core.DomainEncoding,
	core.DomainScaling,
}

// CleanOptions holds options for the clean command.
type CleanOptions struct {
	Out       string
	Notebook  string
	Threshold float64
	NoAdvisor bool
}

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	opts := &CleanOptions{}

	cmd := &cobra.Command{
		Use:   "clean <file.csv>",
		Short: "Interactively clean a CSV dataset",
		Long: `Walk a CSV dataset through the full cleaning pipeline: column
pruning, missing values, outliers, multicollinearity, categorical
encoding and feature scaling.

Each step shows per-column diagnostics and a suggested action; accept
the suggestions with Enter, type a plan like "mean -1,2 ; drop_col -5",
or type "skip" to leave the step alone. The applied steps are exported
as a Jupyter notebook at the end.`,
		Example: `  # Clean a dataset interactively
  leapclean clean data.csv

  # Custom output locations
  leapclean clean data.csv --out cleaned.csv --notebook workflow.ipynb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Cleaned CSV path (default <file>_cleaned.csv)")
	cmd.Flags().StringVar(&opts.Notebook, "notebook", "preprocessing_workflow.ipynb", "Notebook export path")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "Correlation threshold (default from config)")
	cmd.Flags().BoolVar(&opts.NoAdvisor, "no-advisor", false, "Disable the Gemini step advisor")

	return cmd
}

// cleanRun bundles the state threaded through the interactive walk.
type cleanRun struct {
	cmd      *cobra.Command
	rl       *readline.Instance
	sessions *session.Store
	history  *state.SQLiteStore
	advisor  core.Advisor
	id       string
	name     string
	ds       *core.Dataset
}

func runClean(cmd *cobra.Command, path string, opts *CleanOptions) error {
	cfg := getConfig()
	logger := cliconfig.GetLogger(cmd.Context())
	ctx := cmd.Context()

	ds, err := dataset.ReadFile(path)
	if err != nil {
		return err
	}

	history, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = history.Close() }()

	var adv core.Advisor
	if cfg.AdvisorAPIKey != "" && !opts.NoAdvisor {
		adv, err = advisor.New(ctx, cfg.AdvisorAPIKey, cfg.AdvisorModel, logger)
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: advisor unavailable: %v\n", err)
			adv = nil
		}
	}

	sessions := session.NewStore(session.WithLogger(logger))
	name := filepath.Base(path)
	id := sessions.Create(name, ds)
	_ = sessions.AppendLog(id, dataset.LoadEntry(name))

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "leapclean> ",
		HistoryFile:     filepath.Join(filepath.Dir(cfg.StatePath), "clean_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "skip",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	run := &cleanRun{
		cmd:      cmd,
		rl:       rl,
		sessions: sessions,
		history:  history,
		advisor:  adv,
		id:       id,
		name:     name,
		ds:       ds,
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Loaded %s (%d rows, %d columns)\n\n", name, ds.Rows(), ds.NumCols())
	renderDescriptors(out, registry.Describe(ds))

	if err := run.dropStep(); err != nil {
		return err
	}

	threshold := cfg.CorrelationThreshold
	if opts.Threshold > 0 {
		threshold = opts.Threshold
	}
	for _, domain := range cleanDomains {
		if err := run.domainStep(ctx, domain, threshold); err != nil {
			return err
		}
	}

	// Export the replay notebook and the cleaned data.
	log, err := sessions.Log(id)
	if err != nil {
		return err
	}
	nbPath, err := export.WriteNotebook(opts.Notebook, log)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "\nWrote notebook %s\n", nbPath)

	outPath := opts.Out
	if outPath == "" {
		outPath = strings.TrimSuffix(path, ".csv") + "_cleaned.csv"
	}
	if err := dataset.WriteFile(outPath, run.ds); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Wrote %s (%d rows, %d columns)\n", outPath, run.ds.Rows(), run.ds.NumCols())
	return nil
}

// prompt reads one trimmed line. EOF and interrupt both read as an
// empty answer so the walk degrades to accepting defaults.
func (r *cleanRun) prompt(text string) string {
	r.rl.SetPrompt(text)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(line)
}

// dropStep asks for column ids to prune before diagnostics begin.
func (r *cleanRun) dropStep() error {
	out := r.cmd.OutOrStdout()
	answer := r.prompt("Columns to drop (ids, blank to skip): ")
	if answer == "" {
		return nil
	}

	ids, problems := plan.ParseIDList(answer)
	for _, p := range problems {
		_, _ = fmt.Fprintf(out, "Ignored: %s\n", p)
	}
	descs := registry.Describe(r.ds)
	names, invalid := registry.Names(descs, ids)
	for _, id := range invalid {
		_, _ = fmt.Fprintf(out, "Ignored unknown column id %d\n", id)
	}
	if len(names) == 0 {
		return nil
	}

	res := transform.DropColumns(r.ds, names)
	renderResult(out, res)
	return r.finishBatch(res)
}

// domainStep runs one domain of the pipeline: diagnose, prompt for a
// plan, resolve coverage, consult the advisor, apply.
func (r *cleanRun) domainStep(ctx context.Context, domain core.Domain, threshold float64) error {
	out := r.cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "\n== %s ==\n", domain.Step())

	descs := registry.Describe(r.ds)
	suggestions, err := diagnose.Suggest(domain, r.ds, descs, threshold)
	if err != nil {
		var insufficient *core.InsufficientDataError
		if errors.As(err, &insufficient) {
			_, _ = fmt.Fprintf(out, "Skipped: %s\n", insufficient.Error())
			return nil
		}
		return err
	}
	if len(suggestions) == 0 {
		_, _ = fmt.Fprintln(out, "No columns flagged.")
		return nil
	}
	renderSuggestions(out, domain, suggestions)

	resolution, ok := r.promptPlan(domain, descs, suggestions)
	if !ok {
		_, _ = fmt.Fprintln(out, "Left as-is.")
		return nil
	}

	resolved := resolution.Plan()
	if r.advisor != nil {
		r.consultAdvisor(ctx, domain, resolved, descs)
	}

	res, err := transform.Apply(r.ds, domain, resolved, descs, suggestions)
	if err != nil {
		return err
	}
	renderResult(out, res)
	return r.finishBatch(res)
}

// promptPlan collects a plan for the domain and resolves coverage.
// The second return is false when the user skipped the step.
func (r *cleanRun) promptPlan(domain core.Domain, descs []core.ColumnDescriptor, suggestions core.Suggestions) (*plan.Resolution, bool) {
	out := r.cmd.OutOrStdout()
	eligible := diagnose.EligibleIDs(suggestions)

	for {
		answer := r.prompt(fmt.Sprintf("%s plan (Enter = suggestions, 'skip' = leave): ", domain))
		if answer == "skip" {
			return nil, false
		}

		if answer == "" {
			resolution := plan.NewResolution(domain, core.Plan{}, eligible, suggestions)
			_ = resolution.Apply(plan.Decision{Kind: plan.DecisionSuggest})
			return resolution, true
		}

		callerPlan, problems := plan.Parse(domain, answer)
		if len(problems) > 0 {
			_, _ = fmt.Fprintf(out, "Invalid plan: %s\n", strings.Join(problems, "; "))
			continue
		}
		callerPlan, invalid := registry.FilterPlan(descs, callerPlan)
		for _, id := range invalid {
			_, _ = fmt.Fprintf(out, "Ignored unknown column id %d\n", id)
		}

		resolution := plan.NewResolution(domain, callerPlan, eligible, suggestions)
		for !resolution.Done() {
			supplement := r.prompt(fmt.Sprintf("Uncovered ids %v (plan, Enter = suggestions, 'leave'): ", resolution.Uncovered()))
			switch supplement {
			case "":
				_ = resolution.Apply(plan.Decision{Kind: plan.DecisionSuggest})
			case "leave":
				_ = resolution.Apply(plan.Decision{Kind: plan.DecisionLeave})
			default:
				more, problems := plan.Parse(domain, supplement)
				if len(problems) > 0 {
					_, _ = fmt.Fprintf(out, "Invalid plan: %s\n", strings.Join(problems, "; "))
					continue
				}
				_ = resolution.Apply(plan.Decision{Kind: plan.DecisionSupplement, Plan: more})
			}
		}
		return resolution, true
	}
}

// consultAdvisor asks Gemini for an opinion on the resolved plan and
// prints whatever comes back. Advisory failures never block the step.
func (r *cleanRun) consultAdvisor(ctx context.Context, domain core.Domain, resolved core.Plan, descs []core.ColumnDescriptor) {
	out := r.cmd.OutOrStdout()

	var parts []string
	var columns []string
	for _, action := range domain.Actions() {
		ids := resolved[action]
		if len(ids) == 0 {
			continue
		}
		names, _ := registry.Names(descs, ids)
		columns = append(columns, names...)
		parts = append(parts, fmt.Sprintf("%s: %s", action, strings.Join(names, ", ")))
	}
	if len(parts) == 0 {
		return
	}

	advisory, err := r.advisor.Validate(ctx, domain.Step(), strings.Join(parts, "; "), columns, map[string]any{
		"rows":    r.ds.Rows(),
		"columns": r.ds.NumCols(),
	})
	if err != nil {
		_, _ = fmt.Fprintf(out, "Advisor unavailable: %v\n", err)
		return
	}

	for _, w := range advisory.Warnings {
		_, _ = fmt.Fprintf(out, "Advisor warning: %s\n", w)
	}
	if advisory.Recommendation != "" {
		_, _ = fmt.Fprintf(out, "Advisor: %s\n", advisory.Recommendation)
	}
}

// finishBatch updates the session and records the batch in history.
func (r *cleanRun) finishBatch(res *transform.Result) error {
	if !res.Applied() {
		return nil
	}
	if err := r.sessions.Save(r.id, r.ds); err != nil {
		return err
	}
	if err := r.sessions.AppendLog(r.id, res.Entry); err != nil {
		return err
	}
	if err := r.history.RecordBatch(&state.Batch{
		SessionID:   r.id,
		Dataset:     r.name,
		Step:        res.Entry.Step,
		Ops:         res.Entry.Ops,
		RowsRemoved: res.RowsRemoved,
		ColsDropped: res.Dropped,
	}); err != nil {
		_, _ = fmt.Fprintf(r.cmd.ErrOrStderr(), "Warning: could not record history: %v\n", err)
	}
	return nil
}
