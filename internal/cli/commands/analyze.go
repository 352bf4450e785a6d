package commands

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapclean/internal/analyze"
	"github.com/leapstack-labs/leapclean/internal/dataset"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <univariate|bivariate> <file.csv>",
		Short: "Summarize the numeric columns of a CSV dataset",
		Long: `Print describe-style statistics for each numeric column (univariate)
or the pairwise correlation matrix (bivariate).`,
		Example: `  # Per-column summary statistics
  leapclean analyze univariate data.csv

  # Correlation matrix as JSON
  leapclean analyze bivariate data.csv --json`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"univariate", "bivariate"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], args[1], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func runAnalyze(cmd *cobra.Command, kind, path string, asJSON bool) error {
	ds, err := dataset.ReadFile(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch kind {
	case "univariate":
		rows, err := analyze.Univariate(ds)
		if err != nil {
			return analyzeErr(cmd, err)
		}
		if asJSON {
			return renderJSON(out, rows)
		}
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max", "Skew", "% Zeros"})
		for _, r := range rows {
			t.AppendRow(table.Row{r.Column, r.Count, r.Mean, r.Std, r.Min, r.Q25, r.Median, r.Q75, r.Max, r.Skew, r.PctZeros})
		}
		t.Render()
		return nil
	case "bivariate":
		matrix, err := analyze.Bivariate(ds)
		if err != nil {
			return analyzeErr(cmd, err)
		}
		if asJSON {
			return renderJSON(out, matrix)
		}
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.SetStyle(table.StyleLight)
		header := table.Row{""}
		for _, name := range matrix.Columns {
			header = append(header, name)
		}
		t.AppendHeader(header)
		for i, name := range matrix.Columns {
			row := table.Row{name}
			for _, v := range matrix.Values[i] {
				row = append(row, v)
			}
			t.AppendRow(row)
		}
		t.Render()
		return nil
	default:
		return fmt.Errorf("unknown analysis %q (want univariate or bivariate)", kind)
	}
}

func analyzeErr(cmd *cobra.Command, err error) error {
	var insufficient *core.InsufficientDataError
	if errors.As(err, &insufficient) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Nothing to analyze: %s\n", insufficient.Error())
		return nil
	}
	return err
}
