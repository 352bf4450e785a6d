// Package analyze computes describe-style summaries over a dataset:
// per-column univariate statistics and the pairwise correlation
// matrix of the numeric columns.
package analyze

import (
	"math"

	"github.com/leapstack-labs/leapclean/internal/stats"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// analysisDomain labels InsufficientDataError values raised here.
// Analysis is not one of the cleaning domains, so it gets its own tag
// rather than borrowing one of theirs.
const analysisDomain core.Domain = "analysis"

// UnivariateRow is one numeric column's summary row.
type UnivariateRow struct {
	Column   string  `json:"column"`
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"25%"`
	Median   float64 `json:"50%"`
	Q75      float64 `json:"75%"`
	Max      float64 `json:"max"`
	Skew     float64 `json:"skew"`
	PctZeros float64 `json:"pct_zeros"`
}

// Univariate summarizes every numeric column over its non-missing
// values. No numeric columns yields *core.InsufficientDataError.
func Univariate(ds *core.Dataset) ([]UnivariateRow, error) {
	var rows []UnivariateRow
	for _, c := range ds.Columns() {
		if c.Type != core.Numeric {
			continue
		}
		present := c.NonMissingNums()
		row := UnivariateRow{Column: c.Name, Count: len(present)}
		if len(present) > 0 {
			lo, hi := stats.MinMax(present)
			zeros := 0
			for _, v := range present {
				if v == 0 {
					zeros++
				}
			}
			row.Mean = round2(stats.Mean(present))
			row.Std = round2(stats.Std(present))
			row.Min = lo
			row.Q25 = round2(stats.Quantile(present, 0.25))
			row.Median = round2(stats.Median(present))
			row.Q75 = round2(stats.Quantile(present, 0.75))
			row.Max = hi
			row.Skew = round2(stats.Skew(present))
			row.PctZeros = round2(100 * float64(zeros) / float64(len(present)))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, &core.InsufficientDataError{
			Domain: analysisDomain,
			Reason: "no numeric columns to summarize",
		}
	}
	return rows, nil
}

// CorrelationMatrix is the symmetric Pearson matrix over the numeric
// columns, pairwise-complete per cell.
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Bivariate builds the correlation matrix. Fewer than two numeric
// columns yields *core.InsufficientDataError. Undefined cells
// (constant columns, no overlapping rows) are zero.
func Bivariate(ds *core.Dataset) (*CorrelationMatrix, error) {
	var numeric []*core.Column
	for _, c := range ds.Columns() {
		if c.Type == core.Numeric {
			numeric = append(numeric, c)
		}
	}
	if len(numeric) < 2 {
		return nil, &core.InsufficientDataError{
			Domain: core.DomainCorrelation,
			Reason: "fewer than 2 numeric columns",
		}
	}

	m := &CorrelationMatrix{
		Columns: make([]string, len(numeric)),
		Values:  make([][]float64, len(numeric)),
	}
	for i, c := range numeric {
		m.Columns[i] = c.Name
		m.Values[i] = make([]float64, len(numeric))
		m.Values[i][i] = 1
	}
	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			coeff := pairwise(numeric[i], numeric[j])
			if math.IsNaN(coeff) {
				coeff = 0
			}
			coeff = round2(coeff)
			m.Values[i][j] = coeff
			m.Values[j][i] = coeff
		}
	}
	return m, nil
}

// UnivariateEntry is the replay-log entry for a univariate pass. The
// replayed cell plots distributions; the numbers themselves are what
// the live summary table shows.
func UnivariateEntry() core.LogEntry {
	return core.LogEntry{
		Step: "Univariate Analysis",
		Ops: []string{
			"numeric_cols = df.select_dtypes(include=np.number).columns",
			"for col in numeric_cols:",
			"    fig, ax = plt.subplots(1, 2, figsize=(14, 5))",
			"    sns.histplot(df[col], kde=True, ax=ax[0])",
			"    ax[0].set_title(f'Dist of {col}')",
			"    sns.boxplot(x=df[col], ax=ax[1])",
			"    ax[1].set_title(f'Boxplot of {col}')",
			"    plt.show()",
		},
	}
}

// BivariateEntry is the replay-log entry for a correlation pass.
func BivariateEntry() core.LogEntry {
	return core.LogEntry{
		Step: "Bivariate Analysis",
		Ops: []string{
			"numeric_cols = df.select_dtypes(include=np.number).columns",
			"plt.figure(figsize=(10, 8))",
			"sns.heatmap(df[numeric_cols].corr(), annot=True, cmap='coolwarm', fmt='.2f')",
			"plt.title('Correlation Matrix')",
			"plt.show()",
		},
	}
}

func pairwise(a, b *core.Column) float64 {
	xs := make([]float64, 0, len(a.Nums))
	ys := make([]float64, 0, len(b.Nums))
	for i := range a.Nums {
		if a.Null[i] || b.Null[i] {
			continue
		}
		xs = append(xs, a.Nums[i])
		ys = append(ys, b.Nums[i])
	}
	return stats.Correlation(xs, ys)
}

func round2(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*100) / 100
}
