package diagnose

import (
	"math"

	"github.com/leapstack-labs/leapclean/internal/stats"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// Correlation flags numeric columns participating in a pair whose
// absolute Pearson coefficient exceeds the threshold. Only the upper
// triangle of the matrix is considered so symmetric pairs are not
// double-counted, but every member of a flagged pair is suggested
// `drop`: the engine does not pick a better side, that asymmetry is
// left to the caller or to uncovered-column resolution.
//
// Coefficients are computed over pairwise-complete observations (rows
// where both columns are present). Fewer than two numeric columns
// yields *core.InsufficientDataError.
func Correlation(ds *core.Dataset, descs []core.ColumnDescriptor, threshold float64) (core.Suggestions, error) {
	if threshold <= 0 {
		threshold = DefaultCorrelationThreshold
	}

	var numeric []core.ColumnDescriptor
	for _, d := range descs {
		if d.Type == core.Numeric {
			numeric = append(numeric, d)
		}
	}
	if len(numeric) < 2 {
		return nil, &core.InsufficientDataError{
			Domain: core.DomainCorrelation,
			Reason: "fewer than 2 numeric columns",
		}
	}

	out := make(core.Suggestions)
	flag := func(d core.ColumnDescriptor, partner string, coeff float64) {
		rec, ok := out[d.ID]
		if !ok {
			rec = core.DiagnosticRecord{ID: d.ID, Column: d.Name, Action: core.ActionDrop}
		}
		rec.CorrelatedWith = append(rec.CorrelatedWith, core.CorrelationPair{
			Column:      partner,
			Coefficient: round2(coeff),
		})
		out[d.ID] = rec
	}

	for i := 0; i < len(numeric); i++ {
		for j := i + 1; j < len(numeric); j++ {
			ci, _ := ds.Column(numeric[i].Name)
			cj, _ := ds.Column(numeric[j].Name)
			coeff := math.Abs(pairwiseCorrelation(ci, cj))
			if math.IsNaN(coeff) || coeff <= threshold {
				continue
			}
			flag(numeric[i], numeric[j].Name, coeff)
			flag(numeric[j], numeric[i].Name, coeff)
		}
	}
	return out, nil
}

// pairwiseCorrelation correlates the rows where both columns are
// present.
func pairwiseCorrelation(a, b *core.Column) float64 {
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
