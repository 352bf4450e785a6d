package diagnose

import (
	"math"
	"strings"

	"github.com/leapstack-labs/leapclean/internal/stats"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// Outliers detects outliers in numeric columns with the IQR method
// and suggests a treatment per affected column. Bounds are
// [Q1-1.5*IQR, Q3+1.5*IQR]; columns with zero outliers are excluded.
// The recorded bounds are the contract for a later cap/remove_rows
// apply: they are not recomputed after earlier mutations in the same
// batch.
//
// Rule table: outlier% > 10 suggests remove_rows, otherwise cap. A
// column whose name contains "rain" also maps to cap; the original
// rule is identical to the default and is kept as an explicit no-op
// rather than removed silently.
func Outliers(ds *core.Dataset, descs []core.ColumnDescriptor) core.Suggestions {
	out := make(core.Suggestions)
	rows := ds.Rows()
	if rows == 0 {
		return out
	}
	for _, d := range descs {
		if d.Type != core.Numeric {
			continue
		}
		col, ok := ds.Column(d.Name)
		if !ok {
			continue
		}
		vals := col.NonMissingNums()
		if len(vals) == 0 {
			continue
		}
		q1 := stats.Quantile(vals, 0.25)
		q3 := stats.Quantile(vals, 0.75)
		iqr := q3 - q1
		lower := q1 - 1.5*iqr
		upper := q3 + 1.5*iqr

		count := 0
		for i, v := range col.Nums {
			if col.Null[i] {
				continue
			}
			if v < lower || v > upper {
				count++
			}
		}
		if count == 0 {
			continue
		}
		pct := round2(float64(count) / float64(rows) * 100)

		var action core.Action
		switch {
		case pct > outlierRemovePct:
			action = core.ActionRemoveRows
		case strings.Contains(strings.ToLower(d.Name), "rain"):
			action = core.ActionCap
		default:
			action = core.ActionCap
		}

		out[d.ID] = core.DiagnosticRecord{
			ID:           d.ID,
			Column:       d.Name,
			Action:       action,
			OutlierCount: count,
			OutlierPct:   pct,
			LowerBound:   round2(lower),
			UpperBound:   round2(upper),
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
