package diagnose

import (
	"math"

	"github.com/leapstack-labs/leapclean/internal/stats"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// Missing suggests an imputation action for every column with at
// least one missing value. Columns with zero missing values are
// excluded entirely.
//
// Rule table: missing% > 50 suggests drop_col regardless of dtype;
// categorical columns suggest mode; numeric columns suggest median
// when |skew| > 1 and mean otherwise.
func Missing(ds *core.Dataset, descs []core.ColumnDescriptor) core.Suggestions {
	out := make(core.Suggestions)
	for _, d := range descs {
		if d.PctMissing <= 0 {
			continue
		}
		col, ok := ds.Column(d.Name)
		if !ok {
			continue
		}
		rec := core.DiagnosticRecord{
			ID:         d.ID,
			Column:     d.Name,
			MissingPct: d.PctMissing,
		}
		switch {
		case d.PctMissing > missingDropPct:
			rec.Action = core.ActionDropCol
		case d.Type == core.Categorical:
			rec.Action = core.ActionMode
		default:
			skew := stats.Skew(col.NonMissingNums())
			rec.Skew = skew
			if math.Abs(skew) > skewCutoff {
				rec.Action = core.ActionMedian
			} else {
				rec.Action = core.ActionMean
			}
		}
		out[d.ID] = rec
	}
	return out
}
