package diagnose

import (
	"math"

	"github.com/leapstack-labs/leapclean/internal/stats"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// Scaling suggests a scaler for every numeric column with more than
// two distinct values; binary and one-hot indicator columns are
// excluded. Roughly symmetric columns (|skew| < 1) suggest standard,
// skewed ones minmax.
func Scaling(ds *core.Dataset, descs []core.ColumnDescriptor) core.Suggestions {
	out := make(core.Suggestions)
	for _, d := range descs {
		if d.Type != core.Numeric {
			continue
		}
		col, ok := ds.Column(d.Name)
		if !ok {
			continue
		}
		card := col.UniqueCount()
		if card <= scalingMinCard {
			continue
		}
		skew := stats.Skew(col.NonMissingNums())
		action := core.ActionMinMax
		if math.Abs(skew) < skewCutoff {
			action = core.ActionStandard
		}
		out[d.ID] = core.DiagnosticRecord{
			ID:          d.ID,
			Column:      d.Name,
			Action:      action,
			Cardinality: card,
			Skew:        round2(skew),
		}
	}
	return out
}
