package diagnose

import (
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// Encoding suggests an encoding strategy for every categorical
// column: one_hot when cardinality is at most 10, label otherwise.
func Encoding(ds *core.Dataset, descs []core.ColumnDescriptor) core.Suggestions {
	out := make(core.Suggestions)
	for _, d := range descs {
		if d.Type != core.Categorical {
			continue
		}
		col, ok := ds.Column(d.Name)
		if !ok {
			continue
		}
		card := col.UniqueCount()
		action := core.ActionLabel
		if card <= oneHotMaxCard {
			action = core.ActionOneHot
		}
		out[d.ID] = core.DiagnosticRecord{
			ID:          d.ID,
			Column:      d.Name,
			Action:      action,
			Cardinality: card,
		}
	}
	return out
}
