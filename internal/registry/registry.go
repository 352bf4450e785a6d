// Package registry computes and resolves column descriptors. It owns
// the id-to-column mapping that every plan addresses columns through.
//
// Ids are positional: a contiguous 1..N range over the current column
// order. They are invalidated by any structural mutation, so Describe
// must be called again after every operation that changes the column
// count or order. Nothing here caches descriptors across calls.
package registry

import (
	"math"

	"github.com/leapstack-labs/leapclean/pkg/core"
)

// Describe recomputes id, name, dtype, unique% and missing% for every
// column in current left-to-right order.
func Describe(ds *core.Dataset) []core.ColumnDescriptor {
	cols := ds.Columns()
	descs := make([]core.ColumnDescriptor, len(cols))
	rows := ds.Rows()
	for i, c := range cols {
		var pctUnique, pctMissing float64
		if rows > 0 {
			pctUnique = round2(float64(c.UniqueCount()) / float64(rows) * 100)
			pctMissing = round2(float64(c.MissingCount()) / float64(rows) * 100)
		}
		descs[i] = core.ColumnDescriptor{
			ID:         i + 1,
			Name:       c.Name,
			Type:       c.Type,
			PctUnique:  pctUnique,
			PctMissing: pctMissing,
		}
	}
	return descs
}

// Resolve maps an id to its column name against the given descriptors,
// failing with *core.UnknownColumnError outside the [1, N] range.
func Resolve(descs []core.ColumnDescriptor, id int) (string, error) {
	if id < 1 || id > len(descs) {
		return "", &core.UnknownColumnError{ID: id, Max: len(descs)}
	}
	return descs[id-1].Name, nil
}

// Names resolves a batch of ids to column names, partitioning out the
// ids that fall outside the current range. Invalid ids are reported,
// not fatal.
func Names(descs []core.ColumnDescriptor, ids []int) (names []string, invalid []int) {
	for _, id := range ids {
		name, err := Resolve(descs, id)
		if err != nil {
			invalid = append(invalid, id)
			continue
		}
		names = append(names, name)
	}
	return names, invalid
}

// ValidIDs returns the subset of ids inside the current range.
func ValidIDs(descs []core.ColumnDescriptor, ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id >= 1 && id <= len(descs) {
			out = append(out, id)
		}
	}
	return out
}

// FilterPlan drops plan entries whose ids are outside the current
// range, returning the filtered plan and the rejected ids.
func FilterPlan(descs []core.ColumnDescriptor, p core.Plan) (core.Plan, []int) {
	out := make(core.Plan, len(p))
	var invalid []int
	for action, ids := range p {
		for _, id := range ids {
			if id < 1 || id > len(descs) {
				invalid = append(invalid, id)
				continue
			}
			out[action] = append(out[action], id)
		}
	}
	return out, invalid
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
