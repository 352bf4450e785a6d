// Package diagnose computes per-column diagnostics and derives one
// suggested action per affected column through deterministic rule
// tables, one per cleaning domain. Suggestion functions are pure over
// a dataset snapshot and its current descriptors; they never mutate
// the dataset and their results are never cached across calls.
package diagnose

import (
	"sort"

	"github.com/leapstack-labs/leapclean/pkg/core"
)

// DefaultCorrelationThreshold flags pairs whose absolute Pearson
// coefficient exceeds this value.
const DefaultCorrelationThreshold = 0.90

// Thresholds of the rule tables.
const (
	missingDropPct   = 50.0
	skewCutoff       = 1.0
	outlierRemovePct = 10.0
	oneHotMaxCard    = 10
	scalingMinCard   = 2
)

// Suggest dispatches to the domain's suggestion function. The
// threshold applies to the correlation domain only; pass zero for the
// default.
func Suggest(domain core.Domain, ds *core.Dataset, descs []core.ColumnDescriptor, threshold float64) (core.Suggestions, error) {
	switch domain {
	case core.DomainMissing:
		return Missing(ds, descs), nil
	case core.DomainOutliers:
		return Outliers(ds, descs), nil
	case core.DomainCorrelation:
		return Correlation(ds, descs, threshold)
	case core.DomainEncoding:
		return Encoding(ds, descs), nil
	case core.DomainScaling:
		return Scaling(ds, descs), nil
	default:
		return nil, &core.InsufficientDataError{Domain: domain, Reason: "unknown domain"}
	}
}

// EligibleIDs returns the sorted ids the suggestions cover, i.e. the
// target set a plan must account for.
func EligibleIDs(s core.Suggestions) []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
