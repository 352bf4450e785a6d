package core

import (
	"fmt"
	"sort"
)

// Domain identifies one of the five cleaning domains.
type Domain string

const (
	DomainMissing     Domain = "missing"
	DomainOutliers    Domain = "outliers"
	DomainCorrelation Domain = "correlation"
	DomainEncoding    Domain = "encoding"
	DomainScaling     Domain = "scaling"
)

// ParseDomain validates a domain name from a route or CLI argument.
func ParseDomain(s string) (Domain, error) {
	switch Domain(s) {
	case DomainMissing, DomainOutliers, DomainCorrelation, DomainEncoding, DomainScaling:
		return Domain(s), nil
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// Step returns the replay-log step name for the domain.
func (d Domain) Step() string {
	switch d {
	case DomainMissing:
		return "Handle Missing Values"
	case DomainOutliers:
		return "Handle Outliers"
	case DomainCorrelation:
		return "Handle Multicollinearity"
	case DomainEncoding:
		return "Categorical Encoding"
	case DomainScaling:
		return "Feature Scaling"
	default:
		return string(d)
	}
}

// Action is one entry in a domain's closed action vocabulary.
type Action string

const (
	// Missing-value actions.
	ActionMean    Action = "mean"
	ActionMedian  Action = "median"
	ActionMode    Action = "mode"
	ActionDropCol Action = "drop_col"

	// Outlier actions.
	ActionCap        Action = "cap"
	ActionRemoveRows Action = "remove_rows"
	ActionNone       Action = "none"

	// Correlation actions.
	ActionDrop Action = "drop"
	ActionKeep Action = "keep"

	// Encoding actions.
	ActionLabel  Action = "label"
	ActionOneHot Action = "one_hot"
	ActionSkip   Action = "skip"

	// Scaling actions.
	ActionStandard Action = "standard"
	ActionMinMax   Action = "minmax"
)

// Actions returns the domain's vocabulary in application order. The
// order matters twice: a duplicate id across actions resolves to the
// last action in this order, and the applier walks actions in this
// order (so label encoding always precedes one-hot expansion, and
// fills precede column drops).
func (d Domain) Actions() []Action {
	switch d {
	case DomainMissing:
		return []Action{ActionMean, ActionMedian, ActionMode, ActionDropCol}
	case DomainOutliers:
		return []Action{ActionCap, ActionRemoveRows, ActionNone}
	case DomainCorrelation:
		return []Action{ActionDrop, ActionKeep}
	case DomainEncoding:
		return []Action{ActionLabel, ActionOneHot, ActionSkip}
	case DomainScaling:
		return []Action{ActionStandard, ActionMinMax, ActionSkip}
	default:
		return nil
	}
}

// Fallback returns the action applied to an uncovered column that has
// no recorded suggestion.
func (d Domain) Fallback() Action {
	switch d {
	case DomainMissing:
		return ActionMedian
	case DomainOutliers:
		return ActionCap
	case DomainCorrelation:
		return ActionDrop
	case DomainEncoding:
		return ActionLabel
	case DomainScaling:
		return ActionStandard
	default:
		return ""
	}
}

// HasAction reports whether a is part of the domain's vocabulary.
func (d Domain) HasAction(a Action) bool {
	for _, v := range d.Actions() {
		if v == a {
			return true
		}
	}
	return false
}

// Plan maps actions to sets of column identifiers for one domain.
type Plan map[Action][]int

// IDs returns the sorted union of all ids across all actions.
func (p Plan) IDs() []int {
	seen := make(map[int]struct{})
	for _, ids := range p {
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Normalize dedupes ids within each action and resolves ids claimed by
// more than one action: the last action in the domain's vocabulary
// order wins. Actions outside the vocabulary are dropped.
func (p Plan) Normalize(d Domain) Plan {
	winner := make(map[int]Action)
	for _, a := range d.Actions() {
		for _, id := range p[a] {
			winner[id] = a
		}
	}
	out := make(Plan)
	for id, a := range winner {
		out[a] = append(out[a], id)
	}
	for a := range out {
		sort.Ints(out[a])
	}
	return out
}

// Restrict returns a copy of the plan containing only the given ids.
func (p Plan) Restrict(ids []int) Plan {
	allowed := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	out := make(Plan)
	for a, planIDs := range p {
		for _, id := range planIDs {
			if _, ok := allowed[id]; ok {
				out[a] = append(out[a], id)
			}
		}
	}
	for a := range out {
		sort.Ints(out[a])
	}
	return out
}

// Merge folds other into a copy of p. Ids claimed by both sides are
// resolved by a later Normalize.
func (p Plan) Merge(other Plan) Plan {
	out := make(Plan, len(p))
	for a, ids := range p {
		out[a] = append([]int(nil), ids...)
	}
	for a, ids := range other {
		out[a] = append(out[a], ids...)
	}
	return out
}
