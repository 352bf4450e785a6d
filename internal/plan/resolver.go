package plan

import (
	"fmt"
	"sort"

	"github.com/leapstack-labs/leapclean/pkg/core"
)

// DecisionKind is one of the three outcomes a caller can choose for
// columns a plan leaves uncovered.
type DecisionKind int

const (
	// DecisionSupplement supplies an additional plan for the
	// uncovered columns. Ids still uncovered afterwards require
	// another decision: supplementing loops, it does not exit.
	DecisionSupplement DecisionKind = iota
	// DecisionSuggest applies the recorded suggestion to every
	// uncovered column, falling back to the domain default when no
	// suggestion exists for an id.
	DecisionSuggest
	// DecisionLeave drops the uncovered columns from the plan
	// entirely; no action is applied to them.
	DecisionLeave
)

// Decision is one caller response to an awaiting-decision resolution.
type Decision struct {
	Kind DecisionKind
	// Plan accompanies DecisionSupplement; entries outside the
	// uncovered set are ignored.
	Plan core.Plan
}

// Resolution is the resumable coverage-resolution state machine. It
// is built from a plan and the eligible column set, and advances one
// caller decision at a time until every eligible column is resolved
// or the caller exits via suggest/leave. The same machine backs the
// blocking CLI prompt loop and the stateless HTTP endpoint: a pending
// resolution is surfaced to HTTP callers as an awaiting-decision
// response carrying Uncovered().
type Resolution struct {
	domain      core.Domain
	plan        core.Plan
	eligible    map[int]struct{}
	suggestions core.Suggestions
	uncovered   map[int]struct{}
	done        bool
}

// NewResolution starts resolving a plan against the eligible ids. The
// initial plan is normalized; a plan already covering every eligible
// id is immediately done.
func NewResolution(domain core.Domain, p core.Plan, eligible []int, suggestions core.Suggestions) *Resolution {
	r := &Resolution{
		domain:      domain,
		plan:        p.Normalize(domain),
		eligible:    make(map[int]struct{}, len(eligible)),
		suggestions: suggestions,
		uncovered:   make(map[int]struct{}),
	}
	for _, id := range eligible {
		r.eligible[id] = struct{}{}
	}
	r.recomputeUncovered()
	return r
}

func (r *Resolution) recomputeUncovered() {
	covered := make(map[int]struct{})
	for _, ids := range r.plan {
		for _, id := range ids {
			covered[id] = struct{}{}
		}
	}
	r.uncovered = make(map[int]struct{})
	for id := range r.eligible {
		if _, ok := covered[id]; !ok {
			r.uncovered[id] = struct{}{}
		}
	}
	if len(r.uncovered) == 0 {
		r.done = true
	}
}

// Done reports whether the resolution needs no further decisions.
func (r *Resolution) Done() bool { return r.done }

// Uncovered returns the sorted ids still awaiting a decision.
func (r *Resolution) Uncovered() []int {
	ids := make([]int, 0, len(r.uncovered))
	for id := range r.uncovered {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Plan returns the resolved plan. Only meaningful once Done reports
// true; the plan is restricted to eligible ids.
func (r *Resolution) Plan() core.Plan {
	return r.plan.Restrict(idSetSlice(r.eligible)).Normalize(r.domain)
}

// Apply advances the machine with one caller decision. Applying a
// decision to a finished resolution is an error.
func (r *Resolution) Apply(d Decision) error {
	if r.done {
		return fmt.Errorf("resolution already complete")
	}
	switch d.Kind {
	case DecisionSupplement:
		extra := d.Plan.Restrict(r.Uncovered())
		r.plan = r.plan.Merge(extra).Normalize(r.domain)
		r.recomputeUncovered()
	case DecisionSuggest:
		supplement := make(core.Plan)
		for id := range r.uncovered {
			action := r.domain.Fallback()
			if rec, ok := r.suggestions[id]; ok {
				action = rec.Action
			}
			supplement[action] = append(supplement[action], id)
		}
		r.plan = r.plan.Merge(supplement).Normalize(r.domain)
		r.done = true
		r.uncovered = map[int]struct{}{}
	case DecisionLeave:
		r.done = true
		r.uncovered = map[int]struct{}{}
	default:
		return fmt.Errorf("unknown decision kind %d", d.Kind)
	}
	return nil
}

func idSetSlice(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
