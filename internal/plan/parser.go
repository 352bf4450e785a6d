// Package plan parses caller-supplied transformation plans and drives
// the coverage-resolution protocol that reconciles a plan against the
// set of eligible columns.
package plan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapclean/pkg/core"
)

// Parse reads the interactive plan format, e.g.
//
//	mean -1,2,3 ; median -4,5-7 ; drop -10,11-13
//
// Each semicolon-separated part is an action name followed by a dash
// and a comma-separated list of ids or id ranges. Unknown actions and
// malformed ids are skipped with a warning, never fatal. The returned
// plan is normalized against the domain's vocabulary.
func Parse(domain core.Domain, input string) (core.Plan, []string) {
	p := make(core.Plan)
	var warnings []string

	if strings.TrimSpace(input) == "" {
		return p, nil
	}

	for _, part := range strings.Split(input, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		action, ok := matchAction(domain, part)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("could not parse %q, skipping", part))
			continue
		}

		rest := strings.TrimPrefix(part, string(action))
		// The original CLI accepts "drop" as shorthand for drop_col.
		if action == core.ActionDropCol && !strings.HasPrefix(part, string(core.ActionDropCol)) {
			rest = strings.TrimPrefix(part, "drop")
		}
		idx := strings.Index(rest, "-")
		if idx < 0 {
			warnings = append(warnings, fmt.Sprintf("no ids found in %q, skipping", part))
			continue
		}

		ids, idWarnings := parseIDs(rest[idx+1:])
		warnings = append(warnings, idWarnings...)
		if len(ids) > 0 {
			p[action] = append(p[action], ids...)
		}
	}

	return p.Normalize(domain), warnings
}

// matchAction finds the vocabulary action the part starts with,
// preferring the longest match so "remove_rows" is not read as a
// malformed "mode" and "one_hot" wins over "none".
func matchAction(domain core.Domain, part string) (core.Action, bool) {
	var best core.Action
	for _, a := range domain.Actions() {
		if strings.HasPrefix(part, string(a)) && len(a) > len(best) {
			best = a
		}
	}
	// Shorthand accepted by the missing-value prompt.
	if best == "" && domain == core.DomainMissing && strings.HasPrefix(part, "drop") {
		return core.ActionDropCol, true
	}
	return best, best != ""
}

// parseIDs reads a comma-separated list of ids and inclusive ranges
// ("4,5-7,9").
func parseIDs(s string) ([]int, []string) {
	var ids []int
	var warnings []string
	for _, sub := range strings.Split(s, ",") {
		sub = strings.TrimSpace(sub)
		if sub == "" {
			continue
		}
		if strings.Contains(sub, "-") {
			bounds := strings.SplitN(sub, "-", 2)
			start, err1 := strconv.Atoi(strings.TrimSpace(bounds[0]))
			end, err2 := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err1 != nil || err2 != nil || start > end {
				warnings = append(warnings, fmt.Sprintf("invalid range %q, skipping", sub))
				continue
			}
			for id := start; id <= end; id++ {
				ids = append(ids, id)
			}
			continue
		}
		id, err := strconv.Atoi(sub)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("invalid id %q, skipping", sub))
			continue
		}
		ids = append(ids, id)
	}
	return ids, warnings
}

// ParseIDList reads a bare id list ("1, 2, 5-8") as used by the
// column-drop step.
func ParseIDList(s string) ([]int, []string) {
	return parseIDs(s)
}
