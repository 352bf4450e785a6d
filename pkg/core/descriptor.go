package core

// ColumnDescriptor is the per-column summary row shown to users and
// used to address columns by id. Ids are a contiguous 1..N range
// matching the current column order; they are not stable across
// column-count changes. Any drop or one-hot expansion invalidates
// every previously computed id, so descriptors are always recomputed
// after a structural mutation, never patched.
type ColumnDescriptor struct {
	ID         int     `json:"id"`
	Name       string  `json:"column_name"`
	Type       DType   `json:"dtype"`
	PctUnique  float64 `json:"percentage_unique"`
	PctMissing float64 `json:"percentage_missing"`
}

// DiagnosticRecord is one column's diagnostic for a single domain,
// carrying the domain-specific metrics and the suggested action.
// Records are ephemeral: recomputed fresh on every suggestion call.
type DiagnosticRecord struct {
	ID     int    `json:"id"`
	Column string `json:"column"`
	Action Action `json:"suggested_action"`

	// Missing domain.
	MissingPct float64 `json:"missing_pct,omitempty"`

	// Outlier domain.
	OutlierCount int     `json:"outliers_count,omitempty"`
	OutlierPct   float64 `json:"outliers_pct,omitempty"`
	LowerBound   float64 `json:"lower_bound,omitempty"`
	UpperBound   float64 `json:"upper_bound,omitempty"`

	// Correlation domain.
	CorrelatedWith []CorrelationPair `json:"correlated_with,omitempty"`

	// Encoding and scaling domains.
	Cardinality int     `json:"unique,omitempty"`
	Skew        float64 `json:"skew,omitempty"`
}

// CorrelationPair names one partner of a highly correlated column.
type CorrelationPair struct {
	Column      string  `json:"column"`
	Coefficient float64 `json:"coefficient"`
}

// Suggestions maps column ids to their diagnostic records.
type Suggestions map[int]DiagnosticRecord

// Actions reduces the suggestions to an id-to-action map.
func (s Suggestions) Actions() map[int]Action {
	out := make(map[int]Action, len(s))
	for id, rec := range s {
		out[id] = rec.Action
	}
	return out
}
