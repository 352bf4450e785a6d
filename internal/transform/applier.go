// Package transform applies a resolved cleaning plan to a dataset and
// records the equivalent pandas operations for notebook replay.
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapclean/internal/registry"
	"github.com/leapstack-labs/leapclean/internal/stats"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// Skip records one column left untouched during a batch, with the
// reason. Coercion failures land here instead of aborting the batch.
type Skip struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// Result is the outcome of applying one resolved plan batch. Entry
// carries the replay operations; a batch that applied nothing has an
// entry with no operations, which callers do not append to the log.
type Result struct {
	Entry       core.LogEntry `json:"entry"`
	Skipped     []Skip        `json:"skipped,omitempty"`
	Notes       []string      `json:"notes,omitempty"`
	Dropped     []string      `json:"dropped_columns,omitempty"`
	RowsRemoved int           `json:"rows_removed,omitempty"`
}

// Applied reports whether the batch mutated the dataset.
func (r *Result) Applied() bool {
	return len(r.Entry.Ops) > 0
}

// Apply mutates ds according to one domain's resolved plan. Ids are
// resolved to names against descs before any mutation, so a drop in
// the same batch cannot shift a later lookup; actions run in the
// domain's vocabulary order, which places column drops after fills
// and label encoding before one-hot expansion. Bounds for cap and
// remove_rows come from diags, the diagnostics computed when the
// suggestions were shown; they are not recomputed mid-batch.
func Apply(ds *core.Dataset, domain core.Domain, p core.Plan, descs []core.ColumnDescriptor, diags core.Suggestions) (*Result, error) {
	res := &Result{Entry: core.LogEntry{Step: domain.Step()}}
	p = p.Normalize(domain)

	// Resolve every id up front; out-of-range ids are reported and
	// dropped rather than failing the batch.
	names := make(map[core.Action][]string)
	bounds := make(map[string]core.DiagnosticRecord)
	for _, action := range domain.Actions() {
		var resolved []string
		for _, id := range p[action] {
			name, err := registry.Resolve(descs, id)
			if err != nil {
				res.Notes = append(res.Notes, fmt.Sprintf("ignored unknown column id %d", id))
				continue
			}
			resolved = append(resolved, name)
			if rec, ok := diags[id]; ok {
				bounds[name] = rec
			}
		}
		names[action] = resolved
	}

	switch domain {
	case core.DomainMissing:
		applyMissing(ds, names, res)
	case core.DomainOutliers:
		applyOutliers(ds, names, bounds, res)
	case core.DomainCorrelation:
		applyCorrelation(ds, names, res)
	case core.DomainEncoding:
		applyEncoding(ds, names, res)
	case core.DomainScaling:
		applyScaling(ds, names, res)
	default:
		return nil, fmt.Errorf("unknown domain %q", domain)
	}
	return res, nil
}

// DropColumns removes the named columns as the standalone pruning
// step that precedes the cleaning domains.
func DropColumns(ds *core.Dataset, names []string) *Result {
	res := &Result{Entry: core.LogEntry{Step: "Drop Columns"}}
	var dropped []string
	for _, name := range names {
		if ds.DropColumn(name) {
			dropped = append(dropped, name)
		} else {
			res.Notes = append(res.Notes, fmt.Sprintf("column %q not found", name))
		}
	}
	if len(dropped) == 0 {
		return res
	}
	res.Dropped = dropped
	res.Entry.Ops = []string{
		fmt.Sprintf("columns_to_drop = %s", pyList(dropped)),
		"df.drop(columns=columns_to_drop, inplace=True)",
	}
	return res
}

func applyMissing(ds *core.Dataset, names map[core.Action][]string, res *Result) {
	fill := func(name string, action core.Action) {
		c, ok := ds.Column(name)
		if !ok {
			return
		}
		if action == core.ActionMode {
			fillMode(c, res)
			return
		}
		coerced := c.Nums
		if c.Type == core.Categorical {
			nums, err := coerceNumeric(c)
			if err != nil {
				res.Skipped = append(res.Skipped, Skip{Column: name, Reason: err.Error()})
				return
			}
			coerced = nums
		}
		var present []float64
		for i, v := range coerced {
			if !c.Null[i] {
				present = append(present, v)
			}
		}
		if len(present) == 0 {
			res.Skipped = append(res.Skipped, Skip{Column: name, Reason: "no values to compute a fill from"})
			return
		}
		if c.Type == core.Categorical {
			c.Type = core.Numeric
			c.Nums = coerced
			c.Strs = nil
			res.Entry.Ops = append(res.Entry.Ops,
				fmt.Sprintf("df['%s'] = pd.to_numeric(df['%s'], errors='raise')", name, name))
		}
		val := stats.Mean(present)
		stat := "mean"
		if action == core.ActionMedian {
			val = stats.Median(present)
			stat = "median"
		}
		for i, missing := range c.Null {
			if missing {
				c.Nums[i] = val
				c.Null[i] = false
			}
		}
		res.Entry.Ops = append(res.Entry.Ops,
			fmt.Sprintf("df['%s'].fillna(df['%s'].%s(), inplace=True)", name, name, stat))
	}

	for _, name := range names[core.ActionMean] {
		fill(name, core.ActionMean)
	}
	for _, name := range names[core.ActionMedian] {
		fill(name, core.ActionMedian)
	}
	for _, name := range names[core.ActionMode] {
		fill(name, core.ActionMode)
	}
	// Drops always run last so the fills above see the full frame.
	for _, name := range names[core.ActionDropCol] {
		if ds.DropColumn(name) {
			res.Dropped = append(res.Dropped, name)
			res.Entry.Ops = append(res.Entry.Ops,
				fmt.Sprintf("df.drop(columns=['%s'], inplace=True)", name))
		}
	}
}

func fillMode(c *core.Column, res *Result) {
	switch c.Type {
	case core.Categorical:
		val, ok := stats.Mode(c.NonMissingStrs())
		if !ok {
			res.Skipped = append(res.Skipped, Skip{Column: c.Name, Reason: "no values to compute a fill from"})
			return
		}
		for i, missing := range c.Null {
			if missing {
				c.Strs[i] = val
				c.Null[i] = false
			}
		}
	default:
		val, ok := stats.ModeFloat(c.NonMissingNums())
		if !ok {
			res.Skipped = append(res.Skipped, Skip{Column: c.Name, Reason: "no values to compute a fill from"})
			return
		}
		for i, missing := range c.Null {
			if missing {
				c.Nums[i] = val
				c.Null[i] = false
			}
		}
	}
	res.Entry.Ops = append(res.Entry.Ops,
		fmt.Sprintf("df['%s'].fillna(df['%s'].mode()[0], inplace=True)", c.Name, c.Name))
}

func applyOutliers(ds *core.Dataset, names map[core.Action][]string, bounds map[string]core.DiagnosticRecord, res *Result) {
	boundsFor := func(c *core.Column) (lower, upper float64) {
		if rec, ok := bounds[c.Name]; ok && (rec.LowerBound != 0 || rec.UpperBound != 0) {
			return rec.LowerBound, rec.UpperBound
		}
		present := c.NonMissingNums()
		q1 := stats.Quantile(present, 0.25)
		q3 := stats.Quantile(present, 0.75)
		iqr := q3 - q1
		return q1 - 1.5*iqr, q3 + 1.5*iqr
	}

	for _, name := range names[core.ActionCap] {
		c, ok := ds.Column(name)
		if !ok || c.Type != core.Numeric {
			res.Skipped = append(res.Skipped, Skip{Column: name, Reason: "not a numeric column"})
			continue
		}
		lower, upper := boundsFor(c)
		for i, v := range c.Nums {
			if c.Null[i] {
				continue
			}
			if v < lower {
				c.Nums[i] = lower
			} else if v > upper {
				c.Nums[i] = upper
			}
		}
		res.Entry.Ops = append(res.Entry.Ops,
			fmt.Sprintf("Q1=df['%s'].quantile(0.25);Q3=df['%s'].quantile(0.75);IQR=Q3-Q1;df['%s']=df['%s'].clip(Q1-1.5*IQR,Q3+1.5*IQR)",
				name, name, name, name))
	}

	for _, name := range names[core.ActionRemoveRows] {
		c, ok := ds.Column(name)
		if !ok || c.Type != core.Numeric {
			res.Skipped = append(res.Skipped, Skip{Column: name, Reason: "not a numeric column"})
			continue
		}
		lower, upper := boundsFor(c)
		keep := make([]bool, c.Len())
		// Missing cells fail the bound comparison, matching the
		// pandas mask this replays.
		for i, v := range c.Nums {
			keep[i] = !c.Null[i] && v >= lower && v <= upper
		}
		before := ds.Rows()
		if err := ds.FilterRows(keep); err != nil {
			res.Skipped = append(res.Skipped, Skip{Column: name, Reason: err.Error()})
			continue
		}
		res.RowsRemoved += before - ds.Rows()
		res.Entry.Ops = append(res.Entry.Ops,
			fmt.Sprintf("Q1=df['%s'].quantile(0.25);Q3=df['%s'].quantile(0.75);IQR=Q3-Q1;df=df[(df['%s']>=Q1-1.5*IQR)&(df['%s']<=Q3+1.5*IQR)]",
				name, name, name, name))
	}

	for _, name := range names[core.ActionNone] {
		res.Notes = append(res.Notes, fmt.Sprintf("left %q untouched", name))
	}
}

func applyCorrelation(ds *core.Dataset, names map[core.Action][]string, res *Result) {
	var dropped []string
	for _, name := range names[core.ActionDrop] {
		if ds.DropColumn(name) {
			dropped = append(dropped, name)
		}
	}
	if len(dropped) > 0 {
		res.Dropped = dropped
		res.Entry.Ops = append(res.Entry.Ops,
			fmt.Sprintf("df.drop(columns=%s, inplace=True)", pyList(dropped)))
	}
	for _, name := range names[core.ActionKeep] {
		res.Notes = append(res.Notes, fmt.Sprintf("kept %q despite high correlation", name))
	}
}

func applyEncoding(ds *core.Dataset, names map[core.Action][]string, res *Result) {
	for _, name := range names[core.ActionLabel] {
		c, ok := ds.Column(name)
		if !ok || c.Type != core.Categorical {
			res.Skipped = append(res.Skipped, Skip{Column: name, Reason: "not a categorical column"})
			continue
		}
		// Codes follow sorted category order; missing cells stay
		// missing rather than becoming a class of their own.
		codes := make(map[string]float64)
		for i, cat := range c.Categories() {
			codes[cat] = float64(i)
		}
		nums := make([]float64, c.Len())
		for i, v := range c.Strs {
			if !c.Null[i] {
				nums[i] = codes[v]
			}
		}
		c.Type = core.Numeric
		c.Nums = nums
		c.Strs = nil
		res.Entry.Ops = append(res.Entry.Ops,
			fmt.Sprintf("le=LabelEncoder(); df['%s']=le.fit_transform(df['%s'].astype(str))", name, name))
	}

	var encoded []string
	for _, name := range names[core.ActionOneHot] {
		c, ok := ds.Column(name)
		if !ok || c.Type != core.Categorical {
			res.Skipped = append(res.Skipped, Skip{Column: name, Reason: "not a categorical column"})
			continue
		}
		cats := c.Categories()
		if len(cats) == 0 {
			res.Skipped = append(res.Skipped, Skip{Column: name, Reason: "no categories to encode"})
			continue
		}
		// Drop-first: the lowest-sorted category is the reference
		// level and gets no indicator.
		for _, cat := range cats[1:] {
			nums := make([]float64, c.Len())
			for i, v := range c.Strs {
				if !c.Null[i] && v == cat {
					nums[i] = 1
				}
			}
			ind := core.NewNumericColumn(name+"_"+cat, nums, nil)
			if err := ds.AddColumn(ind); err != nil {
				res.Notes = append(res.Notes, fmt.Sprintf("indicator %q skipped: %v", ind.Name, err))
			}
		}
		ds.DropColumn(name)
		res.Dropped = append(res.Dropped, name)
		encoded = append(encoded, name)
	}
	if len(encoded) > 0 {
		res.Entry.Ops = append(res.Entry.Ops,
			fmt.Sprintf("df=pd.get_dummies(df, columns=%s, drop_first=True)", pyList(encoded)))
	}

	for _, name := range names[core.ActionSkip] {
		res.Notes = append(res.Notes, fmt.Sprintf("left %q unencoded", name))
	}
}

func applyScaling(ds *core.Dataset, names map[core.Action][]string, res *Result) {
	scale := func(targets []string, fit func(c *core.Column) bool) []string {
		var scaled []string
		for _, name := range targets {
			c, ok := ds.Column(name)
			if !ok || c.Type != core.Numeric {
				res.Skipped = append(res.Skipped, Skip{Column: name, Reason: "not a numeric column"})
				continue
			}
			if fit(c) {
				scaled = append(scaled, name)
			}
		}
		return scaled
	}

	standard := scale(names[core.ActionStandard], func(c *core.Column) bool {
		present := c.NonMissingNums()
		std := stats.PopStd(present)
		if std == 0 {
			res.Skipped = append(res.Skipped, Skip{Column: c.Name, Reason: "zero variance"})
			return false
		}
		mean := stats.Mean(present)
		for i := range c.Nums {
			if !c.Null[i] {
				c.Nums[i] = (c.Nums[i] - mean) / std
			}
		}
		return true
	})
	if len(standard) > 0 {
		res.Entry.Ops = append(res.Entry.Ops,
			fmt.Sprintf("scaler=StandardScaler(); df[%s]=scaler.fit_transform(df[%s])", pyList(standard), pyList(standard)))
	}

	minmax := scale(names[core.ActionMinMax], func(c *core.Column) bool {
		present := c.NonMissingNums()
		lo, hi := stats.MinMax(present)
		if hi == lo {
			res.Skipped = append(res.Skipped, Skip{Column: c.Name, Reason: "constant column"})
			return false
		}
		for i := range c.Nums {
			if !c.Null[i] {
				c.Nums[i] = (c.Nums[i] - lo) / (hi - lo)
			}
		}
		return true
	})
	if len(minmax) > 0 {
		res.Entry.Ops = append(res.Entry.Ops,
			fmt.Sprintf("scaler=MinMaxScaler(); df[%s]=scaler.fit_transform(df[%s])", pyList(minmax), pyList(minmax)))
	}

	for _, name := range names[core.ActionSkip] {
		res.Notes = append(res.Notes, fmt.Sprintf("left %q unscaled", name))
	}
}

// coerceNumeric converts every non-missing cell of a categorical
// column to float64. Nothing is mutated: the caller swaps in the
// returned slice only on full success.
func coerceNumeric(c *core.Column) ([]float64, error) {
	nums := make([]float64, c.Len())
	for i, v := range c.Strs {
		if c.Null[i] {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, &core.CoercionError{Column: c.Name, Value: v}
		}
		nums[i] = f
	}
	return nums, nil
}

// pyList renders column names as the Python list literal used in the
// replayed pandas statements.
func pyList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
