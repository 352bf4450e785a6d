package core

import (
	"fmt"
	"sort"
	"strconv"
)

// DType is the semantic type of a column.
type DType int

const (
	// Numeric columns hold float64 values.
	Numeric DType = iota
	// Categorical columns hold string values.
	Categorical
)

// String returns the descriptor-facing name of the dtype.
func (t DType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the dtype as its string name.
func (t DType) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON decodes a dtype from its string name.
func (t *DType) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	switch s {
	case "numeric":
		*t = Numeric
	case "categorical":
		*t = Categorical
	default:
		return fmt.Errorf("unknown dtype %q", s)
	}
	return nil
}

// Column is a single named column with aligned missing markers.
// Nums is populated for Numeric columns, Strs for Categorical ones;
// Null marks missing cells in either representation.
type Column struct {
	Name string
	Type DType
	Nums []float64
	Strs []string
	Null []bool
}

// NewNumericColumn builds a numeric column. A nil null slice means no
// missing values.
func NewNumericColumn(name string, values []float64, null []bool) *Column {
	if null == nil {
		null = make([]bool, len(values))
	}
	return &Column{Name: name, Type: Numeric, Nums: values, Null: null}
}

// NewCategoricalColumn builds a categorical column. A nil null slice
// means no missing values.
func NewCategoricalColumn(name string, values []string, null []bool) *Column {
	if null == nil {
		null = make([]bool, len(values))
	}
	return &Column{Name: name, Type: Categorical, Strs: values, Null: null}
}

// Len returns the number of rows in the column.
func (c *Column) Len() int {
	return len(c.Null)
}

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Null {
		if m {
			n++
		}
	}
	return n
}

// NonMissingNums returns the present numeric values in row order.
// Only meaningful for Numeric columns.
func (c *Column) NonMissingNums() []float64 {
	out := make([]float64, 0, len(c.Nums))
	for i, v := range c.Nums {
		if !c.Null[i] {
			out = append(out, v)
		}
	}
	return out
}

// NonMissingStrs returns the present string values in row order.
// Only meaningful for Categorical columns.
func (c *Column) NonMissingStrs() []string {
	out := make([]string, 0, len(c.Strs))
	for i, v := range c.Strs {
		if !c.Null[i] {
			out = append(out, v)
		}
	}
	return out
}

// UniqueCount returns the number of distinct non-missing values.
func (c *Column) UniqueCount() int {
	switch c.Type {
	case Numeric:
		seen := make(map[float64]struct{})
		for i, v := range c.Nums {
			if !c.Null[i] {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	default:
		seen := make(map[string]struct{})
		for i, v := range c.Strs {
			if !c.Null[i] {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	}
}

// Categories returns the sorted distinct non-missing string values.
func (c *Column) Categories() []string {
	seen := make(map[string]struct{})
	for i, v := range c.Strs {
		if !c.Null[i] {
			seen[v] = struct{}{}
		}
	}
	cats := make([]string, 0, len(seen))
	for v := range seen {
		cats = append(cats, v)
	}
	sort.Strings(cats)
	return cats
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	cp := &Column{Name: c.Name, Type: c.Type}
	if c.Nums != nil {
		cp.Nums = append([]float64(nil), c.Nums...)
	}
	if c.Strs != nil {
		cp.Strs = append([]string(nil), c.Strs...)
	}
	cp.Null = append([]bool(nil), c.Null...)
	return cp
}

// Dataset is an ordered sequence of named columns, exclusively owned by
// one session and mutated in place by the transform applier.
type Dataset struct {
	cols []*Column
	rows int
}

// NewDataset builds a dataset from columns, validating that every
// column has the same row count and a unique name.
func NewDataset(cols []*Column) (*Dataset, error) {
	rows := 0
	if len(cols) > 0 {
		rows = cols[0].Len()
	}
	names := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if c.Len() != rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), rows)
		}
		if _, dup := names[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		names[c.Name] = struct{}{}
	}
	return &Dataset{cols: cols, rows: rows}, nil
}

// Rows returns the current row count.
func (d *Dataset) Rows() int { return d.rows }

// NumCols returns the current column count.
func (d *Dataset) NumCols() int { return len(d.cols) }

// Columns returns the columns in current left-to-right order.
// The slice must not be reordered by callers.
func (d *Dataset) Columns() []*Column { return d.cols }

// Names returns the column names in current order.
func (d *Dataset) Names() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, bool) {
	for _, c := range d.cols {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// AddColumn appends a column to the right edge of the dataset.
func (d *Dataset) AddColumn(c *Column) error {
	if len(d.cols) > 0 && c.Len() != d.rows {
		return fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), d.rows)
	}
	if _, exists := d.Column(c.Name); exists {
		return fmt.Errorf("duplicate column name %q", c.Name)
	}
	if len(d.cols) == 0 {
		d.rows = c.Len()
	}
	d.cols = append(d.cols, c)
	return nil
}

// DropColumn removes a column by name. Returns false if absent.
func (d *Dataset) DropColumn(name string) bool {
	for i, c := range d.cols {
		if c.Name == name {
			d.cols = append(d.cols[:i], d.cols[i+1:]...)
			return true
		}
	}
	return false
}

// FilterRows keeps only the rows where keep[i] is true. The row index
// is reset; keep must have length Rows().
func (d *Dataset) FilterRows(keep []bool) error {
	if len(keep) != d.rows {
		return fmt.Errorf("keep mask has %d entries, want %d", len(keep), d.rows)
	}
	kept := 0
	for _, k := range keep {
		if k {
			kept++
		}
	}
	for _, c := range d.cols {
		null := make([]bool, 0, kept)
		switch c.Type {
		case Numeric:
			nums := make([]float64, 0, kept)
			for i, k := range keep {
				if k {
					nums = append(nums, c.Nums[i])
					null = append(null, c.Null[i])
				}
			}
			c.Nums = nums
		default:
			strs := make([]string, 0, kept)
			for i, k := range keep {
				if k {
					strs = append(strs, c.Strs[i])
					null = append(null, c.Null[i])
				}
			}
			c.Strs = strs
		}
		c.Null = null
	}
	d.rows = kept
	return nil
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	cols := make([]*Column, len(d.cols))
	for i, c := range d.cols {
		cols[i] = c.Clone()
	}
	return &Dataset{cols: cols, rows: d.rows}
}
