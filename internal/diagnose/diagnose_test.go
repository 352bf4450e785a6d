package diagnose

import (
	"testing"

	"github.com/leapstack-labs/leapclean/internal/registry"
	"github.com/leapstack-labs/leapclean/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDataset(t *testing.T, cols ...*core.Column) *core.Dataset {
	t.Helper()
	ds, err := core.NewDataset(cols)
	require.NoError(t, err)
	return ds
}

func TestMissingSuggestions(t *testing.T) {
	// 60% missing always suggests drop_col regardless of dtype.
	mostlyMissing := core.NewNumericColumn("sparse",
		[]float64{1, 0, 0, 0, 2, 0, 0, 0, 3, 4},
		[]bool{false, true, true, true, false, true, true, true, false, false})
	// Categorical with missing suggests mode.
	city := core.NewCategoricalColumn("city",
		[]string{"a", "b", "", "a", "b", "a", "b", "a", "b", "a"},
		[]bool{false, false, true, false, false, false, false, false, false, false})
	// Symmetric numeric with missing suggests mean.
	age := core.NewNumericColumn("age",
		[]float64{20, 30, 40, 50, 60, 0, 25, 35, 45, 55},
		[]bool{false, false, false, false, false, true, false, false, false, false})
	// Complete column is excluded.
	full := core.NewNumericColumn("full", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, nil)

	ds := mustDataset(t, mostlyMissing, city, age, full)
	descs := registry.Describe(ds)

	sugg := Missing(ds, descs)
	require.Len(t, sugg, 3)

	assert.Equal(t, core.ActionDropCol, sugg[1].Action)
	assert.Equal(t, 60.0, sugg[1].MissingPct)
	assert.Equal(t, core.ActionMode, sugg[2].Action)
	assert.Equal(t, core.ActionMean, sugg[3].Action)
	_, covered := sugg[4]
	assert.False(t, covered)
}

func TestMissingSkewedSuggestsMedian(t *testing.T) {
	skewed := core.NewNumericColumn("income",
		[]float64{1, 1, 1, 2, 2, 500, 0},
		[]bool{false, false, false, false, false, false, true})
	ds := mustDataset(t, skewed)

	sugg := Missing(ds, registry.Describe(ds))
	require.Contains(t, sugg, 1)
	assert.Equal(t, core.ActionMedian, sugg[1].Action)
}

func TestOutlierSuggestions(t *testing.T) {
	col := core.NewNumericColumn("v", []float64{1, 2, 3, 4, 5, 100}, nil)
	clean := core.NewNumericColumn("w", []float64{1, 2, 3, 4, 5, 6}, nil)
	ds := mustDataset(t, col, clean)

	sugg := Outliers(ds, registry.Describe(ds))
	require.Len(t, sugg, 1)

	rec := sugg[1]
	assert.Equal(t, 1, rec.OutlierCount)
	assert.InDelta(t, 16.67, rec.OutlierPct, 0.01)
	assert.InDelta(t, -1.5, rec.LowerBound, 1e-9)
	assert.InDelta(t, 8.5, rec.UpperBound, 1e-9)
	// 16.7% > 10% means remove_rows.
	assert.Equal(t, core.ActionRemoveRows, rec.Action)
}

func TestOutlierRainRuleStillCaps(t *testing.T) {
	// 1 outlier in 12 rows is under the 10% cutoff either way.
	vals := []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 50}
	rain := core.NewNumericColumn("rainfall", vals, nil)
	ds := mustDataset(t, rain)

	sugg := Outliers(ds, registry.Describe(ds))
	require.Contains(t, sugg, 1)
	assert.Equal(t, core.ActionCap, sugg[1].Action)
}

func TestCorrelationFlagsBothSides(t *testing.T) {
	x := core.NewNumericColumn("x", []float64{1, 2, 3, 4, 5}, nil)
	y := core.NewNumericColumn("y", []float64{2, 4, 6, 8, 10}, nil)
	z := core.NewNumericColumn("z", []float64{5, 1, 4, 2, 3}, nil)
	ds := mustDataset(t, x, y, z)

	sugg, err := Correlation(ds, registry.Describe(ds), 0.90)
	require.NoError(t, err)

	// Exact linear duplicates: both members flagged.
	require.Contains(t, sugg, 1)
	require.Contains(t, sugg, 2)
	assert.NotContains(t, sugg, 3)
	assert.Equal(t, core.ActionDrop, sugg[1].Action)
	assert.Equal(t, core.ActionDrop, sugg[2].Action)
	require.Len(t, sugg[1].CorrelatedWith, 1)
	assert.Equal(t, "y", sugg[1].CorrelatedWith[0].Column)
	assert.InDelta(t, 1.0, sugg[1].CorrelatedWith[0].Coefficient, 1e-9)
}

func TestCorrelationInsufficientData(t *testing.T) {
	ds := mustDataset(t,
		core.NewNumericColumn("only", []float64{1, 2, 3}, nil),
		core.NewCategoricalColumn("cat", []string{"a", "b", "c"}, nil),
	)

	_, err := Correlation(ds, registry.Describe(ds), 0)
	var insuffErr *core.InsufficientDataError
	require.ErrorAs(t, err, &insuffErr)
	assert.Equal(t, core.DomainCorrelation, insuffErr.Domain)
}

func TestEncodingSuggestions(t *testing.T) {
	highVals := make([]string, 12)
	for i := range highVals {
		highVals[i] = string(rune('a' + i))
	}
	high := core.NewCategoricalColumn("sku", highVals, nil)
	num := core.NewNumericColumn("n", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, nil)
	low := core.NewCategoricalColumn("city",
		[]string{"a", "b", "c", "a", "b", "c", "a", "b", "c", "a", "b", "c"}, nil)
	ds := mustDataset(t, low, high, num)

	sugg := Encoding(ds, registry.Describe(ds))
	require.Len(t, sugg, 2)
	assert.Equal(t, core.ActionOneHot, sugg[1].Action)
	assert.Equal(t, 3, sugg[1].Cardinality)
	assert.Equal(t, core.ActionLabel, sugg[2].Action)
	assert.Equal(t, 12, sugg[2].Cardinality)
}

func TestScalingSuggestions(t *testing.T) {
	symmetric := core.NewNumericColumn("sym", []float64{1, 2, 3, 4, 5}, nil)
	skewed := core.NewNumericColumn("skw", []float64{1, 1, 1, 2, 80}, nil)
	binary := core.NewNumericColumn("bin", []float64{0, 1, 0, 1, 1}, nil)
	ds := mustDataset(t, symmetric, skewed, binary)

	sugg := Scaling(ds, registry.Describe(ds))
	require.Len(t, sugg, 2)
	assert.Equal(t, core.ActionStandard, sugg[1].Action)
	assert.Equal(t, core.ActionMinMax, sugg[2].Action)
	assert.NotContains(t, sugg, 3)
}

func TestSuggestDispatch(t *testing.T) {
	ds := mustDataset(t,
		core.NewNumericColumn("a", []float64{1, 2, 3, 4, 5}, nil),
		core.NewNumericColumn("b", []float64{2, 4, 6, 8, 10}, nil),
	)
	descs := registry.Describe(ds)

	for _, domain := range []core.Domain{
		core.DomainMissing, core.DomainOutliers, core.DomainCorrelation,
		core.DomainEncoding, core.DomainScaling,
	} {
		_, err := Suggest(domain, ds, descs, 0)
		assert.NoError(t, err, "domain %s", domain)
	}

	_, err := Suggest(core.Domain("bogus"), ds, descs, 0)
	assert.Error(t, err)
}

func TestEligibleIDs(t *testing.T) {
	s := core.Suggestions{
		3: {ID: 3},
		1: {ID: 1},
		2: {ID: 2},
	}
	assert.Equal(t, []int{1, 2, 3}, EligibleIDs(s))
}
