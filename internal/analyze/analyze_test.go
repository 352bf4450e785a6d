package analyze

import (
	"testing"

	"github.com/leapstack-labs/leapclean/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnivariateSummary(t *testing.T) {
	ds, err := core.NewDataset([]*core.Column{
		core.NewNumericColumn("x", []float64{1, 2, 3, 4, 0}, []bool{false, false, false, false, true}),
		core.NewCategoricalColumn("tag", []string{"a", "b", "a", "b", "a"}, nil),
	})
	require.NoError(t, err)

	rows, err := Univariate(ds)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "x", row.Column)
	assert.Equal(t, 4, row.Count)
	assert.Equal(t, 2.5, row.Mean)
	assert.Equal(t, 1.29, row.Std)
	assert.Equal(t, 1.0, row.Min)
	assert.Equal(t, 1.75, row.Q25)
	assert.Equal(t, 2.5, row.Median)
	assert.Equal(t, 3.25, row.Q75)
	assert.Equal(t, 4.0, row.Max)
	assert.Equal(t, 0.0, row.PctZeros)
}

func TestUnivariateCountsZeros(t *testing.T) {
	ds, err := core.NewDataset([]*core.Column{
		core.NewNumericColumn("x", []float64{0, 0, 1, 2}, nil),
	})
	require.NoError(t, err)

	rows, err := Univariate(ds)
	require.NoError(t, err)
	assert.Equal(t, 50.0, rows[0].PctZeros)
}

func TestUnivariateNoNumericColumns(t *testing.T) {
	ds, err := core.NewDataset([]*core.Column{
		core.NewCategoricalColumn("tag", []string{"a"}, nil),
	})
	require.NoError(t, err)

	_, err = Univariate(ds)
	var insufficient *core.InsufficientDataError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, core.Domain("analysis"), insufficient.Domain)
}

func TestBivariateMatrix(t *testing.T) {
	ds, err := core.NewDataset([]*core.Column{
		core.NewNumericColumn("a", []float64{1, 2, 3, 4}, nil),
		core.NewNumericColumn("b", []float64{2, 4, 6, 8}, nil),
		core.NewNumericColumn("c", []float64{4, 3, 2, 1}, nil),
	})
	require.NoError(t, err)

	m, err := Bivariate(ds)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, m.Columns)
	assert.Equal(t, 1.0, m.Values[0][0])
	assert.Equal(t, 1.0, m.Values[0][1])
	assert.Equal(t, -1.0, m.Values[0][2])
	assert.Equal(t, m.Values[0][1], m.Values[1][0])
}

func TestBivariateConstantColumnIsZero(t *testing.T) {
	ds, err := core.NewDataset([]*core.Column{
		core.NewNumericColumn("a", []float64{1, 2, 3}, nil),
		core.NewNumericColumn("flat", []float64{5, 5, 5}, nil),
	})
	require.NoError(t, err)

	m, err := Bivariate(ds)
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Values[0][1])
}

func TestBivariateNeedsTwoNumericColumns(t *testing.T) {
	ds, err := core.NewDataset([]*core.Column{
		core.NewNumericColumn("a", []float64{1, 2}, nil),
	})
	require.NoError(t, err)

	_, err = Bivariate(ds)
	var insufficient *core.InsufficientDataError
	assert.ErrorAs(t, err, &insufficient)
}
