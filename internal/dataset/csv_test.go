package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapclean/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `age,city,income
25,paris,50000
,london,
31,NaN,61000.5
42,tokyo,NA
`

func TestReadInfersTypes(t *testing.T) {
	ds, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Rows())
	assert.Equal(t, []string{"age", "city", "income"}, ds.Names())

	age, _ := ds.Column("age")
	assert.Equal(t, core.Numeric, age.Type)
	assert.Equal(t, []float64{25, 0, 31, 42}, age.Nums)
	assert.Equal(t, []bool{false, true, false, false}, age.Null)

	city, _ := ds.Column("city")
	assert.Equal(t, core.Categorical, city.Type)
	assert.Equal(t, 1, city.MissingCount())

	income, _ := ds.Column("income")
	assert.Equal(t, core.Numeric, income.Type)
	assert.Equal(t, 61000.5, income.Nums[2])
	assert.Equal(t, 2, income.MissingCount())
}

func TestReadMixedColumnIsCategorical(t *testing.T) {
	ds, err := Read(strings.NewReader("code\n12\nAB3\n"))
	require.NoError(t, err)

	c, _ := ds.Column("code")
	assert.Equal(t, core.Categorical, c.Type)
	assert.Equal(t, []string{"12", "AB3"}, c.Strs)
}

func TestReadEmptyInput(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadRaggedRow(t *testing.T) {
	_, err := Read(strings.NewReader("a,b\n1\n"))
	assert.Error(t, err)
}

func TestWriteRoundTrip(t *testing.T) {
	ds, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ds))

	again, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, ds.Names(), again.Names())
	assert.Equal(t, ds.Rows(), again.Rows())

	income, _ := again.Column("income")
	assert.Equal(t, core.Numeric, income.Type)
	assert.Equal(t, 61000.5, income.Nums[2])
	assert.Equal(t, 2, income.MissingCount())
}

func TestLoadEntry(t *testing.T) {
	e := LoadEntry("data.csv")
	assert.Equal(t, "Load Data", e.Step)
	assert.Equal(t, "file_path = r'data.csv'", e.Ops[0])
}
