package registry

import (
	"testing"

	"github.com/leapstack-labs/leapclean/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDataset(t *testing.T) *core.Dataset {
	t.Helper()
	ds, err := core.NewDataset([]*core.Column{
		core.NewNumericColumn("age", []float64{30, 40, 0, 50}, []bool{false, false, true, false}),
		core.NewCategoricalColumn("city", []string{"ber", "ber", "muc", "ham"}, nil),
	})
	require.NoError(t, err)
	return ds
}

func TestDescribe(t *testing.T) {
	descs := Describe(testDataset(t))
	require.Len(t, descs, 2)

	assert.Equal(t, 1, descs[0].ID)
	assert.Equal(t, "age", descs[0].Name)
	assert.Equal(t, core.Numeric, descs[0].Type)
	assert.Equal(t, 25.0, descs[0].PctMissing)
	assert.Equal(t, 75.0, descs[0].PctUnique)

	assert.Equal(t, 2, descs[1].ID)
	assert.Equal(t, core.Categorical, descs[1].Type)
	assert.Equal(t, 0.0, descs[1].PctMissing)
	assert.Equal(t, 75.0, descs[1].PctUnique)
}

func TestDescribeContiguousAfterMutation(t *testing.T) {
	ds := testDataset(t)
	ds.DropColumn("age")

	descs := Describe(ds)
	require.Len(t, descs, 1)
	assert.Equal(t, 1, descs[0].ID)
	assert.Equal(t, "city", descs[0].Name)
}

func TestResolve(t *testing.T) {
	descs := Describe(testDataset(t))

	name, err := Resolve(descs, 2)
	require.NoError(t, err)
	assert.Equal(t, "city", name)

	_, err = Resolve(descs, 0)
	var unkErr *core.UnknownColumnError
	require.ErrorAs(t, err, &unkErr)
	assert.Equal(t, 0, unkErr.ID)

	_, err = Resolve(descs, 3)
	require.ErrorAs(t, err, &unkErr)
	assert.Equal(t, 2, unkErr.Max)
}

func TestNames(t *testing.T) {
	descs := Describe(testDataset(t))

	names, invalid := Names(descs, []int{1, 5, 2, -1})
	assert.Equal(t, []string{"age", "city"}, names)
	assert.Equal(t, []int{5, -1}, invalid)
}

func TestFilterPlan(t *testing.T) {
	descs := Describe(testDataset(t))
	plan := core.Plan{
		core.ActionMean: {1, 9},
		core.ActionMode: {2},
	}

	filtered, invalid := FilterPlan(descs, plan)
	assert.Equal(t, []int{1}, filtered[core.ActionMean])
	assert.Equal(t, []int{2}, filtered[core.ActionMode])
	assert.Equal(t, []int{9}, invalid)
}
