package plan

import (
	"testing"

	"github.com/leapstack-labs/leapclean/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestParseBasic(t *testing.T) {
	p, warnings := Parse(core.DomainMissing, "mean -1,2,3 ; median -4,5-7 ; mode-8,9 ; drop -10")
	assert.Empty(t, warnings)
	assert.Equal(t, []int{1, 2, 3}, p[core.ActionMean])
	assert.Equal(t, []int{4, 5, 6, 7}, p[core.ActionMedian])
	assert.Equal(t, []int{8, 9}, p[core.ActionMode])
	assert.Equal(t, []int{10}, p[core.ActionDropCol])
}

func TestParseEmpty(t *testing.T) {
	p, warnings := Parse(core.DomainMissing, "   ")
	assert.Empty(t, p)
	assert.Empty(t, warnings)
}

func TestParseUnknownActionSkipped(t *testing.T) {
	p, warnings := Parse(core.DomainOutliers, "cap -1 ; juggle -2")
	assert.Equal(t, []int{1}, p[core.ActionCap])
	assert.Len(t, warnings, 1)
}

func TestParseLongestActionWins(t *testing.T) {
	p, warnings := Parse(core.DomainOutliers, "remove_rows -3,4")
	assert.Empty(t, warnings)
	assert.Equal(t, []int{3, 4}, p[core.ActionRemoveRows])

	p, _ = Parse(core.DomainEncoding, "one_hot -1 ; label -2")
	assert.Equal(t, []int{1}, p[core.ActionOneHot])
	assert.Equal(t, []int{2}, p[core.ActionLabel])
}

func TestParseInvalidIDsSkipped(t *testing.T) {
	p, warnings := Parse(core.DomainMissing, "mean -1,x,7-3,4")
	assert.Equal(t, []int{1, 4}, p[core.ActionMean])
	assert.Len(t, warnings, 2)
}

func TestParseMissingIDListSkipped(t *testing.T) {
	p, warnings := Parse(core.DomainCorrelation, "keep")
	assert.Empty(t, p)
	assert.Len(t, warnings, 1)
}

func TestParseDuplicateIDLastActionWins(t *testing.T) {
	// Id 2 is claimed by both mean and mode; mode comes later in the
	// vocabulary order and wins.
	p, _ := Parse(core.DomainMissing, "mean -1,2 ; mode -2")
	assert.Equal(t, []int{1}, p[core.ActionMean])
	assert.Equal(t, []int{2}, p[core.ActionMode])
}

func TestParseIDList(t *testing.T) {
	ids, warnings := ParseIDList("1, 2, 5-8, 9")
	assert.Empty(t, warnings)
	assert.Equal(t, []int{1, 2, 5, 6, 7, 8, 9}, ids)

	ids, warnings = ParseIDList("3, bogus")
	assert.Equal(t, []int{3}, ids)
	assert.Len(t, warnings, 1)
}
