package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapclean/internal/dataset"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

const sampleCSV = `age,city,income
25,paris,40000
,london,52000
31,paris,
47,tokyo,61000
52,london,1000000
`

// writeSample drops the sample CSV into a temp dir and points the
// history database there too.
func writeSample(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	t.Setenv("LEAPCLEAN_STATE_PATH", filepath.Join(dir, "state.db"))
	return path
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.2.3")
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "leapclean v1.2.3")
}

func TestSuggestCommand_Table(t *testing.T) {
	path := writeSample(t)

	cmd := NewSuggestCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"missing", path})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "Handle Missing Values")
	assert.Contains(t, out, "age")
	assert.Contains(t, out, "income")
	assert.NotContains(t, out, "city")
}

func TestSuggestCommand_JSON(t *testing.T) {
	path := writeSample(t)

	cmd := NewSuggestCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"missing", path, "--json"})

	require.NoError(t, cmd.Execute())

	var recs []core.DiagnosticRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "age", recs[0].Column)
}

func TestSuggestCommand_UnknownDomain(t *testing.T) {
	path := writeSample(t)

	cmd := NewSuggestCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"polish", path})

	assert.Error(t, cmd.Execute())
}

func TestApplyCommand_WritesCleanedCSV(t *testing.T) {
	path := writeSample(t)
	out := filepath.Join(filepath.Dir(path), "cleaned.csv")

	cmd := NewApplyCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"missing", path, "--plan", "median -1,3", "--out", out})

	require.NoError(t, cmd.Execute())

	ds, err := dataset.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Rows())

	age, ok := ds.Column("age")
	require.True(t, ok)
	assert.Zero(t, age.MissingCount())
}

func TestApplyCommand_MalformedPlanPartWarnsAndContinues(t *testing.T) {
	path := writeSample(t)
	out := filepath.Join(filepath.Dir(path), "cleaned.csv")

	cmd := NewApplyCommand()
	cmd.SetOut(new(bytes.Buffer))
	errBuf := new(bytes.Buffer)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{"missing", path, "--plan", "median -1,3 ; bogus -2", "--out", out})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errBuf.String(), "Warning:")
	assert.Contains(t, errBuf.String(), "bogus")

	ds, err := dataset.ReadFile(out)
	require.NoError(t, err)
	age, ok := ds.Column("age")
	require.True(t, ok)
	assert.Zero(t, age.MissingCount())
}

func TestApplyCommand_UncoveredWithoutPolicy(t *testing.T) {
	path := writeSample(t)

	cmd := NewApplyCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"missing", path, "--plan", "median -1"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uncovered")
}

func TestApplyCommand_OnUncoveredSuggest(t *testing.T) {
	path := writeSample(t)
	out := filepath.Join(filepath.Dir(path), "cleaned.csv")

	cmd := NewApplyCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"missing", path, "--plan", "", "--on-uncovered", "suggest", "--out", out})

	require.NoError(t, cmd.Execute())

	ds, err := dataset.ReadFile(out)
	require.NoError(t, err)
	for _, c := range ds.Columns() {
		assert.Zero(t, c.MissingCount(), "column %s", c.Name)
	}
}

func TestHistoryCommand_RecordsApply(t *testing.T) {
	path := writeSample(t)

	apply := NewApplyCommand()
	apply.SetOut(new(bytes.Buffer))
	apply.SetErr(new(bytes.Buffer))
	apply.SetArgs([]string{"missing", path, "--plan", "", "--on-uncovered", "suggest",
		"--out", filepath.Join(filepath.Dir(path), "cleaned.csv")})
	require.NoError(t, apply.Execute())

	history := NewHistoryCommand()
	buf := new(bytes.Buffer)
	history.SetOut(buf)
	history.SetErr(buf)
	history.SetArgs([]string{"--limit", "10"})
	require.NoError(t, history.Execute())

	out := buf.String()
	assert.Contains(t, out, "Handle Missing Values")
	assert.Contains(t, out, "sample.csv")
	assert.Contains(t, out, "(1 batches)")
}

func TestAnalyzeCommand_Univariate(t *testing.T) {
	path := writeSample(t)

	cmd := NewAnalyzeCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"univariate", path})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "age")
	assert.Contains(t, out, "income")
	assert.NotContains(t, out, "city")
}

func TestAnalyzeCommand_BivariateJSON(t *testing.T) {
	path := writeSample(t)

	cmd := NewAnalyzeCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"bivariate", path, "--json"})

	require.NoError(t, cmd.Execute())

	var matrix struct {
		Columns []string    `json:"columns"`
		Values  [][]float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &matrix))
	assert.Equal(t, []string{"age", "income"}, matrix.Columns)
	assert.Equal(t, 1.0, matrix.Values[0][0])
}

func TestHistoryCommand_Empty(t *testing.T) {
	writeSample(t)

	cmd := NewHistoryCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "(no batches recorded)")
}
