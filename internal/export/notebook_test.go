package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapclean/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLog() []core.LogEntry {
	return []core.LogEntry{
		{Step: "Load Data", Ops: []string{"file_path = r'data.csv'", "df = pd.read_csv(file_path)"}},
		{Step: "Handle Missing Values", Ops: []string{"df['age'].fillna(df['age'].median(), inplace=True)"}},
	}
}

func TestNotebookStructure(t *testing.T) {
	b, err := NotebookBytes(sampleLog())
	require.NoError(t, err)

	var nb struct {
		Cells []struct {
			CellType string   `json:"cell_type"`
			Source   []string `json:"source"`
		} `json:"cells"`
		Nbformat      int `json:"nbformat"`
		NbformatMinor int `json:"nbformat_minor"`
	}
	require.NoError(t, json.Unmarshal(b, &nb))

	assert.Equal(t, 4, nb.Nbformat)
	assert.Equal(t, 4, nb.NbformatMinor)
	// Imports cell plus a markdown/code pair per step.
	require.Len(t, nb.Cells, 5)
	assert.Equal(t, "code", nb.Cells[0].CellType)
	assert.Equal(t, "import pandas as pd\n", nb.Cells[0].Source[0])
	assert.Equal(t, "markdown", nb.Cells[1].CellType)
	assert.Equal(t, []string{"### Load Data"}, nb.Cells[1].Source)
	assert.Equal(t, "code", nb.Cells[2].CellType)
	assert.Equal(t, "df = pd.read_csv(file_path)\n", nb.Cells[2].Source[1])
}

func TestNotebookCodeCellHasNullExecutionCount(t *testing.T) {
	b, err := NotebookBytes(nil)
	require.NoError(t, err)

	var nb struct {
		Cells []map[string]any `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(b, &nb))
	require.Len(t, nb.Cells, 1)

	count, present := nb.Cells[0]["execution_count"]
	assert.True(t, present)
	assert.Nil(t, count)
}

func TestWriteNotebookAppendsExtension(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteNotebook(filepath.Join(dir, "workflow"), sampleLog())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "workflow.ipynb"), path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(b))
}
