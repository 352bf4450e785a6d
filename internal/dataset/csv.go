// Package dataset reads and writes datasets as CSV with a header row
// and pandas-compatible missing markers.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapclean/pkg/core"
)

// missingMarkers are the cell values treated as missing, matching the
// defaults of the pandas reader the export notebook replays through.
var missingMarkers = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
}

// Read parses a CSV stream into a dataset. The first record is the
// header; a column is numeric when every non-missing cell parses as a
// float, categorical otherwise. An all-missing column stays numeric.
func Read(r io.Reader) (*core.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty csv: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cells := make([][]string, len(header))
	null := make([][]bool, len(header))
	numeric := make([]bool, len(header))
	for i := range numeric {
		numeric[i] = true
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("row has %d cells, header has %d", len(record), len(header))
		}
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			missing := missingMarkers[cell]
			cells[i] = append(cells[i], cell)
			null[i] = append(null[i], missing)
			if !missing && numeric[i] {
				if _, err := strconv.ParseFloat(cell, 64); err != nil {
					numeric[i] = false
				}
			}
		}
	}

	cols := make([]*core.Column, len(header))
	for i, name := range header {
		if numeric[i] {
			nums := make([]float64, len(cells[i]))
			for j, cell := range cells[i] {
				if !null[i][j] {
					nums[j], _ = strconv.ParseFloat(cell, 64)
				}
			}
			cols[i] = core.NewNumericColumn(strings.TrimSpace(name), nums, null[i])
			continue
		}
		strs := make([]string, len(cells[i]))
		for j, cell := range cells[i] {
			if !null[i][j] {
				strs[j] = cell
			}
		}
		cols[i] = core.NewCategoricalColumn(strings.TrimSpace(name), strs, null[i])
	}
	return core.NewDataset(cols)
}

// ReadFile reads a dataset from a CSV file on disk.
func ReadFile(path string) (*core.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Write serializes the dataset as CSV. Missing cells become empty
// strings; numeric cells use the shortest round-trip representation.
func Write(w io.Writer, ds *core.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Names()); err != nil {
		return err
	}
	cols := ds.Columns()
	record := make([]string, len(cols))
	for row := 0; row < ds.Rows(); row++ {
		for i, c := range cols {
			switch {
			case c.Null[row]:
				record[i] = ""
			case c.Type == core.Numeric:
				record[i] = strconv.FormatFloat(c.Nums[row], 'g', -1, 64)
			default:
				record[i] = c.Strs[row]
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the dataset to a CSV file on disk.
func WriteFile(path string, ds *core.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, ds); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// LoadEntry is the replay-log entry describing the initial load of a
// source file.
func LoadEntry(filename string) core.LogEntry {
	return core.LogEntry{
		Step: "Load Data",
		Ops: []string{
			fmt.Sprintf("file_path = r'%s'", filename),
			"df = pd.read_csv(file_path)",
			"print(df.shape)",
		},
	}
}
