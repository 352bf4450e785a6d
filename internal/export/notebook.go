// Package export serializes a session's replay log as a Jupyter
// notebook (nbformat 4): one imports cell, then a markdown heading
// and a code cell per logged step.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/leapclean/pkg/core"
)

var preamble = []string{
	"import pandas as pd",
	"import numpy as np",
	"import matplotlib.pyplot as plt",
	"import seaborn as sns",
	"from sklearn.preprocessing import StandardScaler, MinMaxScaler, LabelEncoder",
	"%matplotlib inline",
	"import warnings",
	"warnings.filterwarnings('ignore')",
}

func codeCell(lines []string) map[string]any {
	source := make([]string, len(lines))
	for i, line := range lines {
		source[i] = line + "\n"
	}
	return map[string]any{
		"cell_type":       "code",
		"execution_count": nil,
		"metadata":        map[string]any{},
		"outputs":         []any{},
		"source":          source,
	}
}

func markdownCell(text string) map[string]any {
	return map[string]any{
		"cell_type": "markdown",
		"metadata":  map[string]any{},
		"source":    []string{text},
	}
}

func buildNotebook(log []core.LogEntry) map[string]any {
	cells := []map[string]any{codeCell(preamble)}
	for _, entry := range log {
		cells = append(cells,
			markdownCell(fmt.Sprintf("### %s", entry.Step)),
			codeCell(entry.Ops),
		)
	}
	return map[string]any{
		"cells": cells,
		"metadata": map[string]any{
			"kernelspec": map[string]any{
				"display_name": "Python 3",
				"language":     "python",
				"name":         "python3",
			},
			"language_info": map[string]any{
				"codemirror_mode":    map[string]any{"name": "ipython", "version": 3},
				"file_extension":     ".py",
				"mimetype":           "text/x-python",
				"name":               "python",
				"nbconvert_exporter": "python",
				"pygments_lexer":     "ipython3",
				"version":            "3.8.5",
			},
		},
		"nbformat":       4,
		"nbformat_minor": 4,
	}
}

// NotebookBytes renders the replay log as nbformat JSON.
func NotebookBytes(log []core.LogEntry) ([]byte, error) {
	b, err := json.MarshalIndent(buildNotebook(log), "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encoding notebook: %w", err)
	}
	return b, nil
}

// WriteNotebook writes the replay log to an .ipynb file, appending
// the extension when missing.
func WriteNotebook(path string, log []core.LogEntry) (string, error) {
	if !strings.HasSuffix(path, ".ipynb") {
		path += ".ipynb"
	}
	b, err := NotebookBytes(log)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("writing notebook: %w", err)
	}
	return path, nil
}
