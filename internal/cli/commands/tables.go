package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/leapclean/internal/state"
	"github.com/leapstack-labs/leapclean/internal/transform"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

func renderDescriptors(w io.Writer, descs []core.ColumnDescriptor) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Column", "Type", "% Unique", "% Missing"})
	for _, d := range descs {
		t.AppendRow(table.Row{d.ID, d.Name, d.Type.String(), d.PctUnique, d.PctMissing})
	}
	t.Render()
}

// sortedRecords flattens a suggestion map into id order for display.
func sortedRecords(s core.Suggestions) []core.DiagnosticRecord {
	recs := make([]core.DiagnosticRecord, 0, len(s))
	for _, rec := range s {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}

func renderSuggestions(w io.Writer, domain core.Domain, s core.Suggestions) {
	recs := sortedRecords(s)
	if len(recs) == 0 {
		_, _ = fmt.Fprintln(w, "(no columns flagged)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	switch domain {
	case core.DomainMissing:
		t.AppendHeader(table.Row{"ID", "Column", "Missing %", "Suggested"})
		for _, r := range recs {
			t.AppendRow(table.Row{r.ID, r.Column, r.MissingPct, r.Action})
		}
	case core.DomainOutliers:
		t.AppendHeader(table.Row{"ID", "Column", "Outliers", "Outliers %", "Lower", "Upper", "Suggested"})
		for _, r := range recs {
			t.AppendRow(table.Row{r.ID, r.Column, r.OutlierCount, r.OutlierPct, r.LowerBound, r.UpperBound, r.Action})
		}
	case core.DomainCorrelation:
		t.AppendHeader(table.Row{"ID", "Column", "Correlated With", "Suggested"})
		for _, r := range recs {
			t.AppendRow(table.Row{r.ID, r.Column, formatPairs(r.CorrelatedWith), r.Action})
		}
	case core.DomainEncoding:
		t.AppendHeader(table.Row{"ID", "Column", "Unique", "Suggested"})
		for _, r := range recs {
			t.AppendRow(table.Row{r.ID, r.Column, r.Cardinality, r.Action})
		}
	case core.DomainScaling:
		t.AppendHeader(table.Row{"ID", "Column", "Skew", "Suggested"})
		for _, r := range recs {
			t.AppendRow(table.Row{r.ID, r.Column, r.Skew, r.Action})
		}
	}
	t.Render()
}

func formatPairs(pairs []core.CorrelationPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s (%.2f)", p.Column, p.Coefficient)
	}
	return strings.Join(parts, ", ")
}

func renderResult(w io.Writer, res *transform.Result) {
	if !res.Applied() {
		_, _ = fmt.Fprintln(w, "No operations applied.")
	} else {
		_, _ = fmt.Fprintf(w, "Applied %q:\n", res.Entry.Step)
		for _, op := range res.Entry.Ops {
			_, _ = fmt.Fprintf(w, "  %s\n", op)
		}
	}
	for _, s := range res.Skipped {
		_, _ = fmt.Fprintf(w, "Skipped %s: %s\n", s.Column, s.Reason)
	}
	for _, n := range res.Notes {
		_, _ = fmt.Fprintf(w, "Note: %s\n", n)
	}
	if res.RowsRemoved > 0 {
		_, _ = fmt.Fprintf(w, "Rows removed: %d\n", res.RowsRemoved)
	}
	if len(res.Dropped) > 0 {
		_, _ = fmt.Fprintf(w, "Columns dropped: %s\n", strings.Join(res.Dropped, ", "))
	}
}

func renderHistory(w io.Writer, batches []*state.Batch) {
	if len(batches) == 0 {
		_, _ = fmt.Fprintln(w, "(no batches recorded)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Applied At", "Session", "Dataset", "Step", "Ops", "Rows Removed", "Cols Dropped"})
	for _, b := range batches {
		t.AppendRow(table.Row{
			b.AppliedAt.Format("2006-01-02 15:04:05"),
			b.SessionID,
			b.Dataset,
			b.Step,
			len(b.Ops),
			b.RowsRemoved,
			strings.Join(b.ColsDropped, ", "),
		})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d batches)\n", len(batches))
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
