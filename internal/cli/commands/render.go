package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/leaptds/pkg/core"
)

// renderRows writes rows in the given format: table, json or csv.
func renderRows(w io.Writer, cols []string, rows []*core.Row, format string) error {
	switch format {
	case "json":
		return renderJSON(w, rows)
	case "csv":
		return renderCSV(w, cols, rows)
	default:
		return renderTable(w, cols, rows)
	}
}

func renderTable(w io.Writer, cols []string, rows []*core.Row) error {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, col := range cols {
		header[i] = col
	}
	t.AppendHeader(header)

	for _, r := range rows {
		row := make(table.Row, len(r.Values))
		for i, v := range r.Values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	return nil
}

func renderJSON(w io.Writer, rows []*core.Row) error {
	results := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		m := r.Map()
		for k, v := range m {
			if b, ok := v.([]byte); ok {
				m[k] = fmt.Sprintf("0x%X", b)
			}
		}
		results = append(results, m)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderCSV(w io.Writer, cols []string, rows []*core.Row) error {
	_, _ = fmt.Fprintln(w, strings.Join(cols, ","))
	for _, r := range rows {
		values := make([]string, len(r.Values))
		for i, v := range r.Values {
			values[i] = escapeCSV(formatValue(v))
		}
		_, _ = fmt.Fprintln(w, strings.Join(values, ","))
	}
	return nil
}

// renderScalar prints a single named value in the given format.
func renderScalar(w io.Writer, name string, v any, format string) error {
	row := &core.Row{Columns: []string{name}, Values: []any{v}}
	if format == "table" || format == "" {
		_, _ = fmt.Fprintln(w, formatValue(v))
		return nil
	}
	return renderRows(w, row.Columns, []*core.Row{row}, format)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("0x%X", x)
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
