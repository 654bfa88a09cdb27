package cli

import (
	"encoding/json"
	"strings"
)

// Table renders rows as left-aligned, space-separated columns under a
// dashed header rule.
type Table struct {
	headers []string
	rows    [][]string
	gap     int
}

// NewTable creates a table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{headers: headers, gap: 2}
}

// AddRow appends a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	fitted := make([]string, len(t.headers))
	copy(fitted, row)
	t.rows = append(t.rows, fitted)
}

// Render formats the table. A table without headers renders as "".
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var sb strings.Builder
	t.writeLine(&sb, t.headers, widths)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	t.writeLine(&sb, rule, widths)
	for _, row := range t.rows {
		t.writeLine(&sb, row, widths)
	}
	return sb.String()
}

func (t *Table) writeLine(sb *strings.Builder, cells []string, widths []int) {
	sep := strings.Repeat(" ", t.gap)
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString(sep)
		}
		if i == len(cells)-1 {
			sb.WriteString(cell)
			continue
		}
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
	}
	sb.WriteString("\n")
}

func jsonIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
