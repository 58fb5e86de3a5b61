package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders fixed-width columnar output. Cells are clipped and padded
// before styling so ANSI escapes never skew the layout.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
}

// NewTable creates a table with no selection.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// clip fits s to exactly width columns, truncating or right-padding.
func clip(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// line lays cells out against the column widths; missing cells render empty.
func (t *Table) line(cells []string, style lipgloss.Style) string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		out[i] = style.Render(clip(cell, col.Width))
	}
	return strings.Join(out, " ")
}

// Render returns the table: a header line, a rule, then one line per row.
func (t *Table) Render() string {
	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)
	ruleStyle := lipgloss.NewStyle().Foreground(ColorMeta)

	titles := make([]string, len(t.Columns))
	rules := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		titles[i] = col.Title
		rules[i] = strings.Repeat("-", col.Width)
	}

	lines := []string{
		t.line(titles, headerStyle),
		t.line(rules, ruleStyle),
	}
	for i, row := range t.Rows {
		style := cellStyle
		if i == t.SelIdx {
			style = StyleSelected
		}
		lines = append(lines, t.line(row, style))
	}
	return strings.Join(lines, "\n") + "\n"
}

// KeyValueBlock renders labeled values in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(StyleTitle.Render(title) + "\n")
	}
	for _, kv := range pairs {
		label := StyleMeta.Render(fmt.Sprintf("%-20s", kv[0]+":"))
		b.WriteString("  " + label + " " + StyleValue.Render(kv[1]) + "\n")
	}
	return StyleBorder.Render(b.String())
}
