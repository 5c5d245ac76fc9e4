// Package format renders reports and warm-up results for the terminal,
// as box-drawn ASCII tables or Markdown.
package format

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII Mode = iota
	Markdown
)

// ParseMode maps a flag value to a Mode. "md" and "markdown" select
// Markdown; anything else is ASCII.
func ParseMode(s string) Mode {
	switch s {
	case "md", "markdown":
		return Markdown
	}
	return ASCII
}

// Column describes one table column.
type Column struct {
	Title   string
	Numeric bool // right-aligned
	Wrap    int  // wrap cells wider than this; 0 means never
}

// Column sets for the tables this package renders.
var (
	CategoryColumns = []Column{
		{Title: "Category"},
		{Title: "Pass", Numeric: true},
		{Title: "Fail", Numeric: true},
		{Title: "Other", Numeric: true},
	}
	NonPassingColumns = []Column{
		{Title: ""},
		{Title: "Test"},
		{Title: "Category"},
		{Title: "Reason"},
	}
	WarmColumns = []Column{
		{Title: "Executor"},
		{Title: "Kind"},
		{Title: "Cache"},
		{Title: "Passed", Numeric: true},
		{Title: "Total", Numeric: true},
		{Title: "Source"},
		{Title: "Time", Numeric: true},
		{Title: "Error", Wrap: 50},
	}
)

// Table accumulates rows for one column set and renders them in a fixed Mode.
type Table struct {
	w    table.Writer
	mode Mode
	cols int
}

// NewTable starts a table with the given columns as its header.
func NewTable(m Mode, cols ...Column) *Table {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}

	header := make(table.Row, len(cols))
	cfgs := make([]table.ColumnConfig, len(cols))
	for i, c := range cols {
		header[i] = c.Title
		cfgs[i] = table.ColumnConfig{Number: i + 1, WidthMax: c.Wrap}
		if c.Numeric {
			cfgs[i].Align = text.AlignRight
			cfgs[i].AlignFooter = text.AlignRight
		}
	}
	w.AppendHeader(header)
	w.SetColumnConfigs(cfgs)
	return &Table{w: w, mode: m, cols: len(cols)}
}

// Row appends a data row. Missing trailing cells render empty.
func (t *Table) Row(vals ...any) { t.w.AppendRow(t.pad(vals)) }

// Footer appends a footer row, e.g. totals.
func (t *Table) Footer(vals ...any) { t.w.AppendFooter(t.pad(vals)) }

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.w.Length() }

func (t *Table) pad(vals []any) table.Row {
	row := make(table.Row, max(len(vals), t.cols))
	copy(row, vals)
	for i := len(vals); i < len(row); i++ {
		row[i] = ""
	}
	return row
}

func (t *Table) String() string {
	if t.mode == Markdown {
		return t.w.RenderMarkdown()
	}
	return t.w.Render()
}
