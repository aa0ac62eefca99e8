package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by types that can render themselves as a table.
type TableRenderer interface {
	// Headers returns the column headers for the table.
	Headers() []string
	// Rows returns the data rows for the table.
	Rows() [][]string
}

// PrintTable writes data as a formatted table to the writer.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(data.Headers())

	// Configure table style for clean output
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, row := range data.Rows() {
		table.Append(row)
	}

	table.Render()
	return nil
}

// Pairs renders store (key, value) pairs as a two-column table, each cell
// escaped via Escape so binary keys stay readable.
type Pairs [][2][]byte

// Headers implements TableRenderer.
func (p Pairs) Headers() []string {
	return []string{"KEY", "VALUE"}
}

// Rows implements TableRenderer.
func (p Pairs) Rows() [][]string {
	rows := make([][]string, len(p))
	for i, pair := range p {
		rows[i] = []string{Escape(pair[0]), Escape(pair[1])}
	}
	return rows
}
