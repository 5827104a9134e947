// Package export renders planner data as downloadable documents: the PDF
// planning report and CSV or Excel tables of stored records.
package export

// Column is one column of a Table.
type Column struct {
	Key   string
	Label string
	Width float64 // Excel column width; zero means automatic
}

// Table is a header plus rows of cell values in column order.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]interface{}
}

// Labels returns the column labels in order.
func (t Table) Labels() []string {
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	return labels
}
