package pipeline

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// catalogPadding is added to the widest name to get the cell width.
const catalogPadding = 3

// DefaultColumns is the column count used for the help catalog.
const DefaultColumns = 3

// FormatColumns lays items out column-major in ncolumns columns. Every cell
// is left-justified to the widest item plus catalogPadding and cells are
// joined by a single space. The last columns are padded with blank cells so
// the output is rectangular. An empty list formats to "".
func FormatColumns(items []string, ncolumns int) string {
	if len(items) == 0 {
		return ""
	}
	if ncolumns < 1 {
		ncolumns = 1
	}

	maxWidth := 0
	for _, s := range items {
		if w := runewidth.StringWidth(s); w > maxWidth {
			maxWidth = w
		}
	}
	maxWidth += catalogPadding

	n := len(items) / ncolumns
	if len(items)%ncolumns != 0 {
		n++
	}

	columns := make([][]string, ncolumns)
	for x := range columns {
		lo := clamp(x*n, len(items))
		hi := clamp(lo+n, len(items))
		col := make([]string, n)
		copy(col, items[lo:hi])
		columns[x] = col
	}

	rows := make([]string, n)
	cells := make([]string, ncolumns)
	for i := range rows {
		for x, col := range columns {
			cells[x] = runewidth.FillRight(col[i], maxWidth)
		}
		rows[i] = strings.Join(cells, " ")
	}
	return strings.Join(rows, "\n")
}

func clamp(v, hi int) int {
	if v > hi {
		return hi
	}
	return v
}
