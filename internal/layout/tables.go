package layout

import (
	"math"
	"sort"

	"github.com/scandocs/scandoc/internal/ocr"
)

// Table is an ordered sequence of rows, each an ordered sequence of cell
// strings left-to-right.
type Table [][]string

// Tables clusters fragments into rows by vertical proximity and assembles a
// table from the rows that have at least two cells. The row's reference y is
// anchored to the first fragment that opened the row, not a running average,
// so later fragments cannot drift the row downward. A table is only emitted
// when more than one qualifying row exists; otherwise nil is returned.
// Never fails: non-tabular input simply yields no table.
func (c Config) Tables(frags []ocr.Fragment) Table {
	var rows [][]ocr.Fragment
	var current []ocr.Fragment
	var anchorY float64

	for _, f := range frags {
		if len(current) == 0 {
			current = append(current, f)
			anchorY = f.YCenter
			continue
		}
		if math.Abs(f.YCenter-anchorY) < c.RowTolerance {
			current = append(current, f)
			continue
		}
		rows = append(rows, closeRow(current))
		current = []ocr.Fragment{f}
		anchorY = f.YCenter
	}
	if len(current) > 0 {
		rows = append(rows, closeRow(current))
	}

	var table Table
	for _, row := range rows {
		// Single-fragment rows are prose, not single-column table rows.
		if len(row) < 2 {
			continue
		}
		cells := make([]string, len(row))
		for i, f := range row {
			cells[i] = CleanText(f.Text)
		}
		table = append(table, cells)
	}
	if len(table) < 2 {
		return nil
	}
	return table
}

// closeRow orders a finished row's fragments left-to-right.
func closeRow(row []ocr.Fragment) []ocr.Fragment {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].XCenter < row[j].XCenter
	})
	return row
}
