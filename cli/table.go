package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"
)

// renderMatrix prints the rows of a matrix as a table with a header row of column indices.
func renderMatrix(w io.Writer, title string, rows [][]float64) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(title)
	if len(rows) > 0 {
		header := table.Row{"#"}
		for j := range rows[0] {
			header = append(header, strconv.Itoa(j))
		}
		t.AppendHeader(header)
	}
	for i, row := range rows {
		t.AppendRow(append(table.Row{strconv.Itoa(i)},
			lo.Map(row, func(v float64, _ int) interface{} { return fmt.Sprintf("%.6g", v) })...))
	}
	t.Render()
}

// renderSummary prints key value pairs in the order given.
func renderSummary(w io.Writer, pairs ...interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	for _, pair := range lo.Chunk(pairs, 2) {
		if len(pair) == 2 {
			t.AppendRow(table.Row{pair[0], pair[1]})
		}
	}
	t.Render()
}
