// Package output renders table views for terminals.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
	"github.com/kailas-cloud/resultgrid/internal/usecase/table"
)

// Render writes the visible columns and rows of v to w, followed by a one
// line summary of the pagination echo.
func Render(w io.Writer, v table.View) error {
	t := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.Off,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
	)

	t.Header(headers(v))
	rows := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		cells := make([]string, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = c.String()
		}
		rows[i] = cells
	}
	if err := t.Bulk(rows); err != nil {
		return fmt.Errorf("table rows: %w", err)
	}
	if err := t.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	_, err := fmt.Fprintf(w, "%d of %d rows (page %d, size %d)\n",
		len(v.Rows), v.Pagination.Total, v.Pagination.Page, v.Pagination.PageSize)
	return err
}

// headers returns column titles with a sort marker on sorted columns.
func headers(v table.View) []string {
	out := make([]string, len(v.Columns))
	for i, c := range v.Columns {
		switch c.Direction {
		case sorting.Ascending:
			out[i] = c.Title + " ▲"
		case sorting.Descending:
			out[i] = c.Title + " ▼"
		default:
			out[i] = c.Title
		}
	}
	return out
}

// ParseSort parses a key[:asc|desc] sort flag.
func ParseSort(s string) (key string, dir sorting.Direction, err error) {
	key, raw, _ := strings.Cut(s, ":")
	if key == "" {
		return "", sorting.Unsorted, fmt.Errorf("sort %q: key is required", s)
	}
	if raw == "" {
		return key, sorting.Ascending, nil
	}
	dir, err = sorting.ParseDirection(raw)
	if err != nil {
		return "", sorting.Unsorted, err
	}
	if dir == sorting.Unsorted {
		dir = sorting.Ascending
	}
	return key, dir, nil
}
