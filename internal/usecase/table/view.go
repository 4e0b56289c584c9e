package table

import (
	"slices"

	"github.com/kailas-cloud/resultgrid/internal/domain/column"
	"github.com/kailas-cloud/resultgrid/internal/domain/filter"
	"github.com/kailas-cloud/resultgrid/internal/domain/row"
	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
)

// View is the render model of the table at one point in time.
type View struct {
	Columns    []ColumnView        `json:"columns"`
	Rows       []RowView           `json:"rows"`
	Pagination Pagination          `json:"pagination"`
	SearchText string              `json:"search_text"`
	Selection  []string            `json:"selection"`
	Sort       []sorting.Directive `json:"sort"`
	Mode       sorting.Mode        `json:"mode"`
	Studio     bool                `json:"studio"`
	// Titles lists every column title, for the studio column select.
	Titles []string `json:"titles,omitempty"`
}

// ColumnView is one visible column.
type ColumnView struct {
	Key       string            `json:"key"`
	Title     string            `json:"title"`
	DataIndex string            `json:"data_index"`
	Sortable  bool              `json:"sortable"`
	Direction sorting.Direction `json:"direction"`
}

// RowView is one visible row with its cells aligned to View.Columns.
type RowView struct {
	Key    string           `json:"key"`
	Cells  []column.Display `json:"cells"`
	Record row.Record       `json:"record"`
}

// Pagination echoes the paging of the current result snapshot.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// View derives the current render model: visible columns, filtered rows in
// local sort order (or as supplied in delegated mode), pagination echo and
// the owned state.
func (e *Engine) View() View {
	cols := e.visible.Visible(e.defs)
	rows := e.orderedRows(filter.Apply(e.records, e.search))

	v := View{
		Columns:    make([]ColumnView, len(cols)),
		Rows:       make([]RowView, len(rows)),
		Pagination: Pagination{Page: e.page.Page, PageSize: e.page.PageSize, Total: e.page.Total},
		SearchText: e.search,
		Selection:  e.visible.Selection(),
		Sort:       e.sorter.Active(),
		Mode:       e.sorter.Mode(),
		Studio:     e.studio,
	}
	for i, c := range cols {
		v.Columns[i] = ColumnView{
			Key:       c.Key(),
			Title:     c.Title(),
			DataIndex: c.DataIndex(),
			Sortable:  c.Sortable(),
			Direction: e.sorter.Direction(c.Key()),
		}
	}
	for i, r := range rows {
		cells := make([]column.Display, len(cols))
		for j, c := range cols {
			cells[j] = c.Render(r)
		}
		v.Rows[i] = RowView{Key: r.Key(), Cells: cells, Record: r}
	}
	if e.studio {
		v.Titles = make([]string, len(e.defs))
		for i, d := range e.defs {
			v.Titles[i] = d.Title()
		}
	}
	return v
}

func (e *Engine) orderedRows(rows []row.Record) []row.Record {
	if e.sorter.Mode() == sorting.Delegated {
		return rows
	}
	active := e.sorter.Active()
	if len(active) == 0 {
		return rows
	}
	dir := active[0]
	i := slices.IndexFunc(e.defs, func(d column.Definition) bool { return d.Key() == dir.Key })
	if i < 0 || e.defs[i].Comparator() == nil {
		return rows
	}
	cmp := e.defs[i].Comparator()

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b row.Record) int {
		if dir.Direction == sorting.Descending {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return out
}
