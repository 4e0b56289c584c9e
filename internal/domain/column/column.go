package column

import (
	"github.com/kailas-cloud/resultgrid/internal/domain/field"
	"github.com/kailas-cloud/resultgrid/internal/domain/row"
)

// RenderFunc renders one cell of a column.
type RenderFunc func(r row.Record) Display

// Comparator orders two rows for a column, returning -1, 0 or 1.
type Comparator func(a, b row.Record) int

// Definition is the concrete rendering and sorting behavior resolved for one
// field descriptor. comparator is nil when the column cannot be sorted locally.
type Definition struct {
	desc       field.Descriptor
	render     RenderFunc
	comparator Comparator
}

// Descriptor returns the field descriptor the column was resolved from.
func (d Definition) Descriptor() field.Descriptor { return d.desc }

// Key returns the field key.
func (d Definition) Key() string { return d.desc.Key() }

// Title returns the column title.
func (d Definition) Title() string { return d.desc.Title() }

// DataIndex returns the attribute holding the raw value.
func (d Definition) DataIndex() string { return d.desc.DataIndex() }

// DisplayIndex returns the fixed display position.
func (d Definition) DisplayIndex() int { return d.desc.DisplayIndex() }

// Sortable reports whether a comparator is attached.
func (d Definition) Sortable() bool { return d.comparator != nil }

// Render renders the cell for r.
func (d Definition) Render(r row.Record) Display {
	if d.render == nil {
		return Absent()
	}
	return d.render(r)
}

// Comparator returns the attached comparator, or nil.
func (d Definition) Comparator() Comparator { return d.comparator }
