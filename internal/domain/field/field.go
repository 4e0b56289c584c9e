package field

import (
	"fmt"

	"github.com/kailas-cloud/resultgrid/internal/domain"
)

// Descriptor is an immutable value object describing a logical column,
// independent of how it is rendered.
type Descriptor struct {
	key          string
	title        string
	dataIndex    string
	sortable     bool
	displayIndex int
}

// New validates and creates a Descriptor.
// dataIndex defaults to key when empty.
func New(key, title, dataIndex string, sortable bool, displayIndex int) (Descriptor, error) {
	if key == "" {
		return Descriptor{}, fmt.Errorf("%w: key is required", domain.ErrInvalidDescriptor)
	}
	if title == "" {
		return Descriptor{}, fmt.Errorf("%w: title is required for %q", domain.ErrInvalidDescriptor, key)
	}
	if dataIndex == "" {
		dataIndex = key
	}
	return Descriptor{
		key: key, title: title, dataIndex: dataIndex,
		sortable: sortable, displayIndex: displayIndex,
	}, nil
}

// Key returns the strategy dispatch key.
func (d Descriptor) Key() string { return d.key }

// Title returns the column title.
func (d Descriptor) Title() string { return d.title }

// DataIndex returns the row attribute holding the column's raw value.
func (d Descriptor) DataIndex() string { return d.dataIndex }

// Sortable reports whether the column may be sorted.
func (d Descriptor) Sortable() bool { return d.sortable }

// DisplayIndex returns the fixed display position.
func (d Descriptor) DisplayIndex() int { return d.displayIndex }

// ValidateSet checks a descriptor list. Titles must be unique because column
// visibility selects by title; keys must be unique because sort state and
// comparators are looked up by key.
func ValidateSet(ds []Descriptor) error {
	titles := make(map[string]bool, len(ds))
	keys := make(map[string]bool, len(ds))
	for _, d := range ds {
		if titles[d.title] {
			return fmt.Errorf("%w: duplicate title %q", domain.ErrInvalidDescriptor, d.title)
		}
		if keys[d.key] {
			return fmt.Errorf("%w: duplicate key %q", domain.ErrInvalidDescriptor, d.key)
		}
		titles[d.title] = true
		keys[d.key] = true
	}
	return nil
}

// Defaults returns the default field set: label, project, schema and types.
func Defaults() []Descriptor {
	return []Descriptor{
		{key: "label", title: "Label", dataIndex: "label", displayIndex: 0},
		{key: "project", title: "Project", dataIndex: "_project", sortable: true, displayIndex: 1},
		{key: "schema", title: "Schema", dataIndex: "_constrainedBy", sortable: true, displayIndex: 2},
		{key: "@type", title: "Types", dataIndex: "@type", sortable: true, displayIndex: 3},
	}
}
