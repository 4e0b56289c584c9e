// Package visibility decides which columns are shown and in what order.
package visibility

import (
	"cmp"
	"slices"

	"github.com/kailas-cloud/resultgrid/internal/domain/column"
)

// Manager holds the studio flag and the user's title selection.
type Manager struct {
	studio    bool
	selection []string
}

// New creates a Manager.
func New(studio bool) *Manager {
	return &Manager{studio: studio}
}

// Studio reports whether the studio view is active.
func (m *Manager) Studio() bool { return m.studio }

// Select replaces the title selection. Duplicates are collapsed.
func (m *Manager) Select(titles []string) {
	sel := make([]string, 0, len(titles))
	for _, t := range titles {
		if !slices.Contains(sel, t) {
			sel = append(sel, t)
		}
	}
	m.selection = sel
}

// Clear empties the selection.
func (m *Manager) Clear() { m.selection = nil }

// Selection returns a copy of the selected titles.
func (m *Manager) Selection() []string {
	return slices.Clone(m.selection)
}

// Visible returns the columns to show.
//
// In studio mode an empty selection shows every column in resolver order;
// otherwise only selected titles are shown, still in resolver order.
// Outside studio mode all columns are shown ordered by display index, then key.
func (m *Manager) Visible(defs []column.Definition) []column.Definition {
	if !m.studio {
		out := slices.Clone(defs)
		slices.SortStableFunc(out, func(a, b column.Definition) int {
			return cmp.Or(
				cmp.Compare(a.DisplayIndex(), b.DisplayIndex()),
				cmp.Compare(a.Key(), b.Key()),
			)
		})
		return out
	}
	if len(m.selection) == 0 {
		return slices.Clone(defs)
	}
	out := make([]column.Definition, 0, len(m.selection))
	for _, d := range defs {
		if slices.Contains(m.selection, d.Title()) {
			out = append(out, d)
		}
	}
	return out
}
