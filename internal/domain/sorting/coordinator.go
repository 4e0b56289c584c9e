package sorting

import "slices"

// Column is what the coordinator needs to know about a sortable column.
type Column struct {
	Key       string
	DataIndex string
}

type entry struct {
	key       string
	direction Direction
}

// Coordinator owns the sort state. In local mode at most one column is active;
// in delegated mode several may be, in activation order.
type Coordinator struct {
	mode     Mode
	sortable map[string]string // key -> dataIndex
	active   []entry
}

// NewCoordinator creates a Coordinator with no sortable columns.
func NewCoordinator(mode Mode) *Coordinator {
	return &Coordinator{mode: mode, sortable: map[string]string{}}
}

// Mode returns the fixed sort mode.
func (c *Coordinator) Mode() Mode { return c.mode }

// SetColumns replaces the set of sortable columns. Active entries for
// columns that are gone or no longer sortable are dropped. It reports whether
// the active set changed.
func (c *Coordinator) SetColumns(cols []Column) bool {
	c.sortable = make(map[string]string, len(cols))
	for _, col := range cols {
		c.sortable[col.Key] = col.DataIndex
	}
	before := len(c.active)
	c.active = slices.DeleteFunc(c.active, func(e entry) bool {
		_, ok := c.sortable[e.key]
		return !ok
	})
	return len(c.active) != before
}

// Toggle advances key one step through its cycle. multi keeps other active
// columns in delegated mode; local mode always sorts by a single column.
// Requests for unknown or non-sortable keys are ignored and return false.
func (c *Coordinator) Toggle(key string, multi bool) bool {
	if _, ok := c.sortable[key]; !ok {
		return false
	}
	if c.mode == Local {
		multi = false
	}

	next := c.Direction(key).next()
	if !multi {
		c.active = nil
		if next != Unsorted {
			c.active = append(c.active, entry{key: key, direction: next})
		}
		return true
	}

	i := slices.IndexFunc(c.active, func(e entry) bool { return e.key == key })
	switch {
	case i < 0:
		c.active = append(c.active, entry{key: key, direction: next})
	case next == Unsorted:
		c.active = slices.Delete(c.active, i, i+1)
	default:
		c.active[i].direction = next
	}
	return true
}

// Clear empties the sort state and reports whether anything was active.
func (c *Coordinator) Clear() bool {
	had := len(c.active) > 0
	c.active = nil
	return had
}

// Direction returns the current direction of key.
func (c *Coordinator) Direction(key string) Direction {
	for _, e := range c.active {
		if e.key == key {
			return e.direction
		}
	}
	return Unsorted
}

// Active returns the active directives keyed by column key.
func (c *Coordinator) Active() []Directive {
	out := make([]Directive, len(c.active))
	for i, e := range c.active {
		out[i] = Directive{Key: e.key, Direction: e.direction}
	}
	return out
}

// Intent returns the delegate intent for the current state, with directive
// keys translated to each column's dataIndex.
func (c *Coordinator) Intent() Intent {
	ds := make([]Directive, 0, len(c.active))
	for _, e := range c.active {
		ds = append(ds, Directive{Key: c.sortable[e.key], Direction: e.direction})
	}
	return NewIntent(ds)
}
