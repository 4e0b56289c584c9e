// Package sorting holds the per-column sort state machine and the intent
// emitted to an external query layer.
package sorting

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Direction is a sort direction.
type Direction int

// Directions. Unsorted is the zero value and never appears in a Directive.
const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// ParseDirection accepts asc/ascending and desc/descending, case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "ascend":
		return Ascending, nil
	case "desc", "descending", "descend":
		return Descending, nil
	case "":
		return Unsorted, nil
	default:
		return Unsorted, fmt.Errorf("unknown sort direction %q", s)
	}
}

// MarshalJSON encodes the direction as "asc" or "desc".
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == Unsorted {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "asc"/"desc".
func (d *Direction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// next advances the per-column cycle UNSORTED -> ASC -> DESC -> UNSORTED.
func (d Direction) next() Direction {
	switch d {
	case Unsorted:
		return Ascending
	case Ascending:
		return Descending
	default:
		return Unsorted
	}
}

// Directive is one sort instruction.
type Directive struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Intent is what a delegate receives: either a non-empty ordered list of
// directives, or no sort at all.
type Intent struct {
	directives []Directive
}

// NoSort returns the explicit no-sort intent.
func NoSort() Intent { return Intent{} }

// NewIntent creates an intent from directives. An empty list is NoSort.
func NewIntent(ds []Directive) Intent {
	if len(ds) == 0 {
		return NoSort()
	}
	return Intent{directives: append([]Directive(nil), ds...)}
}

// None reports whether this is the no-sort signal.
func (i Intent) None() bool { return len(i.directives) == 0 }

// Directives returns a copy of the ordered directives; nil for NoSort.
func (i Intent) Directives() []Directive {
	if i.None() {
		return nil
	}
	return append([]Directive(nil), i.directives...)
}

// First returns the leading directive.
func (i Intent) First() (Directive, bool) {
	if i.None() {
		return Directive{}, false
	}
	return i.directives[0], true
}

// MarshalJSON encodes NoSort as null and directives as an array.
func (i Intent) MarshalJSON() ([]byte, error) {
	if i.None() {
		return []byte("null"), nil
	}
	return json.Marshal(i.directives)
}

// UnmarshalJSON accepts null or an array of directives.
func (i *Intent) UnmarshalJSON(b []byte) error {
	var ds []Directive
	if err := json.Unmarshal(b, &ds); err != nil {
		return err
	}
	*i = NewIntent(ds)
	return nil
}

// Mode selects who orders rows.
type Mode int

// Modes.
const (
	// Local orders rows in the engine with column comparators.
	Local Mode = iota
	// Delegated emits intents and never reorders rows.
	Delegated
)

func (m Mode) String() string {
	if m == Delegated {
		return "delegated"
	}
	return "local"
}

// MarshalJSON encodes the mode name.
func (m Mode) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }
