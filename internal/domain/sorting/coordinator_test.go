package sorting

import (
	"encoding/json"
	"slices"
	"testing"
)

var testColumns = []Column{
	{Key: "label", DataIndex: "label"},
	{Key: "project", DataIndex: "_project"},
	{Key: "schema", DataIndex: "_constrainedBy"},
}

func newCoordinator(mode Mode) *Coordinator {
	c := NewCoordinator(mode)
	c.SetColumns(testColumns)
	return c
}

func TestToggle_CyclesThroughDirections(t *testing.T) {
	for _, mode := range []Mode{Local, Delegated} {
		t.Run(mode.String(), func(t *testing.T) {
			c := newCoordinator(mode)
			want := []Direction{Ascending, Descending, Unsorted, Ascending}
			for i, w := range want {
				if !c.Toggle("label", false) {
					t.Fatalf("toggle %d ignored", i)
				}
				if got := c.Direction("label"); got != w {
					t.Errorf("toggle %d: direction = %v, want %v", i, got, w)
				}
			}
		})
	}
}

func TestToggle_IgnoresUnknownColumn(t *testing.T) {
	c := newCoordinator(Delegated)
	c.Toggle("label", false)
	before := c.Active()

	if c.Toggle("missing", false) {
		t.Error("toggle on unknown column should be ignored")
	}
	if !slices.Equal(c.Active(), before) {
		t.Errorf("state changed: %v -> %v", before, c.Active())
	}
}

func TestToggle_LocalIsSingleColumn(t *testing.T) {
	c := newCoordinator(Local)
	c.Toggle("label", false)
	c.Toggle("project", true)

	want := []Directive{{Key: "project", Direction: Ascending}}
	if got := c.Active(); !slices.Equal(got, want) {
		t.Errorf("Active = %v, want %v", got, want)
	}
	if c.Direction("label") != Unsorted {
		t.Error("previous column should be reset")
	}
}

func TestToggle_DelegatedMulti(t *testing.T) {
	c := newCoordinator(Delegated)
	c.Toggle("label", false)  // label asc
	c.Toggle("project", true) // + project asc
	c.Toggle("schema", true)  // + schema asc
	c.Toggle("label", true)   // label desc, position kept
	c.Toggle("project", true) // project desc
	c.Toggle("project", true) // project removed

	want := []Directive{
		{Key: "label", Direction: Descending},
		{Key: "schema", Direction: Ascending},
	}
	if got := c.Active(); !slices.Equal(got, want) {
		t.Errorf("Active = %v, want %v", got, want)
	}

	c.Toggle("project", false)
	want = []Directive{{Key: "project", Direction: Ascending}}
	if got := c.Active(); !slices.Equal(got, want) {
		t.Errorf("single toggle should reset others: Active = %v, want %v", got, want)
	}
}

func TestIntent_UsesDataIndex(t *testing.T) {
	c := newCoordinator(Delegated)
	c.Toggle("project", false)
	c.Toggle("schema", true)
	c.Toggle("schema", true)

	intent := c.Intent()
	if intent.None() {
		t.Fatal("expected directives")
	}
	want := []Directive{
		{Key: "_project", Direction: Ascending},
		{Key: "_constrainedBy", Direction: Descending},
	}
	if got := intent.Directives(); !slices.Equal(got, want) {
		t.Errorf("Directives = %v, want %v", got, want)
	}
}

func TestIntent_NoneAfterLastColumnCleared(t *testing.T) {
	c := newCoordinator(Delegated)
	c.Toggle("label", false)
	c.Toggle("label", false)
	c.Toggle("label", false)
	if !c.Intent().None() {
		t.Errorf("expected no-sort intent, got %v", c.Intent().Directives())
	}
}

func TestClear(t *testing.T) {
	c := newCoordinator(Delegated)
	if c.Clear() {
		t.Error("Clear on empty state should report no change")
	}
	c.Toggle("label", false)
	if !c.Clear() {
		t.Error("Clear should report change")
	}
	if len(c.Active()) != 0 {
		t.Error("state not cleared")
	}
}

func TestSetColumns_DropsRemovedColumns(t *testing.T) {
	c := newCoordinator(Delegated)
	c.Toggle("label", false)
	c.Toggle("project", true)

	changed := c.SetColumns([]Column{{Key: "project", DataIndex: "_project"}})
	if !changed {
		t.Error("expected change")
	}
	want := []Directive{{Key: "project", Direction: Ascending}}
	if got := c.Active(); !slices.Equal(got, want) {
		t.Errorf("Active = %v, want %v", got, want)
	}
	if c.SetColumns([]Column{{Key: "project", DataIndex: "_project"}}) {
		t.Error("same columns should not change state")
	}
}

func TestIntent_JSON(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		want   string
	}{
		{"none", NoSort(), `null`},
		{"empty list is none", NewIntent([]Directive{}), `null`},
		{"directives", NewIntent([]Directive{{Key: "a", Direction: Descending}}), `[{"key":"a","direction":"desc"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.intent)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != tt.want {
				t.Errorf("json = %s, want %s", b, tt.want)
			}
		})
	}

	var decoded Intent
	if err := json.Unmarshal([]byte(`[{"key":"x","direction":"ascending"}]`), &decoded); err != nil {
		t.Fatal(err)
	}
	if d, ok := decoded.First(); !ok || d.Key != "x" || d.Direction != Ascending {
		t.Errorf("decoded = %+v", decoded.Directives())
	}
}

func TestParseDirection(t *testing.T) {
	tests := map[string]Direction{"asc": Ascending, "DESC": Descending, "descend": Descending, "": Unsorted}
	for in, want := range tests {
		got, err := ParseDirection(in)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("sideways"); err == nil {
		t.Error("expected error")
	}
}
