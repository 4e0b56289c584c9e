package value

import (
	"encoding/json"
	"testing"

	"github.com/Velocidex/ordereddict"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "Hello", "Hello"},
		{"bool", true, "true"},
		{"float integral", float64(42), "42"},
		{"float fraction", 1.5, "1.5"},
		{"json number", json.Number("7"), "7"},
		{"int", 3, "3"},
		{"array", []any{"a", float64(1), nil}, "a,1,"},
		{"nested array", []any{[]any{"x", "y"}, "z"}, "x,y,z"},
		{"dict", ordereddict.NewDict().Set("b", "1").Set("a", "2"), `{"b":"1","a":"2"}`},
		{"map", map[string]any{"k": "v"}, `{"k":"v"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := String(tt.in); got != tt.want {
				t.Errorf("String(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a        any
		aPresent bool
		b        any
		bPresent bool
		want     int
	}{
		{"strings less", "Apple", true, "Banana", true, -1},
		{"strings equal", "x", true, "x", true, 0},
		{"strings greater", "b", true, "a", true, 1},
		{"numbers numeric not lexicographic", float64(9), true, float64(10), true, -1},
		{"json numbers", json.Number("2"), true, float64(1), true, 1},
		{"mixed stringified", float64(10), true, "9", true, -1},
		{"arrays stringified", []any{"a", "b"}, true, []any{"a", "c"}, true, -1},
		{"absent first", nil, false, "a", true, -1},
		{"present after absent", "a", true, nil, false, 1},
		{"both absent", nil, false, nil, false, 0},
		{"null present", nil, true, "a", true, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.aPresent, tt.b, tt.bPresent); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompare_Antisymmetric(t *testing.T) {
	vals := []any{"a", "B", float64(1), float64(-2), []any{"x"}, true}
	for _, a := range vals {
		for _, b := range vals {
			if Compare(a, true, b, true) != -Compare(b, true, a, true) {
				t.Errorf("Compare(%v,%v) not antisymmetric", a, b)
			}
		}
	}
}
