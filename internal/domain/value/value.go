// Package value holds the conversions every table stage agrees on:
// how a dynamic attribute is stringified and how two attributes compare.
package value

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Velocidex/ordereddict"
)

// String stringifies a dynamic attribute value.
// Arrays join their elements with ","; objects render as compact JSON.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = String(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	case *ordereddict.Dict:
		b, err := t.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Number returns v as float64 when it is numeric.
func Number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Compare orders two attribute values, returning -1, 0 or 1.
// Numbers compare numerically, strings byte-wise; mixed or composite values
// compare by their String form. An absent value (present=false) orders first.
func Compare(a any, aPresent bool, b any, bPresent bool) int {
	switch {
	case !aPresent && !bPresent:
		return 0
	case !aPresent:
		return -1
	case !bPresent:
		return 1
	}

	if na, ok := Number(a); ok {
		if nb, ok := Number(b); ok {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}

	sa, aIsString := a.(string)
	sb, bIsString := b.(string)
	if !aIsString || !bIsString {
		sa, sb = String(a), String(b)
	}
	return strings.Compare(sa, sb)
}
