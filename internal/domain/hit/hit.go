package hit

import (
	"encoding/json"
	"fmt"

	"github.com/Velocidex/ordereddict"
)

// Reserved sidecar field names.
const (
	OriginalSourceField = "_original_source"
	SelfField           = "_self"
)

// Hit is one raw search result entry: the serialized original document
// plus the sidecar fields the index stored next to it.
type Hit struct {
	originalSource string
	sidecars       *ordereddict.Dict
}

// New creates a Hit. sidecars is copied; the _original_source entry, if present, is ignored.
func New(originalSource string, sidecars *ordereddict.Dict) Hit {
	return Hit{originalSource: originalSource, sidecars: cloneWithout(sidecars, OriginalSourceField)}
}

// Parse decodes a hit from its _source JSON object.
func Parse(data []byte) (Hit, error) {
	src := ordereddict.NewDict()
	if err := src.UnmarshalJSON(data); err != nil {
		return Hit{}, fmt.Errorf("decode hit source: %w", err)
	}
	return FromSource(src), nil
}

// FromSource builds a Hit from an already decoded _source object.
func FromSource(src *ordereddict.Dict) Hit {
	var original string
	if v, ok := src.Get(OriginalSourceField); ok {
		switch s := v.(type) {
		case string:
			original = s
		case nil:
		default:
			// Some indexers store the document unserialized.
			if b, err := json.Marshal(s); err == nil {
				original = string(b)
			}
		}
	}
	return New(original, src)
}

// OriginalSource returns the serialized original document.
func (h Hit) OriginalSource() string { return h.originalSource }

// Sidecars returns a copy of the indexed sidecar fields.
func (h Hit) Sidecars() *ordereddict.Dict { return cloneWithout(h.sidecars, "") }

// Self returns the _self identifier, or "" when absent.
func (h Hit) Self() string {
	if h.sidecars == nil {
		return ""
	}
	v, ok := h.sidecars.Get(SelfField)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// MarshalJSON encodes the hit back into its _source shape.
func (h Hit) MarshalJSON() ([]byte, error) {
	out := ordereddict.NewDict().Set(OriginalSourceField, h.originalSource)
	if h.sidecars != nil {
		for _, item := range h.sidecars.Items() {
			out.Set(item.Key, item.Value)
		}
	}
	return out.MarshalJSON()
}

func cloneWithout(d *ordereddict.Dict, skip string) *ordereddict.Dict {
	out := ordereddict.NewDict()
	if d == nil {
		return out
	}
	for _, item := range d.Items() {
		if skip != "" && item.Key == skip {
			continue
		}
		out.Set(item.Key, item.Value)
	}
	return out
}
