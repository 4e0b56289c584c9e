package row

import (
	"github.com/Velocidex/ordereddict"
)

// KeyField is the attribute carrying the row identity.
const KeyField = "key"

// Record is a flat, keyed row produced from one hit. Records are immutable:
// the constructor copies its input and accessors never expose the backing dict.
type Record struct {
	key    string
	fields *ordereddict.Dict
}

// NewRecord creates a Record from fields, attaching key as the row identity.
func NewRecord(key string, fields *ordereddict.Dict) Record {
	d := ordereddict.NewDict()
	if fields != nil {
		for _, item := range fields.Items() {
			d.Set(item.Key, item.Value)
		}
	}
	d.Set(KeyField, key)
	return Record{key: key, fields: d}
}

// Key returns the row identity (the hit's _self).
func (r Record) Key() string { return r.key }

// Get returns the attribute value and whether it is present.
func (r Record) Get(name string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(name)
}

// GetString returns the attribute as a string; non-string values yield "".
func (r Record) GetString(name string) string {
	v, ok := r.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Keys returns attribute names in insertion order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return nil
	}
	return r.fields.Keys()
}

// Values returns attribute values in insertion order.
func (r Record) Values() []any {
	if r.fields == nil {
		return nil
	}
	items := r.fields.Items()
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item.Value
	}
	return out
}

// Len returns the number of attributes, including key.
func (r Record) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Map returns a shallow copy of the attributes as a plain map.
func (r Record) Map() map[string]any {
	out := make(map[string]any, r.Len())
	if r.fields == nil {
		return out
	}
	for _, item := range r.fields.Items() {
		out[item.Key] = item.Value
	}
	return out
}

// MarshalJSON encodes the attributes in insertion order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}
