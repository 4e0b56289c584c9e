package column

import (
	"strings"

	"github.com/kailas-cloud/resultgrid/internal/domain/field"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	"github.com/kailas-cloud/resultgrid/internal/domain/row"
	"github.com/kailas-cloud/resultgrid/internal/domain/value"
)

// Templater expands placeholders in description text with row attributes and
// renders the result. It returns the substituted source and sanitized HTML.
type Templater interface {
	Expand(text string, r row.Record) (source, html string, err error)
}

// Strategy is one entry of the dispatch table: how a column renders and
// which value its comparator orders by.
type Strategy struct {
	Render  func(d field.Descriptor, r row.Record) Display
	SortKey func(d field.Descriptor, r row.Record) (any, bool)
}

// Known strategy keys.
const (
	KeyLabel       = "label"
	KeyDescription = "description"
	KeyProject     = "project"
	KeySchema      = "schema"
	KeyType        = "@type"
)

// Resolver maps field descriptors to column definitions through a closed
// key -> strategy table with a mandatory default.
type Resolver struct {
	strategies map[string]Strategy
	fallback   Strategy
}

// NewResolver creates a Resolver. tmpl may be nil, in which case descriptions
// render as plain text.
func NewResolver(tmpl Templater) *Resolver {
	return &Resolver{
		strategies: map[string]Strategy{
			KeyLabel:       {Render: renderLabel, SortKey: labelSortKey},
			KeyDescription: {Render: descriptionRenderer(tmpl), SortKey: rawSortKey},
			KeyProject:     {Render: renderProject, SortKey: rawSortKey},
			KeySchema:      {Render: renderSchema, SortKey: rawSortKey},
			KeyType:        {Render: renderTypes, SortKey: rawSortKey},
		},
		fallback: Strategy{Render: renderRaw, SortKey: rawSortKey},
	}
}

// Known reports whether key has a dedicated strategy.
func (r *Resolver) Known(key string) bool {
	_, ok := r.strategies[key]
	return ok
}

// Resolve returns exactly one definition per descriptor, same order.
// A comparator is attached only to sortable descriptors.
func (r *Resolver) Resolve(descriptors []field.Descriptor) []Definition {
	defs := make([]Definition, len(descriptors))
	for i, d := range descriptors {
		defs[i] = r.resolveOne(d)
	}
	return defs
}

func (r *Resolver) resolveOne(d field.Descriptor) Definition {
	s, ok := r.strategies[d.Key()]
	if !ok {
		s = r.fallback
	}

	def := Definition{
		desc:   d,
		render: func(rec row.Record) Display { return s.Render(d, rec) },
	}
	if d.Sortable() {
		def.comparator = func(a, b row.Record) int {
			av, aok := s.SortKey(d, a)
			bv, bok := s.SortKey(d, b)
			return value.Compare(av, aok, bv, bok)
		}
	}
	return def
}

func rawSortKey(d field.Descriptor, r row.Record) (any, bool) {
	return r.Get(d.DataIndex())
}

func labelSortKey(_ field.Descriptor, r row.Record) (any, bool) {
	return Label(r), true
}

func renderRaw(d field.Descriptor, r row.Record) Display {
	v, ok := r.Get(d.DataIndex())
	if !ok || v == nil {
		return Absent()
	}
	return Text(value.String(v))
}

func renderLabel(_ field.Descriptor, r row.Record) Display {
	l := Label(r)
	if l == "" {
		return Absent()
	}
	return Text(l)
}

func descriptionRenderer(tmpl Templater) func(field.Descriptor, row.Record) Display {
	return func(d field.Descriptor, r row.Record) Display {
		v, ok := r.Get(d.DataIndex())
		if !ok || v == nil {
			return Absent()
		}
		text := value.String(v)
		if tmpl == nil {
			return Text(text)
		}
		source, html, err := tmpl.Expand(text, r)
		if err != nil {
			return Text(text)
		}
		return Display{Kind: KindMarkdown, Text: source, HTML: html}
	}
}

func renderProject(_ field.Descriptor, r row.Record) Display {
	ref, err := ParseSelf(r.GetString(hit.SelfField))
	if err != nil {
		return Absent()
	}
	return Text(ref.Org + " | " + ref.Project)
}

func renderSchema(d field.Descriptor, r row.Record) Display {
	v, ok := r.Get(d.DataIndex())
	if !ok || v == nil {
		return Absent()
	}
	full := value.String(v)
	return Display{Kind: KindTooltip, Text: full[strings.LastIndex(full, "/")+1:], Tooltip: full}
}

func renderTypes(d field.Descriptor, r row.Record) Display {
	v, ok := r.Get(d.DataIndex())
	if !ok || v == nil {
		return Absent()
	}
	var items []string
	switch t := v.(type) {
	case []any:
		items = make([]string, 0, len(t))
		for _, e := range t {
			items = append(items, value.String(e))
		}
	case []string:
		items = append(items, t...)
	default:
		items = []string{value.String(t)}
	}
	if len(items) == 0 {
		return Absent()
	}
	return Display{Kind: KindIcons, Items: items}
}
