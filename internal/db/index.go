package db

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IndexDefinition describes the FT index over hit documents. Documents are
// always JSON and every attribute is a TAG.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Fields   []IndexField
}

// IndexField is one schema attribute.
type IndexField struct {
	Path  string // JSONPath into the hit, e.g. $._project
	Alias string // name used by SORTBY; empty means Path

	// Sortable keeps the value in the sort table so SORTBY can use it.
	Sortable bool
}

// Name returns the attribute name queries refer to.
func (f IndexField) Name() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Path
}

var identifierRe = regexp.MustCompile(`^[A-Za-z0-9_:-]+$`)

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool { return identifierRe.MatchString(s) }

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if !IsValidIdentifier(idx.Name) {
		return fmt.Errorf("%w: index name %q", ErrInvalidIndex, idx.Name)
	}
	if len(idx.Fields) == 0 {
		return fmt.Errorf("%w: index %s has no fields", ErrInvalidIndex, idx.Name)
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i, f := range idx.Fields {
		if f.Path == "" {
			return fmt.Errorf("%w: field %d has no path", ErrInvalidIndex, i)
		}
		if f.Alias != "" && !IsValidIdentifier(f.Alias) {
			return fmt.Errorf("%w: field alias %q", ErrInvalidIndex, f.Alias)
		}
		if seen[f.Name()] {
			return fmt.Errorf("%w: duplicate field %s", ErrInvalidIndex, f.Name())
		}
		seen[f.Name()] = true
	}
	return nil
}

// Args returns the FT.CREATE arguments, without the command name.
// Multi-valued attributes (@type, _constrainedBy) index every element and
// SORTBY uses the first.
func (idx *IndexDefinition) Args() []string {
	args := []string{idx.Name, "ON", "JSON"}
	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	args = append(args, "SCHEMA")
	for _, f := range idx.Fields {
		args = append(args, f.Path)
		if f.Alias != "" {
			args = append(args, "AS", f.Alias)
		}
		args = append(args, "TAG")
		if f.Sortable {
			args = append(args, "SORTABLE")
		}
	}
	return args
}

// String renders the FT.CREATE command for logs.
func (idx *IndexDefinition) String() string {
	return "FT.CREATE " + strings.Join(idx.Args(), " ")
}

// Sortable returns the names of all SORTABLE fields.
func (idx *IndexDefinition) Sortable() []string {
	var out []string
	for _, f := range idx.Fields {
		if f.Sortable {
			out = append(out, f.Name())
		}
	}
	return out
}
