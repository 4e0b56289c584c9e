package column

import (
	"strings"

	"github.com/kailas-cloud/resultgrid/internal/domain/row"
	"github.com/kailas-cloud/resultgrid/internal/domain/value"
)

// labelAttributes are tried in order before falling back to the identifier.
var labelAttributes = []string{"prefLabel", "label", "_label", "name", "_name"}

// Label resolves a human-readable label for a row: the first non-empty
// label-like attribute, else the terminal segment of @id, else of _self.
func Label(r row.Record) string {
	for _, attr := range labelAttributes {
		if v, ok := r.Get(attr); ok && v != nil {
			if s := value.String(v); s != "" {
				return s
			}
		}
	}
	for _, attr := range []string{"@id", "_self"} {
		if s := r.GetString(attr); s != "" {
			return TerminalSegment(s)
		}
	}
	return ""
}

// TerminalSegment returns the part of an identifier after the last "/",
// then after the last "#".
func TerminalSegment(id string) string {
	id = strings.TrimRight(id, "/")
	s := id[strings.LastIndex(id, "/")+1:]
	return s[strings.LastIndex(s, "#")+1:]
}
