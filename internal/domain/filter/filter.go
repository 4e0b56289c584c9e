package filter

import (
	"strings"

	"github.com/kailas-cloud/resultgrid/internal/domain/row"
	"github.com/kailas-cloud/resultgrid/internal/domain/value"
)

// Match reports whether the lowercased, space-joined values of r contain the
// lowercased query. Every attribute takes part, visible or not.
func Match(r row.Record, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(Haystack(r), strings.ToLower(query))
}

// Apply returns the records matching query, in input order.
// An empty query returns records unchanged.
func Apply(records []row.Record, query string) []row.Record {
	if query == "" {
		return records
	}
	needle := strings.ToLower(query)
	out := make([]row.Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(Haystack(r), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Haystack returns the lowercased text a query is matched against.
func Haystack(r row.Record) string {
	vals := r.Values()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = value.String(v)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
