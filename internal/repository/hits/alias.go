package hits

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/resultgrid/internal/db"
)

// sortAliases maps each sortable attribute to an index alias: leading
// punctuation is trimmed and other invalid characters become underscores.
// Collisions get a numeric suffix.
func sortAliases(fields []string) map[string]string {
	out := make(map[string]string, len(fields))
	taken := make(map[string]bool, len(fields))
	for _, f := range fields {
		if _, ok := out[f]; ok {
			continue
		}
		base := aliasBase(f)
		alias := base
		for n := 2; taken[alias]; n++ {
			alias = base + "_" + strconv.Itoa(n)
		}
		taken[alias] = true
		out[f] = alias
	}
	return out
}

func aliasBase(field string) string {
	trimmed := strings.TrimLeft(field, "_@$.-:")
	var b strings.Builder
	for _, r := range trimmed {
		if db.IsValidIdentifier(string(r)) && r != ':' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "field"
	}
	return b.String()
}

// jsonPath addresses a top-level attribute, using bracket notation for names
// that are not plain identifiers.
func jsonPath(field string) string {
	if db.IsValidIdentifier(field) && !strings.ContainsAny(field, ":-") {
		return "$." + field
	}
	return `$["` + strings.ReplaceAll(field, `"`, `\"`) + `"]`
}
