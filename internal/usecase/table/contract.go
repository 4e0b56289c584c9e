package table

import (
	"github.com/kailas-cloud/resultgrid/internal/domain/row"
	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
)

// SortDelegate receives the sort intent whenever the sort state changes in
// delegated mode. It must not block or reenter the engine.
type SortDelegate func(intent sorting.Intent)

// RowActivation is called with the full record of an activated row.
type RowActivation func(r row.Record)

// ErrorReporter receives diagnostics for rows dropped during normalization.
type ErrorReporter interface {
	Report(err error)
}
