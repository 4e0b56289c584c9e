// Package resultgrid turns heterogeneous search hits into a stable,
// filterable, sortable table model.
//
// A Table is driven by two inputs: result snapshots (Page) and column
// descriptors (Field). It owns the search text, the column selection and
// the sort state, and derives a View on demand. In delegated mode sorting
// is forwarded to a callback as a SortIntent and rows are never reordered
// locally.
package resultgrid

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resultgrid/internal/domain/field"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	"github.com/kailas-cloud/resultgrid/internal/domain/row"
	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
	"github.com/kailas-cloud/resultgrid/internal/render"
	"github.com/kailas-cloud/resultgrid/internal/usecase/table"
)

type (
	// Field describes one table column.
	Field = field.Descriptor
	// Hit is one raw search hit.
	Hit = hit.Hit
	// Page is one paginated result snapshot.
	Page = hit.Page
	// Row is a normalized hit.
	Row = row.Record
	// View is the render model of a Table.
	View = table.View
	// SortIntent is the ordered list of directives sent to the query layer.
	SortIntent = sorting.Intent
	// SortDirective is one (key, direction) pair.
	SortDirective = sorting.Directive
	// Direction is a sort direction.
	Direction = sorting.Direction
	// SortMode is Local or Delegated.
	SortMode = sorting.Mode
)

// Sort directions and modes.
const (
	Unsorted   = sorting.Unsorted
	Ascending  = sorting.Ascending
	Descending = sorting.Descending

	Local     = sorting.Local
	Delegated = sorting.Delegated
)

// NewField validates and creates a column descriptor. An empty dataIndex
// defaults to key.
func NewField(key, title, dataIndex string, sortable bool, displayIndex int) (Field, error) {
	return field.New(key, title, dataIndex, sortable, displayIndex)
}

// DefaultFields returns the built-in column set: label, project, schema and types.
func DefaultFields() []Field { return field.Defaults() }

// DecodeHits decodes an Elasticsearch search response or a JSON array of
// _source objects into a Page.
func DecodeHits(data []byte) (Page, error) { return hit.DecodeResponse(data) }

// Option configures a Table.
type Option func(*tableConfig)

type tableConfig struct {
	studio    bool
	delegate  func(SortIntent)
	activate  func(Row)
	reporter  func(error)
	logger    *zap.Logger
	cacheSize int
}

// WithStudio enables the studio view: search, column select and reset.
func WithStudio() Option {
	return func(c *tableConfig) { c.studio = true }
}

// WithSortDelegate switches the table to delegated sorting. fn receives the
// full intent after every sort change.
func WithSortDelegate(fn func(SortIntent)) Option {
	return func(c *tableConfig) { c.delegate = fn }
}

// WithRowActivation sets the callback invoked by Activate.
func WithRowActivation(fn func(Row)) Option {
	return func(c *tableConfig) { c.activate = fn }
}

// WithErrorReporter receives one error per hit dropped as malformed.
func WithErrorReporter(fn func(error)) Option {
	return func(c *tableConfig) { c.reporter = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *tableConfig) { c.logger = l }
}

// WithTemplateCacheSize bounds the compiled description template cache.
func WithTemplateCacheSize(n int) Option {
	return func(c *tableConfig) { c.cacheSize = n }
}

// Table is a stateful result table. It is not safe for concurrent use.
type Table struct {
	engine *table.Engine
}

// New creates a Table over fields.
func New(fields []Field, opts ...Option) (*Table, error) {
	cfg := &tableConfig{}
	for _, o := range opts {
		o(cfg)
	}

	var renderOpts []render.Option
	if cfg.cacheSize > 0 {
		renderOpts = append(renderOpts, render.WithCacheSize(cfg.cacheSize))
	}
	engineOpts := []table.Option{
		table.WithLogger(cfg.logger),
		table.WithRenderer(render.New(renderOpts...)),
	}
	if cfg.studio {
		engineOpts = append(engineOpts, table.WithStudio())
	}
	if cfg.delegate != nil {
		engineOpts = append(engineOpts, table.WithSortDelegate(table.SortDelegate(cfg.delegate)))
	}
	if cfg.activate != nil {
		engineOpts = append(engineOpts, table.WithRowActivation(table.RowActivation(cfg.activate)))
	}
	if cfg.reporter != nil {
		engineOpts = append(engineOpts, table.WithErrorReporter(row.ReporterFunc(cfg.reporter)))
	}

	e, err := table.New(fields, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("resultgrid: %w", err)
	}
	return &Table{engine: e}, nil
}

// Mode returns the sort mode fixed at construction.
func (t *Table) Mode() SortMode { return t.engine.Mode() }

// ReplaceResults swaps in a new result snapshot and returns how many hits
// were dropped as malformed.
func (t *Table) ReplaceResults(p Page) int { return t.engine.ReplaceResults(p) }

// ReplaceFields swaps in a new column set. On error the previous set is kept.
func (t *Table) ReplaceFields(fields []Field) error {
	if err := t.engine.ReplaceFields(fields); err != nil {
		return fmt.Errorf("resultgrid: %w", err)
	}
	return nil
}

// SetSearchText sets the free-text row filter.
func (t *Table) SetSearchText(s string) { t.engine.SetSearchText(s) }

// SelectColumns sets the studio column selection by title.
func (t *Table) SelectColumns(titles []string) { t.engine.SelectColumns(titles) }

// Reset clears the search text and the column selection.
func (t *Table) Reset() { t.engine.Reset() }

// ToggleSort advances the sort cycle of the column with key. It reports
// whether the request was applied.
func (t *Table) ToggleSort(key string, multi bool) bool { return t.engine.ToggleSort(key, multi) }

// ClearSort removes every sort directive.
func (t *Table) ClearSort() { t.engine.ClearSort() }

// Activate invokes the row activation callback for the row with key.
func (t *Table) Activate(key string) error {
	if err := t.engine.Activate(key); err != nil {
		return fmt.Errorf("resultgrid: %w", err)
	}
	return nil
}

// View derives the current render model.
func (t *Table) View() View { return t.engine.View() }
