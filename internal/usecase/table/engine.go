// Package table composes normalization, column resolution, filtering,
// sorting and visibility into one stateful result table.
package table

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/resultgrid/internal/domain"
	"github.com/kailas-cloud/resultgrid/internal/domain/column"
	"github.com/kailas-cloud/resultgrid/internal/domain/field"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	"github.com/kailas-cloud/resultgrid/internal/domain/row"
	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
	"github.com/kailas-cloud/resultgrid/internal/domain/visibility"
	"github.com/kailas-cloud/resultgrid/internal/logger"
)

// Engine owns the table state: the current rows, columns, search text,
// column selection and sort state. It is not safe for concurrent use.
type Engine struct {
	studio   bool
	delegate SortDelegate
	activate RowActivation
	reporter ErrorReporter
	renderer column.Templater
	logger   *zap.Logger

	resolver    *column.Resolver
	descriptors []field.Descriptor
	defs        []column.Definition
	records     []row.Record
	page        hit.Page

	search  string
	visible *visibility.Manager
	sorter  *sorting.Coordinator
}

// Option configures an Engine.
type Option func(*Engine)

// WithStudio enables the studio view: search box, column select and reset.
func WithStudio() Option {
	return func(e *Engine) { e.studio = true }
}

// WithSortDelegate switches sorting to delegated mode.
func WithSortDelegate(fn SortDelegate) Option {
	return func(e *Engine) { e.delegate = fn }
}

// WithRowActivation sets the row activation callback.
func WithRowActivation(fn RowActivation) Option {
	return func(e *Engine) { e.activate = fn }
}

// WithErrorReporter sets the receiver of normalization diagnostics.
func WithErrorReporter(r ErrorReporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithRenderer sets the description renderer.
func WithRenderer(r column.Templater) Option {
	return func(e *Engine) { e.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine over the given field descriptors.
func New(descriptors []field.Descriptor, opts ...Option) (*Engine, error) {
	e := &Engine{logger: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	if e.reporter == nil {
		e.reporter = logger.NewReporter(e.logger)
	}

	mode := sorting.Local
	if e.delegate != nil {
		mode = sorting.Delegated
	}
	e.sorter = sorting.NewCoordinator(mode)
	e.visible = visibility.New(e.studio)
	e.resolver = column.NewResolver(e.renderer)

	if err := e.setFields(descriptors); err != nil {
		return nil, err
	}
	return e, nil
}

// Mode returns the sort mode fixed at construction.
func (e *Engine) Mode() sorting.Mode { return e.sorter.Mode() }

// Studio reports whether the studio view is enabled.
func (e *Engine) Studio() bool { return e.studio }

// Descriptors returns the current field descriptors.
func (e *Engine) Descriptors() []field.Descriptor {
	return append([]field.Descriptor(nil), e.descriptors...)
}

// ReplaceResults swaps in a new result snapshot and returns how many hits
// were dropped as malformed.
func (e *Engine) ReplaceResults(page hit.Page) int {
	e.records = row.Normalize(page.Hits, e.reporter)
	e.page = hit.Page{Total: page.Total, Page: page.Page, PageSize: page.PageSize}
	dropped := len(page.Hits) - len(e.records)
	if dropped > 0 {
		e.logger.Debug("results replaced with drops",
			zap.Int("hits", len(page.Hits)),
			zap.Int("dropped", dropped),
		)
	}
	return dropped
}

// ReplaceFields swaps in a new column set. Sort entries for columns that are
// gone are dropped; in delegated mode the delegate is told.
func (e *Engine) ReplaceFields(descriptors []field.Descriptor) error {
	return e.setFields(descriptors)
}

func (e *Engine) setFields(descriptors []field.Descriptor) error {
	if err := field.ValidateSet(descriptors); err != nil {
		return fmt.Errorf("replace fields: %w", err)
	}
	defs := e.resolver.Resolve(descriptors)

	cols := make([]sorting.Column, 0, len(defs))
	for _, d := range defs {
		if d.Sortable() {
			cols = append(cols, sorting.Column{Key: d.Key(), DataIndex: d.DataIndex()})
		}
	}

	e.descriptors = append([]field.Descriptor(nil), descriptors...)
	e.defs = defs
	if e.sorter.SetColumns(cols) {
		e.emit()
	}
	return nil
}

// SetSearchText sets the free-text filter.
func (e *Engine) SetSearchText(s string) { e.search = s }

// SearchText returns the free-text filter.
func (e *Engine) SearchText() string { return e.search }

// SelectColumns sets the column selection used by the studio view.
func (e *Engine) SelectColumns(titles []string) { e.visible.Select(titles) }

// Reset clears the search text and the column selection. Sort state is kept.
func (e *Engine) Reset() {
	e.search = ""
	e.visible.Clear()
}

// ToggleSort advances the sort cycle of the column with key. It returns false
// when the column is unknown or not sortable.
func (e *Engine) ToggleSort(key string, multi bool) bool {
	if !e.sorter.Toggle(key, multi) {
		e.logger.Debug("sort request ignored", zap.String("key", key))
		return false
	}
	e.emit()
	return true
}

// ClearSort removes every sort directive.
func (e *Engine) ClearSort() {
	if e.sorter.Clear() {
		e.emit()
	}
}

// SortDirectives returns the active directives keyed by column key.
func (e *Engine) SortDirectives() []sorting.Directive { return e.sorter.Active() }

// Activate calls the row activation callback with the record whose key is
// rowKey.
func (e *Engine) Activate(rowKey string) error {
	for _, r := range e.records {
		if r.Key() != rowKey {
			continue
		}
		if e.activate != nil {
			e.activate(r)
		}
		return nil
	}
	return fmt.Errorf("activate %q: %w", rowKey, domain.ErrRowNotFound)
}

func (e *Engine) emit() {
	if e.delegate == nil {
		return
	}
	e.delegate(e.sorter.Intent())
}
