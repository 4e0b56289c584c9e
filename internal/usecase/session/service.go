// Package session keeps one table engine per open table view and connects it
// to the query layer.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resultgrid/internal/domain"
	"github.com/kailas-cloud/resultgrid/internal/domain/column"
	"github.com/kailas-cloud/resultgrid/internal/domain/field"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	"github.com/kailas-cloud/resultgrid/internal/domain/row"
	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
	"github.com/kailas-cloud/resultgrid/internal/metrics"
	"github.com/kailas-cloud/resultgrid/internal/usecase/table"
)

// DefaultDashboard is used when a request names no dashboard.
const DefaultDashboard = "default"

// Config holds session limits.
type Config struct {
	DefaultPageSize int
	MaxPageSize     int
	TTL             time.Duration
	MaxSessions     int
}

// CreateRequest describes a new table session.
type CreateRequest struct {
	Dashboard string
	Studio    bool
	Delegated bool
	PageSize  int
}

// session is one table view. mu guards every field.
type session struct {
	id        string
	dashboard string

	mu        sync.Mutex
	engine    *table.Engine
	query     hit.Query
	pending   *sorting.Intent
	activated row.Record
}

// Service manages table sessions.
type Service struct {
	source     HitSource
	indexer    HitIndexer
	publisher  IntentPublisher
	renderer   column.Templater
	dashboards map[string][]field.Descriptor
	cfg        Config
	logger     *zap.Logger

	sessions *expirable.LRU[string, *session]
}

// Option configures a Service.
type Option func(*Service)

// WithIndexer enables hit ingestion.
func WithIndexer(i HitIndexer) Option {
	return func(s *Service) { s.indexer = i }
}

// WithPublisher announces delegated intents through p.
func WithPublisher(p IntentPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithRenderer sets the description renderer used by every engine.
func WithRenderer(r column.Templater) Option {
	return func(s *Service) { s.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a session Service. dashboards maps a dashboard name to its
// field descriptors.
func New(source HitSource, dashboards map[string][]field.Descriptor, cfg Config, opts ...Option) *Service {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 20
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 1024
	}
	s := &Service{
		source:     source,
		dashboards: dashboards,
		cfg:        cfg,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.sessions = expirable.NewLRU[string, *session](cfg.MaxSessions, func(id string, _ *session) {
		metrics.ActiveSessions.Dec()
		s.logger.Debug("table session evicted", zap.String("session_id", id))
	}, cfg.TTL)
	return s
}

// Create opens a session on the named dashboard and loads its first page.
func (s *Service) Create(ctx context.Context, req CreateRequest) (string, table.View, error) {
	name := req.Dashboard
	if name == "" {
		name = DefaultDashboard
	}
	descriptors, ok := s.dashboards[name]
	if !ok {
		return "", table.View{}, fmt.Errorf("dashboard %q: %w", name, domain.ErrDashboardNotFound)
	}

	sess := &session{id: uuid.NewString(), dashboard: name}
	sess.query = hit.Query{Page: 1, PageSize: s.pageSize(req.PageSize), Sort: sorting.NoSort()}

	opts := []table.Option{
		table.WithLogger(s.logger.With(zap.String("session_id", sess.id))),
		table.WithRowActivation(func(r row.Record) { sess.activated = r }),
	}
	if s.renderer != nil {
		opts = append(opts, table.WithRenderer(s.renderer))
	}
	if req.Studio {
		opts = append(opts, table.WithStudio())
	}
	if req.Delegated {
		opts = append(opts, table.WithSortDelegate(func(intent sorting.Intent) {
			sess.pending = &intent
		}))
	}

	engine, err := table.New(descriptors, opts...)
	if err != nil {
		return "", table.View{}, fmt.Errorf("create engine: %w", err)
	}
	sess.engine = engine
	if err := s.load(ctx, sess); err != nil {
		return "", table.View{}, err
	}

	s.sessions.Add(sess.id, sess)
	metrics.ActiveSessions.Inc()
	s.logger.Info("table session created",
		zap.String("session_id", sess.id),
		zap.String("dashboard", name),
		zap.Stringer("mode", engine.Mode()),
	)
	return sess.id, engine.View(), nil
}

// View returns the current render model of a session.
func (s *Service) View(id string) (table.View, error) {
	sess, err := s.get(id)
	if err != nil {
		return table.View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.engine.View(), nil
}

// Delete closes a session.
func (s *Service) Delete(id string) error {
	if !s.sessions.Remove(id) {
		return fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return nil
}

// SetSearch sets the free-text filter of a session.
func (s *Service) SetSearch(id, text string) (table.View, error) {
	return s.mutate(id, func(e *table.Engine) { e.SetSearchText(text) })
}

// SelectColumns sets the visible column selection of a session.
func (s *Service) SelectColumns(id string, titles []string) (table.View, error) {
	return s.mutate(id, func(e *table.Engine) { e.SelectColumns(titles) })
}

// Reset clears the search text and column selection of a session.
func (s *Service) Reset(id string) (table.View, error) {
	return s.mutate(id, func(e *table.Engine) { e.Reset() })
}

// ToggleSort advances the sort cycle of a column. In delegated mode the
// session re-queries with the new intent.
func (s *Service) ToggleSort(ctx context.Context, id, key string, multi bool) (table.View, error) {
	sess, err := s.get(id)
	if err != nil {
		return table.View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	outcome := "ignored"
	if sess.engine.ToggleSort(key, multi) {
		outcome = "applied"
	}
	metrics.SortRequestsTotal.WithLabelValues(sess.engine.Mode().String(), outcome).Inc()

	if err := s.flushIntent(ctx, sess); err != nil {
		return table.View{}, err
	}
	return sess.engine.View(), nil
}

// ClearSort removes every sort directive of a session.
func (s *Service) ClearSort(ctx context.Context, id string) (table.View, error) {
	sess, err := s.get(id)
	if err != nil {
		return table.View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.engine.ClearSort()
	if err := s.flushIntent(ctx, sess); err != nil {
		return table.View{}, err
	}
	return sess.engine.View(), nil
}

// Refresh reloads results. page and pageSize keep their current values when zero.
func (s *Service) Refresh(ctx context.Context, id string, page, pageSize int) (table.View, error) {
	sess, err := s.get(id)
	if err != nil {
		return table.View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if page > 0 {
		sess.query.Page = page
	}
	if pageSize > 0 {
		sess.query.PageSize = s.pageSize(pageSize)
	}
	if err := s.load(ctx, sess); err != nil {
		return table.View{}, err
	}
	return sess.engine.View(), nil
}

// Activate returns the full record of the row with rowKey.
func (s *Service) Activate(id, rowKey string) (row.Record, error) {
	sess, err := s.get(id)
	if err != nil {
		return row.Record{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.engine.Activate(rowKey); err != nil {
		return row.Record{}, err
	}
	return sess.activated, nil
}

// Ingest writes raw hits to the query layer.
func (s *Service) Ingest(ctx context.Context, hits []hit.Hit) (int, error) {
	if s.indexer == nil {
		return 0, fmt.Errorf("ingest: %w", domain.ErrQueryUnavailable)
	}
	n, err := s.indexer.Index(ctx, hits)
	if err != nil {
		return n, fmt.Errorf("ingest: %w", err)
	}
	return n, nil
}

// Len returns the number of live sessions.
func (s *Service) Len() int { return s.sessions.Len() }

func (s *Service) get(id string) (*session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return sess, nil
}

func (s *Service) mutate(id string, fn func(*table.Engine)) (table.View, error) {
	sess, err := s.get(id)
	if err != nil {
		return table.View{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess.engine)
	return sess.engine.View(), nil
}

// flushIntent hands a delegated intent recorded during the last engine call
// to the query layer and reloads the first page. The caller holds sess.mu.
func (s *Service) flushIntent(ctx context.Context, sess *session) error {
	if sess.pending == nil {
		return nil
	}
	intent := *sess.pending
	sess.pending = nil

	s.announce(ctx, sess.id, intent)
	sess.query.Sort = intent
	sess.query.Page = 1
	return s.load(ctx, sess)
}

// load fetches the session's current page into its engine. The caller holds sess.mu.
func (s *Service) load(ctx context.Context, sess *session) error {
	page, err := s.source.Fetch(ctx, sess.query)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sess.id, err)
	}
	dropped := sess.engine.ReplaceResults(page)
	metrics.ObserveResults(len(page.Hits), dropped)
	return nil
}

// announce records the intent and publishes it. Publish failures are logged only.
func (s *Service) announce(ctx context.Context, id string, intent sorting.Intent) {
	kind := "directives"
	if intent.None() {
		kind = "none"
	}
	metrics.DelegatedIntentsTotal.WithLabelValues(kind).Inc()

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishIntent(ctx, id, intent); err != nil {
		s.logger.Warn("publish sort intent failed", zap.String("session_id", id), zap.Error(err))
	}
}

func (s *Service) pageSize(n int) int {
	if n <= 0 {
		return s.cfg.DefaultPageSize
	}
	return min(n, s.cfg.MaxPageSize)
}
