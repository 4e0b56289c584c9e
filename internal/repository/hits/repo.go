// Package hits stores raw search hits as JSON documents and serves them back
// in pages, pushing sort intents down to the index.
package hits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resultgrid/internal/db"
	"github.com/kailas-cloud/resultgrid/internal/domain"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
	"github.com/kailas-cloud/resultgrid/internal/metrics"
)

// store is the consumer interface for hits (ISP).
type store interface {
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error)
}

// Config describes the index backing the repository.
type Config struct {
	IndexName      string
	KeyPrefix      string
	SortableFields []string
	MaxBatchSize   int
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// Repo implements the query layer over a JSON search index.
type Repo struct {
	store   store
	cfg     Config
	aliases map[string]string // data index -> SORTABLE alias
	breaker *gobreaker.CircuitBreaker[any]
	logger  *zap.Logger
}

// Option configures a Repo.
type Option func(*Repo)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Repo) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBreaker replaces the default circuit breaker settings.
func WithBreaker(bc BreakerConfig) Option {
	return func(r *Repo) { r.breaker = newBreaker(bc, r) }
}

// New creates a hits repository.
func New(s store, cfg Config, opts ...Option) *Repo {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 500
	}
	r := &Repo{
		store:   s,
		cfg:     cfg,
		aliases: sortAliases(cfg.SortableFields),
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.breaker == nil {
		r.breaker = newBreaker(BreakerConfig{}, r)
	}
	return r
}

func newBreaker(bc BreakerConfig, r *Repo) *gobreaker.CircuitBreaker[any] {
	failures := bc.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "hits",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, db.ErrIndexNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// EnsureIndex creates the JSON index with one SORTABLE tag per sortable field
// unless it already exists.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, r.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.cfg.IndexName, err)
	}
	if exists {
		return nil
	}

	def, err := r.indexDefinition()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index %s: %w", r.cfg.IndexName, err)
	}
	r.logger.Info("index created",
		zap.String("index", def.String()),
		zap.Strings("sortable", def.Sortable()),
	)
	return nil
}

func (r *Repo) indexDefinition() (*db.IndexDefinition, error) {
	b := db.NewIndex(r.cfg.IndexName).Prefix(r.cfg.KeyPrefix)
	for _, f := range r.cfg.SortableFields {
		b.Tag(jsonPath(f), r.aliases[f]).Sortable()
	}
	return b.Build()
}

// Index writes hits as JSON documents in batches and returns how many were written.
func (r *Repo) Index(ctx context.Context, hits []hit.Hit) (int, error) {
	items := make([]db.JSONSetItem, 0, len(hits))
	for i, h := range hits {
		data, err := h.MarshalJSON()
		if err != nil {
			return 0, fmt.Errorf("marshal hit %d: %w", i, err)
		}
		items = append(items, db.JSONSetItem{Key: r.docKey(h, data), Path: "$", Data: data})
	}

	written := 0
	for start := 0; start < len(items); start += r.cfg.MaxBatchSize {
		end := min(start+r.cfg.MaxBatchSize, len(items))
		batch := items[start:end]
		err := r.call(ctx, "index", func(ctx context.Context) error {
			return r.store.JSONSetMulti(ctx, batch)
		})
		if err != nil {
			return written, fmt.Errorf("index batch at %d: %w", start, err)
		}
		written += len(batch)
	}
	return written, nil
}

// Fetch returns one page of hits. The first directive that maps to a SORTABLE
// field is pushed down; the index sorts by a single attribute, so the rest are
// logged and ignored.
func (r *Repo) Fetch(ctx context.Context, q hit.Query) (hit.Page, error) {
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 0 {
		size = 0
	}

	sq := &db.SearchQuery{
		IndexName:    r.cfg.IndexName,
		Offset:       (page - 1) * size,
		Limit:        size,
		ReturnFields: []string{"$"},
	}
	r.applySort(sq, q.Sort)

	var res *db.SearchResult
	err := r.call(ctx, "fetch", func(ctx context.Context) error {
		var err error
		res, err = r.store.Search(ctx, sq)
		return err
	})
	if err != nil {
		return hit.Page{}, fmt.Errorf("fetch page %d: %w", page, err)
	}

	out := hit.Page{Total: res.Total, Page: page, PageSize: size, Hits: make([]hit.Hit, 0, len(res.Entries))}
	for _, e := range res.Entries {
		h, err := parseEntry(e.Fields["$"])
		if err != nil {
			r.logger.Warn("skipping unreadable document", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		out.Hits = append(out.Hits, h)
	}
	return out, nil
}

func (r *Repo) applySort(sq *db.SearchQuery, intent sorting.Intent) {
	pushed := false
	for _, d := range intent.Directives() {
		alias, ok := r.aliases[d.Key]
		if !ok || pushed {
			r.logger.Debug("sort directive not pushed down",
				zap.String("key", d.Key),
				zap.Stringer("direction", d.Direction),
			)
			continue
		}
		sq.SortBy = alias
		sq.SortDesc = d.Direction == sorting.Descending
		pushed = true
	}
}

// call runs fn through the circuit breaker and records its duration.
func (r *Repo) call(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, fn(ctx)
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.QueryDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", domain.ErrQueryUnavailable, err)
	}
	return err
}

// docKey derives a stable key from _self, or from the document body when the
// hit has none.
func (r *Repo) docKey(h hit.Hit, data []byte) string {
	name := []byte(h.Self())
	if len(name) == 0 {
		name = data
	}
	return r.cfg.KeyPrefix + uuid.NewSHA1(uuid.NameSpaceURL, name).String()
}

func parseEntry(raw string) (hit.Hit, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return hit.Hit{}, errors.New("empty document")
	}
	// Some dialects wrap the root object in an array.
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		raw = strings.TrimSpace(raw[1 : len(raw)-1])
	}
	return hit.Parse([]byte(raw))
}
