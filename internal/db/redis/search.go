package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/kailas-cloud/resultgrid/internal/db"
)

// Search runs one FT.SEARCH page. SORTBY is added when q.SortBy is set and
// must name a SORTABLE attribute.
func (s *Store) Search(ctx context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	args, err := buildSearchArgs(q)
	if err != nil {
		return nil, err
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	total, docs, err := s.do(ctx, cmd).AsFtSearch()
	switch {
	case err == nil:
	case isRedisErr(err, "no such index"), isRedisErr(err, "unknown index name"):
		return nil, db.ErrIndexNotFound
	default:
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res := &db.SearchResult{Total: int(total), Entries: make([]db.SearchEntry, len(docs))}
	for i, d := range docs {
		res.Entries[i] = db.SearchEntry{Key: d.Key, Fields: d.Doc}
	}
	return res, nil
}

func buildSearchArgs(q *db.SearchQuery) ([]string, error) {
	switch {
	case q.IndexName == "":
		return nil, errors.New("search: index name is required")
	case q.Offset < 0, q.Limit < 0:
		return nil, errors.New("search: offset and limit must not be negative")
	}

	query := q.Query
	if query == "" {
		query = "*"
	}
	args := []string{q.IndexName, query}

	if n := len(q.ReturnFields); n > 0 {
		args = append(args, "RETURN", strconv.Itoa(n))
		args = append(args, q.ReturnFields...)
	}
	if q.SortBy != "" {
		order := "ASC"
		if q.SortDesc {
			order = "DESC"
		}
		args = append(args, "SORTBY", q.SortBy, order)
	}
	return append(args, "LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit), "DIALECT", "2"), nil
}
