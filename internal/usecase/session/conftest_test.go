package session

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/kailas-cloud/resultgrid/internal/domain/field"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
)

// fakeSource serves a fixed set of hits, sorting by the first directive the
// way an index would.
type fakeSource struct {
	hits    []hit.Hit
	queries []hit.Query
	err     error
}

func (f *fakeSource) Fetch(_ context.Context, q hit.Query) (hit.Page, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return hit.Page{}, f.err
	}
	hits := append([]hit.Hit(nil), f.hits...)
	if d, ok := q.Sort.First(); ok {
		sort.SliceStable(hits, func(i, j int) bool {
			a, b := sidecar(hits[i], d.Key), sidecar(hits[j], d.Key)
			if d.Direction == sorting.Descending {
				return a > b
			}
			return a < b
		})
	}
	return hit.Page{Hits: hits, Total: len(hits), Page: q.Page, PageSize: q.PageSize}, nil
}

func sidecar(h hit.Hit, key string) string {
	v, _ := h.Sidecars().Get(key)
	s, _ := v.(string)
	return s
}

type fakeIndexer struct {
	got []hit.Hit
}

func (f *fakeIndexer) Index(_ context.Context, hits []hit.Hit) (int, error) {
	f.got = append(f.got, hits...)
	return len(hits), nil
}

type published struct {
	session string
	intent  sorting.Intent
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) PublishIntent(_ context.Context, id string, intent sorting.Intent) error {
	f.sent = append(f.sent, published{session: id, intent: intent})
	return f.err
}

func projectHit(name, project string) hit.Hit {
	return hit.New(`{"name":"`+name+`"}`, hit.SourceDict(
		hit.SelfField, "https://h/v1/resources/org/"+project+"/_/"+name,
		"_project", project,
	))
}

func testDashboards(t *testing.T) map[string][]field.Descriptor {
	t.Helper()
	label, err := field.New("label", "Label", "", true, 0)
	if err != nil {
		t.Fatal(err)
	}
	project, err := field.New("project", "Project", "_project", true, 1)
	if err != nil {
		t.Fatal(err)
	}
	return map[string][]field.Descriptor{
		DefaultDashboard: field.Defaults(),
		"datasets":       {label, project},
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *fakeSource) {
	t.Helper()
	src := &fakeSource{hits: []hit.Hit{
		projectHit("Banana", "b"),
		projectHit("Apple", "c"),
		projectHit("Cherry", "a"),
	}}
	cfg := Config{DefaultPageSize: 20, MaxPageSize: 50, TTL: time.Minute, MaxSessions: 8}
	return New(src, testDashboards(t), cfg, opts...), src
}
