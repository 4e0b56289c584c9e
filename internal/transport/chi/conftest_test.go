package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/resultgrid/internal/domain/field"
	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	healthuc "github.com/kailas-cloud/resultgrid/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/resultgrid/internal/usecase/session"
)

type mockSource struct {
	hits []hit.Hit
	err  error
}

func (m *mockSource) Fetch(_ context.Context, q hit.Query) (hit.Page, error) {
	if m.err != nil {
		return hit.Page{}, m.err
	}
	return hit.Page{Hits: m.hits, Total: len(m.hits), Page: q.Page, PageSize: q.PageSize}, nil
}

type mockIndexer struct {
	n int
}

func (m *mockIndexer) Index(_ context.Context, hits []hit.Hit) (int, error) {
	m.n += len(hits)
	return len(hits), nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func fruit(name string) hit.Hit {
	return hit.New(`{"name":"`+name+`"}`, hit.SourceDict(
		hit.SelfField, "https://h/v1/resources/org/proj/_/"+name,
		"_project", "proj",
	))
}

type testEnv struct {
	srv     *httptest.Server
	source  *mockSource
	indexer *mockIndexer
	pinger  *mockPinger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		source:  &mockSource{hits: []hit.Hit{fruit("Banana"), fruit("Apple"), fruit("Cherry")}},
		indexer: &mockIndexer{},
		pinger:  &mockPinger{},
	}
	dashboards := map[string][]field.Descriptor{sessionuc.DefaultDashboard: testFields(t)}
	sessions := sessionuc.New(env.source, dashboards,
		sessionuc.Config{DefaultPageSize: 20, MaxPageSize: 100, TTL: time.Minute, MaxSessions: 16},
		sessionuc.WithIndexer(env.indexer),
	)
	server := NewServer(sessions, healthuc.New(env.pinger, healthuc.WithSessions(sessions)), zap.NewNop())

	r := chi.NewRouter()
	server.Routes(r)
	env.srv = httptest.NewServer(r)
	t.Cleanup(env.srv.Close)
	return env
}

func testFields(t *testing.T) []field.Descriptor {
	t.Helper()
	label, err := field.New("label", "Label", "", true, 0)
	if err != nil {
		t.Fatal(err)
	}
	project, err := field.New("project", "Project", "_project", true, 1)
	if err != nil {
		t.Fatal(err)
	}
	return []field.Descriptor{label, project}
}

func (e *testEnv) url(path string) string { return e.srv.URL + path }

func (e *testEnv) do(t *testing.T, method, path string, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, e.url(path), http.NoBody)
	} else {
		req, err = http.NewRequest(method, e.url(path), strings.NewReader(body))
	}
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}
