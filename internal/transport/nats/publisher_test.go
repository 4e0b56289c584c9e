package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
)

type fakeConn struct {
	subject   string
	data      []byte
	err       error
	connected bool
	closed    bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	f.subject, f.data = subject, data
	return f.err
}

func (f *fakeConn) IsConnected() bool { return f.connected }

func (f *fakeConn) Close() { f.closed = true }

func TestPublishIntent(t *testing.T) {
	fc := &fakeConn{connected: true}
	p := newPublisher(fc, "resultgrid.tables")
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	intent := sorting.NewIntent([]sorting.Directive{{Key: "_project", Direction: sorting.Descending}})
	if err := p.PublishIntent(context.Background(), "s-1", intent); err != nil {
		t.Fatalf("PublishIntent: %v", err)
	}
	if fc.subject != "resultgrid.tables.s-1.sort" {
		t.Errorf("subject = %q", fc.subject)
	}

	var msg struct {
		SessionID string              `json:"session_id"`
		Sort      []sorting.Directive `json:"sort"`
	}
	if err := json.Unmarshal(fc.data, &msg); err != nil {
		t.Fatalf("payload %s: %v", fc.data, err)
	}
	if msg.SessionID != "s-1" || len(msg.Sort) != 1 || msg.Sort[0].Direction != sorting.Descending {
		t.Errorf("payload = %s", fc.data)
	}
}

func TestPublishIntent_NoSortIsNull(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "x")
	if err := p.PublishIntent(context.Background(), "s", sorting.NoSort()); err != nil {
		t.Fatal(err)
	}
	var msg map[string]any
	if err := json.Unmarshal(fc.data, &msg); err != nil {
		t.Fatal(err)
	}
	if v, ok := msg["sort"]; !ok || v != nil {
		t.Errorf("sort = %v, want null", v)
	}
}

func TestPublishIntent_Errors(t *testing.T) {
	fc := &fakeConn{err: nats.ErrConnectionClosed}
	p := newPublisher(fc, "x")
	if err := p.PublishIntent(context.Background(), "s", sorting.NoSort()); !errors.Is(err, nats.ErrConnectionClosed) {
		t.Errorf("err = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fc.subject = ""
	if err := p.PublishIntent(ctx, "s", sorting.NoSort()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if fc.subject != "" {
		t.Error("cancelled publish must not reach the connection")
	}
}

func TestHealthCheckAndClose(t *testing.T) {
	fc := &fakeConn{}
	p := newPublisher(fc, "x")
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Error("expected error when disconnected")
	}
	fc.connected = true
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	p.Close()
	if !fc.closed {
		t.Error("Close not forwarded")
	}
}
