package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockPublisherChecker struct {
	err error
}

func (m *mockPublisherChecker) HealthCheck(_ context.Context) error { return m.err }

type slowPinger struct{}

func (slowPinger) Ping(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

type countSessions int

func (c countSessions) Len() int { return int(c) }

// --- Tests ---

func TestCheck(t *testing.T) {
	dbDown := errors.New("conn refused")
	natsDown := errors.New("nats down")

	tests := []struct {
		name          string
		dbErr         error
		pubErr        error
		wantStatus    Status
		wantDatabase  CheckResult
		wantPublisher CheckResult
	}{
		{"all healthy", nil, nil, Healthy, CheckOK, CheckOK},
		{"database down", dbDown, nil, Unhealthy, CheckError, CheckOK},
		{"publisher down", nil, natsDown, Degraded, CheckOK, CheckError},
		{"both down", dbDown, natsDown, Unhealthy, CheckError, CheckError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockDBPinger{err: tt.dbErr}, WithPublisher(&mockPublisherChecker{err: tt.pubErr}))
			r := svc.Check(context.Background())

			if r.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", r.Status, tt.wantStatus)
			}
			if r.Checks["database"] != tt.wantDatabase {
				t.Errorf("database = %q, want %q", r.Checks["database"], tt.wantDatabase)
			}
			if r.Checks["publisher"] != tt.wantPublisher {
				t.Errorf("publisher = %q, want %q", r.Checks["publisher"], tt.wantPublisher)
			}
		})
	}
}

func TestCheck_NoPublisher(t *testing.T) {
	svc := New(&mockDBPinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["publisher"]; ok {
		t.Error("publisher check should be absent")
	}
}

func TestCheck_Sessions(t *testing.T) {
	svc := New(&mockDBPinger{}, WithSessions(countSessions(3)))
	if got := svc.Check(context.Background()).Sessions; got != 3 {
		t.Errorf("sessions = %d, want 3", got)
	}
}

func TestCheck_TimesOutSlowComponent(t *testing.T) {
	svc := New(slowPinger{}, WithCheckTimeout(10*time.Millisecond))

	start := time.Now()
	r := svc.Check(context.Background())
	if time.Since(start) > time.Second {
		t.Fatal("check did not honor the timeout")
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("database = %q, want %q", r.Checks["database"], CheckError)
	}
}
