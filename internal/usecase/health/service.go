package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded means tables are served but sort intents are not announced.
	Degraded Status = "degraded"
	// Unhealthy means the query layer is down and refreshes fail.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status   Status                 `json:"status"`
	Checks   map[string]CheckResult `json:"checks"`
	Sessions int                    `json:"sessions"`
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	publisher PublisherChecker
	sessions  SessionCounter
	timeout   time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher adds the sort intent publisher to the checks.
func WithPublisher(p PublisherChecker) Option {
	return func(s *Service) { s.publisher = p }
}

// WithSessions reports the open session count alongside the checks.
func WithSessions(c SessionCounter) Option {
	return func(s *Service) { s.sessions = c }
}

// WithCheckTimeout bounds each component check.
func WithCheckTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a Service.
func New(db DBPinger, opts ...Option) *Service {
	s := &Service{db: db, timeout: defaultCheckTimeout}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Check runs health checks against all components. A failing database makes
// the service unhealthy; a failing publisher only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult, 2)}

	r.Checks["database"] = s.probe(ctx, s.db.Ping)
	if s.publisher != nil {
		r.Checks["publisher"] = s.probe(ctx, s.publisher.HealthCheck)
		if r.Checks["publisher"] == CheckError {
			r.Status = Degraded
		}
	}
	if r.Checks["database"] == CheckError {
		r.Status = Unhealthy
	}

	if s.sessions != nil {
		r.Sessions = s.sessions.Len()
	}
	return r
}

func (s *Service) probe(ctx context.Context, fn func(context.Context) error) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
