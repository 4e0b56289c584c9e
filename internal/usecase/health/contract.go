package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// PublisherChecker checks sort intent publisher availability.
type PublisherChecker interface {
	HealthCheck(ctx context.Context) error
}

// SessionCounter reports how many table sessions are open.
type SessionCounter interface {
	Len() int
}
