package session

import (
	"context"

	"github.com/kailas-cloud/resultgrid/internal/domain/hit"
	"github.com/kailas-cloud/resultgrid/internal/domain/sorting"
)

// HitSource fetches result pages from the query layer.
type HitSource interface {
	Fetch(ctx context.Context, q hit.Query) (hit.Page, error)
}

// HitIndexer writes raw hits to the query layer.
type HitIndexer interface {
	Index(ctx context.Context, hits []hit.Hit) (int, error)
}

// IntentPublisher announces delegated sort intents to external listeners.
type IntentPublisher interface {
	PublishIntent(ctx context.Context, sessionID string, intent sorting.Intent) error
}
