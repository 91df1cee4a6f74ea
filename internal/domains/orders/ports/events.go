package ports

import (
	"context"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
)

// EventPublisher announces persisted status changes to downstream consumers.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event domain.StatusChanged) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// PublishStatusChanged implements EventPublisher.
func (NoopPublisher) PublishStatusChanged(context.Context, domain.StatusChanged) error { return nil }

var _ EventPublisher = NoopPublisher{}
