package storage

import (
	"context"

	"marketScope/internal/model"
)

// Storage defines a sink for event rows. Writes must be idempotent by row id.
type Storage interface {
	PutEventBatch(ctx context.Context, records []model.EventRecord) error
}

// EventReader returns the rows of one event type for one market, oldest first.
type EventReader interface {
	EventsByMarket(ctx context.Context, eventType string, marketID uint64) ([]model.EventRecord, error)
}
