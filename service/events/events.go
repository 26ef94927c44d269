// Package events publishes testing record lifecycle events.
package events

import (
	"context"
	"time"

	"coalhub/model"
)

// Event types.
const (
	RecordCreated    = "testing_record.created"
	RecordUpdated    = "testing_record.updated"
	RecordRecomputed = "testing_record.recomputed"
	RecordDeleted    = "testing_record.deleted"
)

// Event describes a change to one testing record.
type Event struct {
	Type       string    `json:"type"`
	RecordID   uint64    `json:"recordId"`
	OccurredAt time.Time `json:"occurredAt"`
	// Record is the state after the change, nil for deletions.
	Record *model.TestingRecord `json:"record,omitempty"`
}

// Publisher delivers events to subscribers outside the service.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

var _ Publisher = Noop{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
