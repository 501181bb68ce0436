package notify

import (
	"context"
	"errors"

	"github.com/1gassner/energy-management-mvp-sub002/internal/models"
)

// EventType tags lifecycle events pushed to subscribers.
type EventType string

const (
	EventInsert EventType = "INSERT" // alert created
	EventUpdate EventType = "UPDATE" // alert resolved
)

// Event is the payload pushed to subscribers on alert creation/resolution.
type Event struct {
	Type  EventType    `json:"eventType"`
	Alert models.Alert `json:"alert"`
}

// Sink delivers alert lifecycle events to interested subscribers.
// Delivery is fire-and-forget; the absence of subscribers is not an error.
type Sink interface {
	Publish(ctx context.Context, buildingID string, ev Event) error
}

// NopSink discards everything. Useful in tests and when no transport is
// configured.
type NopSink struct{}

func (NopSink) Publish(context.Context, string, Event) error { return nil }

// MultiSink fans one event out to several sinks. Each sink gets the event
// even if another fails; errors are joined.
type MultiSink []Sink

func (m MultiSink) Publish(ctx context.Context, buildingID string, ev Event) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, buildingID, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
