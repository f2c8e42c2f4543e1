package services

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Event kinds emitted by the core mutation paths.
const (
	EventBookingCreated = "booking:created"
	EventBookingStatus  = "booking:status"
	EventMessageNew     = "message:new"
)

// Event is a domain notification produced by a mutation. UserIDs are
// direct recipients; a non-zero TripID additionally targets the trip
// room.
type Event struct {
	Kind    string
	UserIDs []uint
	TripID  uint
	Payload interface{}
}

// Notifier is the delivery surface the dispatcher fans out to.
type Notifier interface {
	EmitToUser(userID uint, eventKind string, payload interface{})
	EmitToTrip(tripID uint, eventKind string, payload interface{})
}

// Dispatcher decouples mutations from notification delivery: handlers
// collect events while holding a transaction and hand them over only
// after commit. Delivery runs on its own goroutine and never reports
// back into the mutation path.
type Dispatcher struct {
	notifier Notifier
}

func NewDispatcher(notifier Notifier) *Dispatcher {
	return &Dispatcher{notifier: notifier}
}

// Dispatch delivers the events asynchronously, best-effort. Each event
// is also mirrored to the Redis event channel when Redis is configured,
// so other instances can fan out to their own connections.
func (d *Dispatcher) Dispatch(events ...Event) {
	if len(events) == 0 {
		return
	}

	go func() {
		for _, event := range events {
			for _, userID := range event.UserIDs {
				d.notifier.EmitToUser(userID, event.Kind, event.Payload)
			}
			if event.TripID != 0 {
				d.notifier.EmitToTrip(event.TripID, event.Kind, event.Payload)
			}

			if err := PublishEvent(context.Background(), event.Kind, event.Payload); err != nil {
				logrus.WithError(err).WithField("event", event.Kind).Debug("redis event publish skipped")
			}
		}
	}()
}
