package notification

import (
	"context"

	"renterra/internal/domain/entity"
	"renterra/internal/domain/service"
	"renterra/pkg/logger"
)

// Dispatcher decouples notification delivery from state transitions. The
// usecases emit a domain event after a successful transition; a consumer
// goroutine delivers pushes. A full buffer or a delivery failure is logged
// and dropped, never propagated back to the transition.
type Dispatcher struct {
	notifier service.Notifier
	events   chan entity.Event
}

func NewDispatcher(notifier service.Notifier, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		notifier: notifier,
		events:   make(chan entity.Event, buffer),
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case event := <-d.events:
				d.deliver(ctx, event)
			case <-ctx.Done():
				return
			}
		}
	}()

	logger.Info("Notification dispatcher started (buffer=%d)", cap(d.events))
}

// Emit queues an event for delivery. Never blocks.
func (d *Dispatcher) Emit(event entity.Event) {
	select {
	case d.events <- event:
	default:
		logger.Warn("Notification buffer full, dropping event: type=%s rental=%s dispute=%s",
			event.Type, event.RentalID, event.DisputeID)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event entity.Event) {
	if d.notifier == nil {
		return
	}

	data := map[string]string{"type": string(event.Type)}
	for k, v := range event.Data {
		data[k] = v
	}
	if event.RentalID != "" {
		data["rental_id"] = event.RentalID
	}
	if event.DisputeID != "" {
		data["dispute_id"] = event.DisputeID
	}

	for _, userID := range event.Recipients {
		if err := d.notifier.Notify(ctx, userID, event.Title, event.Body, data); err != nil {
			logger.Warn("Failed to deliver notification: user=%s type=%s error=%v", userID, event.Type, err)
		}
	}
}
