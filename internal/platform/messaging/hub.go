package messaging

import (
	"context"
	"log/slog"
	"sync"

	"compezze/internal/shared/events"
)

// Hub is the in-process live-notification bus. Delivery is at-most-once: a
// subscriber whose buffer is full loses the event rather than stalling the
// publishing use case.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]chan events.Envelope
	logger      *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string][]chan events.Envelope),
		logger:      logger,
	}
}

// Publish fans the envelope out to every subscriber of its event type.
func (h *Hub) Publish(ctx context.Context, envelope events.Envelope) error {
	h.mu.RLock()
	subs := append([]chan events.Envelope(nil), h.subscribers[envelope.EventType]...)
	h.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- envelope:
		default:
			if h.logger != nil {
				h.logger.Warn("dropping event for slow subscriber",
					"event", "hub_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"event_type", envelope.EventType,
					"event_id", envelope.EventID,
				)
			}
		}
	}

	if h.logger != nil {
		h.logger.Info("event published",
			"event", "hub_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"event_type", envelope.EventType,
			"event_id", envelope.EventID,
			"contest_id", envelope.ContestID,
		)
	}
	return nil
}

// Subscribe registers a handler for one event type. The handler runs on its
// own goroutine until ctx is cancelled.
func (h *Hub) Subscribe(
	ctx context.Context,
	eventType string,
	subscriberName string,
	handler func(context.Context, events.Envelope) error,
) error {
	ch := make(chan events.Envelope, 128)

	h.mu.Lock()
	h.subscribers[eventType] = append(h.subscribers[eventType], ch)
	h.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				h.removeSubscriber(eventType, ch)
				return
			case envelope := <-ch:
				if err := handler(ctx, envelope); err != nil && h.logger != nil {
					h.logger.Error("subscriber handler failed",
						"event", "hub_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"event_type", eventType,
						"subscriber", subscriberName,
						"event_id", envelope.EventID,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (h *Hub) removeSubscriber(eventType string, target chan events.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	items := h.subscribers[eventType]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan events.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	h.subscribers[eventType] = filtered
}
