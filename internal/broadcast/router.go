// Package broadcast delivers events to the live sessions matching their
// scope. Delivery is failure-isolated: one slow or dead connection never
// blocks delivery to the rest, and a failed recipient is torn down rather
// than surfacing an error to the publisher.
package broadcast

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sa-mud/samud/internal/game/event"
	"github.com/sa-mud/samud/internal/game/state"
)

// Registry resolves an event's scope to the live recipients at publish time.
// Implemented by state.Manager.
type Registry interface {
	Recipients(ev event.Event) []state.Recipient
}

// FailureHandler is invoked (on its own goroutine) when delivery to a
// session fails, so the session can be torn down.
type FailureHandler func(sessionID string)

// Router fans events out to session outboxes.
type Router struct {
	registry Registry
	logger   *zap.Logger

	mu        sync.RWMutex
	onFailure FailureHandler
}

// NewRouter creates a Router over the given session registry.
//
// Precondition: registry and logger must be non-nil.
func NewRouter(registry Registry, logger *zap.Logger) *Router {
	return &Router{registry: registry, logger: logger}
}

// SetFailureHandler registers the teardown hook for failed deliveries.
// Called once during wiring, before any session connects.
func (r *Router) SetFailureHandler(fn FailureHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFailure = fn
}

// Publish resolves the event's scope against the live session set and pushes
// the rendered text to every matching outbox. Pushes are non-blocking; a
// full or closed outbox is logged as a warning and triggers that session's
// teardown. Events published sequentially by one caller are enqueued per
// recipient in publish order.
//
// Postcondition: Never returns an error; never blocks on a slow recipient.
func (r *Router) Publish(ev event.Event) {
	recipients := r.registry.Recipients(ev)

	r.mu.RLock()
	onFailure := r.onFailure
	r.mu.RUnlock()

	for _, rec := range recipients {
		if err := rec.Outbox.Push(ev.Text); err != nil {
			r.logger.Warn("event delivery failed, dropping session",
				zap.String("session_id", rec.SessionID),
				zap.String("username", rec.Username),
				zap.String("scope", ev.Scope.Kind.String()),
				zap.Error(err),
			)
			if onFailure != nil {
				go onFailure(rec.SessionID)
			}
		}
	}
}

// PublishAll publishes a batch of events in order.
func (r *Router) PublishAll(events []event.Event) {
	for _, ev := range events {
		r.Publish(ev)
	}
}
