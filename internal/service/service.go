package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/project-tracker/internal/events"
)

// publish emits a domain event, filling in id and timestamp. Dispatch is
// fire-and-forget; a failed or missing dispatcher never fails the request.
func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
