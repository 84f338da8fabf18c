// Package worker hosts background consumers decoupling slow side effects
// from request handling.
package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/project-tracker/internal/events"
	"github.com/spec-kit/project-tracker/internal/service"
)

// NotificationWorker drains domain events into the notification service on a
// background goroutine. Enqueueing is non-blocking: when the queue is full
// the event is dropped with a warning rather than stalling the request path.
type NotificationWorker struct {
	notifications *service.NotificationService
	logger        *zap.Logger
	queue         chan events.Event
	wg            sync.WaitGroup
}

// NewNotificationWorker builds the worker with the given queue capacity.
func NewNotificationWorker(notifications *service.NotificationService, queueSize int, logger *zap.Logger) *NotificationWorker {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &NotificationWorker{
		notifications: notifications,
		logger:        logger,
		queue:         make(chan events.Event, queueSize),
	}
}

// Register subscribes the worker to every notifiable event type.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventProjectMemberAdded,
		events.EventTicketAssigned,
		events.EventTicketStatusChanged,
	} {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

// Start launches the consumer goroutine; it exits when ctx is cancelled and
// the queue has drained.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event := <-w.queue:
				_ = w.notifications.HandleEvent(ctx, event)
			case <-ctx.Done():
				for {
					select {
					case event := <-w.queue:
						_ = w.notifications.HandleEvent(context.Background(), event)
					default:
						return
					}
				}
			}
		}
	}()
}

// Wait blocks until the consumer goroutine has stopped.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}
