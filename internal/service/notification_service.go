package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/project-tracker/internal/events"
	"github.com/spec-kit/project-tracker/internal/mailer"
)

// NotificationService renders domain events into emails. Delivery failures
// are logged and swallowed; notifications never fail the originating request.
type NotificationService struct {
	mailer mailer.Mailer
	logger *zap.Logger
}

// NewNotificationService builds the service.
func NewNotificationService(m mailer.Mailer, logger *zap.Logger) *NotificationService {
	return &NotificationService{mailer: m, logger: logger}
}

// HandleEvent renders and sends the email for a single event. Unknown event
// types and events with no recipients are silently ignored.
func (s *NotificationService) HandleEvent(ctx context.Context, event events.Event) error {
	msg, ok := s.render(event)
	if !ok {
		return nil
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
	return nil
}

func (s *NotificationService) render(event events.Event) (mailer.Message, bool) {
	switch payload := event.Payload.(type) {
	case events.UserRegisteredPayload:
		return mailer.Message{
			To:      []string{payload.Email},
			Subject: "Welcome to Project Tracker",
			Body: fmt.Sprintf("Hi %s,\n\nYour account has been created. You can now sign in with %s.\n",
				payload.Name, payload.Email),
		}, true
	case events.ProjectMemberAddedPayload:
		return mailer.Message{
			To:      []string{payload.InviteeEmail},
			Subject: fmt.Sprintf("You were added to project %q", payload.ProjectName),
			Body: fmt.Sprintf("Hi %s,\n\n%s added you to the project %q as %s.\n",
				payload.InviteeName, payload.ActorName, payload.ProjectName, payload.Role),
		}, true
	case events.TicketAssignedPayload:
		return mailer.Message{
			To:      []string{payload.AssigneeEmail},
			Subject: fmt.Sprintf("Ticket assigned: %s", payload.TicketTitle),
			Body: fmt.Sprintf("Hi %s,\n\n%s assigned the ticket %q to you.\n",
				payload.AssigneeName, payload.ActorName, payload.TicketTitle),
		}, true
	case events.TicketStatusChangedPayload:
		if len(payload.Recipients) == 0 {
			return mailer.Message{}, false
		}
		body := fmt.Sprintf("The ticket %q moved from %s to %s (by %s).\n",
			payload.TicketTitle, payload.OldStatus, payload.NewStatus, payload.ActorName)
		if payload.Comment != "" {
			body += fmt.Sprintf("\nComment: %s\n", payload.Comment)
		}
		return mailer.Message{
			To:      payload.Recipients,
			Subject: fmt.Sprintf("Ticket %s: %s", payload.NewStatus, payload.TicketTitle),
			Body:    body,
		}, true
	default:
		return mailer.Message{}, false
	}
}
