package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/events"
	"github.com/spec-kit/project-tracker/internal/mailer"
)

type captureMailer struct {
	mu   sync.Mutex
	err  error
	sent []mailer.Message
}

func (m *captureMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestNotificationRendering(t *testing.T) {
	mail := &captureMailer{}
	svc := NewNotificationService(mail, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.HandleEvent(ctx, events.Event{
		Type:    events.EventUserRegistered,
		Payload: events.UserRegisteredPayload{UserID: "u1", Name: "Alice", Email: "alice@example.com"},
	}))
	require.NoError(t, svc.HandleEvent(ctx, events.Event{
		Type: events.EventProjectMemberAdded,
		Payload: events.ProjectMemberAddedPayload{
			ProjectName: "Apollo", InviteeEmail: "mel@example.com", InviteeName: "Mel",
			Role: domain.MemberRoleViewer, ActorName: "Carol",
		},
	}))
	require.NoError(t, svc.HandleEvent(ctx, events.Event{
		Type: events.EventTicketStatusChanged,
		Payload: events.TicketStatusChangedPayload{
			TicketTitle: "flaky test", OldStatus: domain.TicketStatusOpen,
			NewStatus: domain.TicketStatusResolved, ActorName: "Chris",
			Recipients: []string{"a@example.com", "b@example.com"},
		},
	}))

	require.Len(t, mail.sent, 3)
	assert.Equal(t, []string{"alice@example.com"}, mail.sent[0].To)
	assert.Contains(t, mail.sent[1].Subject, "Apollo")
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, mail.sent[2].To)
	assert.Contains(t, mail.sent[2].Subject, "RESOLVED")
}

func TestNotificationSkipsEmptyRecipientsAndUnknownTypes(t *testing.T) {
	mail := &captureMailer{}
	svc := NewNotificationService(mail, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.HandleEvent(ctx, events.Event{
		Type:    events.EventTicketStatusChanged,
		Payload: events.TicketStatusChangedPayload{TicketTitle: "quiet"},
	}))
	require.NoError(t, svc.HandleEvent(ctx, events.Event{Type: "unknown", Payload: struct{}{}}))
	assert.Empty(t, mail.sent)
}

func TestNotificationSwallowsDeliveryErrors(t *testing.T) {
	mail := &captureMailer{err: errors.New("smtp down")}
	svc := NewNotificationService(mail, zap.NewNop())

	err := svc.HandleEvent(context.Background(), events.Event{
		Type:    events.EventUserRegistered,
		Payload: events.UserRegisteredPayload{Email: "x@example.com"},
	})
	assert.NoError(t, err)
}
