package events

import (
	"time"

	"github.com/spec-kit/project-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered      EventType = "user_registered"
	EventProjectMemberAdded  EventType = "project_member_added"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// Event represents a domain event emitted by services. Payloads carry the
// resolved recipient addresses so consumers never go back to the store.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// ProjectMemberAddedPayload payload.
type ProjectMemberAddedPayload struct {
	ProjectID    string            `json:"project_id"`
	ProjectName  string            `json:"project_name"`
	InviteeEmail string            `json:"invitee_email"`
	InviteeName  string            `json:"invitee_name"`
	Role         domain.MemberRole `json:"role"`
	ActorName    string            `json:"actor_name"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TicketID      string `json:"ticket_id"`
	TicketTitle   string `json:"ticket_title"`
	ProjectID     string `json:"project_id"`
	AssigneeEmail string `json:"assignee_email"`
	AssigneeName  string `json:"assignee_name"`
	ActorName     string `json:"actor_name"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	TicketID    string              `json:"ticket_id"`
	TicketTitle string              `json:"ticket_title"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	Comment     string              `json:"comment,omitempty"`
	ActorName   string              `json:"actor_name"`
	Recipients  []string            `json:"recipients"`
}
