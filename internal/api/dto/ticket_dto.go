package dto

import (
	"encoding/json"
	"time"

	"github.com/spec-kit/project-tracker/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	ProjectID      string            `json:"project_id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Priority       domain.Priority   `json:"priority"`
	Type           domain.TicketType `json:"type"`
	AssignedTo     *string           `json:"assigned_to"`
	DueDate        *time.Time        `json:"due_date"`
	EstimatedHours *float64          `json:"estimated_hours"`
	ActualHours    *float64          `json:"actual_hours"`
	Tags           []string          `json:"tags"`
}

// UpdateTicketRequest payload. Absent fields are untouched; fields present
// with an explicit null clear the value where clearing is meaningful
// (assignee, due date, hours).
type UpdateTicketRequest struct {
	Title          *string              `json:"title"`
	Description    *string              `json:"description"`
	Status         *domain.TicketStatus `json:"status"`
	Priority       *domain.Priority     `json:"priority"`
	Type           *domain.TicketType   `json:"type"`
	AssignedTo     OptionalString       `json:"assigned_to"`
	DueDate        OptionalTime         `json:"due_date"`
	EstimatedHours OptionalFloat        `json:"estimated_hours"`
	ActualHours    OptionalFloat        `json:"actual_hours"`
	Tags           *[]string            `json:"tags"`
	Comment        string               `json:"comment"`
}

// OptionalString distinguishes "absent" from "explicit null" in JSON bodies.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON marks the field set; a JSON null leaves Value nil.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// OptionalTime distinguishes "absent" from "explicit null".
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// OptionalFloat distinguishes "absent" from "explicit null".
type OptionalFloat struct {
	Set   bool
	Value *float64
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	o.Set = true
	return json.Unmarshal(data, &o.Value)
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	UserID string `json:"user_id"`
}

// TicketResponse is the public ticket shape.
type TicketResponse struct {
	ID             string              `json:"id"`
	ProjectID      string              `json:"project_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         domain.TicketStatus `json:"status"`
	Priority       domain.Priority     `json:"priority"`
	Type           domain.TicketType   `json:"type"`
	AssignedTo     *string             `json:"assigned_to"`
	CreatedBy      string              `json:"created_by"`
	DueDate        *time.Time          `json:"due_date"`
	EstimatedHours *float64            `json:"estimated_hours"`
	ActualHours    *float64            `json:"actual_hours"`
	Tags           []string            `json:"tags"`
	ResolvedAt     *time.Time          `json:"resolved_at"`
	ClosedAt       *time.Time          `json:"closed_at"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             ticket.ID,
		ProjectID:      ticket.ProjectID,
		Title:          ticket.Title,
		Description:    ticket.Description,
		Status:         ticket.Status,
		Priority:       ticket.Priority,
		Type:           ticket.Type,
		AssignedTo:     ticket.AssignedTo,
		CreatedBy:      ticket.CreatedBy,
		DueDate:        ticket.DueDate,
		EstimatedHours: ticket.EstimatedHours,
		ActualHours:    ticket.ActualHours,
		Tags:           ticket.Tags,
		ResolvedAt:     ticket.ResolvedAt,
		ClosedAt:       ticket.ClosedAt,
		CreatedAt:      ticket.CreatedAt,
		UpdatedAt:      ticket.UpdatedAt,
	}
}

// NewTicketResponses maps a slice of domain tickets.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, len(tickets))
	for i := range tickets {
		out[i] = NewTicketResponse(&tickets[i])
	}
	return out
}

// StatusChangeResponse is one status history entry.
type StatusChangeResponse struct {
	ID        string              `json:"id"`
	TicketID  string              `json:"ticket_id"`
	Status    domain.TicketStatus `json:"status"`
	ChangedBy string              `json:"changed_by"`
	ChangedAt time.Time           `json:"changed_at"`
	Comment   string              `json:"comment,omitempty"`
}

// NewStatusChangeResponses maps history entries.
func NewStatusChangeResponses(history []domain.StatusChange) []StatusChangeResponse {
	out := make([]StatusChangeResponse, len(history))
	for i, entry := range history {
		out[i] = StatusChangeResponse{
			ID:        entry.ID,
			TicketID:  entry.TicketID,
			Status:    entry.Status,
			ChangedBy: entry.ChangedBy,
			ChangedAt: entry.ChangedAt,
			Comment:   entry.Comment,
		}
	}
	return out
}
