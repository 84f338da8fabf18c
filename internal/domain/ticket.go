package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether the ticket status is a known value.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	default:
		return false
	}
}

// Priority enumerates urgency for projects and tickets.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Valid reports whether the priority is a known value.
func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// TicketType enumerates work item categories.
type TicketType string

const (
	TicketTypeBug         TicketType = "BUG"
	TicketTypeFeature     TicketType = "FEATURE"
	TicketTypeEnhancement TicketType = "ENHANCEMENT"
	TicketTypeTask        TicketType = "TASK"
)

// Valid reports whether the ticket type is a known value.
func (t TicketType) Valid() bool {
	switch t {
	case TicketTypeBug, TicketTypeFeature, TicketTypeEnhancement, TicketTypeTask:
		return true
	default:
		return false
	}
}

// MaxHours bounds estimated and actual hour fields.
const MaxHours = 1000

// ValidHours reports whether an hour value is inside [0, MaxHours].
// Out-of-range values are rejected, never clamped.
func ValidHours(v float64) bool {
	return v >= 0 && v <= MaxHours
}

// StatusChange is one append-only status history entry.
type StatusChange struct {
	ID        string
	TicketID  string
	Status    TicketStatus
	ChangedBy string
	ChangedAt time.Time
	Comment   string
}

// Ticket is the aggregate for work items. A ticket belongs to exactly one
// project; the project reference is immutable after creation.
type Ticket struct {
	ID             string
	ProjectID      string
	Title          string
	Description    string
	Status         TicketStatus
	Priority       Priority
	Type           TicketType
	AssignedTo     *string
	CreatedBy      string
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
	ResolvedAt     *time.Time
	ClosedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SetStatus moves the ticket to the next status and rederives the
// resolved/closed timestamps: ResolvedAt is set exactly while the status is
// RESOLVED and cleared otherwise, likewise ClosedAt for CLOSED. Returns false
// when the status is unchanged so callers append history only on real moves.
func (t *Ticket) SetStatus(next TicketStatus, now time.Time) bool {
	if t.Status == next {
		return false
	}
	t.Status = next
	switch next {
	case TicketStatusResolved:
		t.ResolvedAt = &now
		t.ClosedAt = nil
	case TicketStatusClosed:
		t.ClosedAt = &now
		t.ResolvedAt = nil
	default:
		t.ResolvedAt = nil
		t.ClosedAt = nil
	}
	return true
}
