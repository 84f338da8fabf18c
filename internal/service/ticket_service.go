package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/events"
	"github.com/spec-kit/project-tracker/internal/notify"
	"github.com/spec-kit/project-tracker/internal/repository"
	apperrors "github.com/spec-kit/project-tracker/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	projects   repository.ProjectRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	ProjectRepo repository.ProjectRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		projects:   deps.ProjectRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ProjectID      string
	Title          string
	Description    string
	Priority       domain.Priority
	Type           domain.TicketType
	AssignedTo     *string
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
	Tags           []string
}

// TicketUpdateInput describes partial ticket updates; nil fields are
// untouched. Comment, when present, is attached to the status history entry.
type TicketUpdateInput struct {
	Title          *string
	Description    *string
	Status         *domain.TicketStatus
	Priority       *domain.Priority
	Type           *domain.TicketType
	AssignedTo     **string
	DueDate        **time.Time
	EstimatedHours **float64
	ActualHours    **float64
	Tags           *[]string
	Comment        string
}

// CreateTicket creates a ticket in a project. The actor needs CONTRIBUTOR
// access (or the admin role); a supplied assignee must exist, be active, and
// hold VIEWER access on the project.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	project, err := s.loadProject(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !project.HasAccess(actor.ID, domain.MemberRoleContributor) {
		return nil, apperrors.NewForbidden("contributor access required")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}

	ticket := &domain.Ticket{
		ProjectID:   project.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      domain.TicketStatusOpen,
		Priority:    input.Priority,
		Type:        input.Type,
		CreatedBy:   actor.ID,
		DueDate:     input.DueDate,
		Tags:        normalizeTags(input.Tags),
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.PriorityMedium
	}
	if ticket.Type == "" {
		ticket.Type = domain.TicketTypeTask
	}
	if !ticket.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": ticket.Priority})
	}
	if !ticket.Type.Valid() {
		return nil, apperrors.NewValidationError("invalid type", map[string]any{"type": ticket.Type})
	}
	if err := applyHours(&ticket.EstimatedHours, input.EstimatedHours, "estimated_hours"); err != nil {
		return nil, err
	}
	if err := applyHours(&ticket.ActualHours, input.ActualHours, "actual_hours"); err != nil {
		return nil, err
	}

	var assignee *domain.User
	if input.AssignedTo != nil {
		assignee, err = s.validateAssignee(ctx, actor, project, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		ticket.AssignedTo = &assignee.ID
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	seed := &domain.StatusChange{
		TicketID:  ticket.ID,
		Status:    domain.TicketStatusOpen,
		ChangedBy: actor.ID,
		Comment:   "ticket created",
	}
	if err := s.tickets.AppendStatusChange(ctx, seed); err != nil {
		return nil, apperrors.MapError(err)
	}

	if notify.ShouldNotifyAssignment(nil, ticket.AssignedTo, actor.ID) {
		s.publishAssignment(ctx, actor, ticket, assignee)
	}
	return ticket, nil
}

// GetTicket fetches a ticket; actor needs VIEWER access on its project.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		project, err := s.loadProject(ctx, ticket.ProjectID)
		if err != nil {
			return nil, err
		}
		if !project.HasAccess(actor.ID, domain.MemberRoleViewer) {
			return nil, apperrors.NewForbidden("access denied")
		}
	}
	return ticket, nil
}

// ListTickets returns tickets matching the filter. Non-admin actors are
// restricted to projects they can view.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if !actor.IsAdmin() {
		if filter.ProjectID != nil {
			project, err := s.loadProject(ctx, *filter.ProjectID)
			if err != nil {
				return nil, err
			}
			if !project.HasAccess(actor.ID, domain.MemberRoleViewer) {
				return nil, apperrors.NewForbidden("access denied")
			}
		} else {
			filter.AccessibleTo = &actor.ID
		}
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateTicket applies a partial update. The actor needs CONTRIBUTOR access
// (or the admin role). A status change appends one history entry and
// rederives the resolved/closed timestamps; a reassignment revalidates the
// new assignee exactly as on create.
func (s *TicketService) UpdateTicket(ctx context.Context, actor *domain.User, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	project, err := s.loadProject(ctx, ticket.ProjectID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !project.HasAccess(actor.ID, domain.MemberRoleContributor) {
		return nil, apperrors.NewForbidden("contributor access required")
	}

	beforeStatus := ticket.Status
	beforeAssignee := ticket.AssignedTo

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title must not be empty", nil)
		}
		ticket.Title = title
	}
	if input.Description != nil {
		ticket.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}
	if input.Type != nil {
		if !input.Type.Valid() {
			return nil, apperrors.NewValidationError("invalid type", map[string]any{"type": *input.Type})
		}
		ticket.Type = *input.Type
	}
	if input.DueDate != nil {
		ticket.DueDate = *input.DueDate
	}
	if input.EstimatedHours != nil {
		if err := applyHours(&ticket.EstimatedHours, *input.EstimatedHours, "estimated_hours"); err != nil {
			return nil, err
		}
	}
	if input.ActualHours != nil {
		if err := applyHours(&ticket.ActualHours, *input.ActualHours, "actual_hours"); err != nil {
			return nil, err
		}
	}
	if input.Tags != nil {
		ticket.Tags = normalizeTags(*input.Tags)
	}

	var assignee *domain.User
	if input.AssignedTo != nil {
		if *input.AssignedTo == nil {
			ticket.AssignedTo = nil
		} else {
			assignee, err = s.validateAssignee(ctx, actor, project, **input.AssignedTo)
			if err != nil {
				return nil, err
			}
			ticket.AssignedTo = &assignee.ID
		}
	}

	statusChanged := false
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		statusChanged = ticket.SetStatus(*input.Status, time.Now())
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if statusChanged {
		entry := &domain.StatusChange{
			TicketID:  ticket.ID,
			Status:    ticket.Status,
			ChangedBy: actor.ID,
			Comment:   input.Comment,
		}
		if err := s.tickets.AppendStatusChange(ctx, entry); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	if notify.ShouldNotifyAssignment(beforeAssignee, ticket.AssignedTo, actor.ID) {
		s.publishAssignment(ctx, actor, ticket, assignee)
	}
	if notify.ShouldNotifyStatus(beforeStatus, ticket.Status) {
		s.publishStatusChange(ctx, actor, ticket, beforeStatus, input.Comment)
	}
	return ticket, nil
}

// AssignTicket sets the assignee; a partial update restricted to that field.
func (s *TicketService) AssignTicket(ctx context.Context, actor *domain.User, ticketID, assigneeID string) (*domain.Ticket, error) {
	target := &assigneeID
	return s.UpdateTicket(ctx, actor, ticketID, TicketUpdateInput{AssignedTo: &target})
}

// UnassignTicket clears the assignee; no assignee validation needed.
func (s *TicketService) UnassignTicket(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	var cleared *string
	return s.UpdateTicket(ctx, actor, ticketID, TicketUpdateInput{AssignedTo: &cleared})
}

// DeleteTicket removes a ticket; permitted only to an admin, the owning
// project's creator, or the ticket's own creator. Project managers hold no
// delete right.
func (s *TicketService) DeleteTicket(ctx context.Context, actor *domain.User, ticketID string) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.ID != ticket.CreatedBy {
		project, err := s.loadProject(ctx, ticket.ProjectID)
		if err != nil {
			return err
		}
		if actor.ID != project.CreatedBy {
			return apperrors.NewForbidden("only an admin, the project creator, or the ticket creator may delete")
		}
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// StatusHistory returns the append-only status log; actor needs VIEWER access.
func (s *TicketService) StatusHistory(ctx context.Context, actor *domain.User, ticketID string) ([]domain.StatusChange, error) {
	if _, err := s.GetTicket(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	history, err := s.tickets.ListStatusHistory(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return history, nil
}

// validateAssignee checks an assignment target: the user must exist, be
// active, and hold VIEWER access on the project unless the actor is admin.
func (s *TicketService) validateAssignee(ctx context.Context, actor *domain.User, project *domain.Project, assigneeID string) (*domain.User, error) {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.IsActive {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
	}
	if !actor.IsAdmin() && !project.HasAccess(assignee.ID, domain.MemberRoleViewer) {
		return nil, apperrors.NewValidationError("assignee has no access to the project", map[string]any{"user_id": assigneeID})
	}
	return assignee, nil
}

func (s *TicketService) publishAssignment(ctx context.Context, actor *domain.User, ticket *domain.Ticket, assignee *domain.User) {
	if assignee == nil {
		return
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventTicketAssigned,
		ActorID: actor.ID,
		Payload: events.TicketAssignedPayload{
			TicketID:      ticket.ID,
			TicketTitle:   ticket.Title,
			ProjectID:     ticket.ProjectID,
			AssigneeEmail: assignee.Email,
			AssigneeName:  assignee.Name,
			ActorName:     actor.Name,
		},
	})
}

func (s *TicketService) publishStatusChange(ctx context.Context, actor *domain.User, ticket *domain.Ticket, oldStatus domain.TicketStatus, comment string) {
	recipients := s.statusRecipients(ctx, ticket)
	if len(recipients) == 0 {
		return
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventTicketStatusChanged,
		ActorID: actor.ID,
		Payload: events.TicketStatusChangedPayload{
			TicketID:    ticket.ID,
			TicketTitle: ticket.Title,
			OldStatus:   oldStatus,
			NewStatus:   ticket.Status,
			Comment:     comment,
			ActorName:   actor.Name,
			Recipients:  recipients,
		},
	})
}

// statusRecipients resolves the deduplicated {assignee, creator} emails.
// Lookup failures shrink the recipient list, never fail the request.
func (s *TicketService) statusRecipients(ctx context.Context, ticket *domain.Ticket) []string {
	var emails []string
	if ticket.AssignedTo != nil {
		if assignee, err := s.users.GetByID(ctx, *ticket.AssignedTo); err == nil {
			emails = append(emails, assignee.Email)
		}
	}
	if creator, err := s.users.GetByID(ctx, ticket.CreatedBy); err == nil {
		emails = append(emails, creator.Email)
	}
	return notify.StatusRecipients(emails...)
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) loadProject(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// applyHours validates and stores an hour value; a nil value clears the field.
func applyHours(dst **float64, value *float64, field string) error {
	if value == nil {
		*dst = nil
		return nil
	}
	if !domain.ValidHours(*value) {
		return apperrors.NewValidationError(field+" out of range", map[string]any{field: *value})
	}
	*dst = value
	return nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		result = append(result, tag)
	}
	return result
}
