package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/events"
	"github.com/spec-kit/project-tracker/internal/repository"
	apperrors "github.com/spec-kit/project-tracker/pkg/util"
)

// ProjectService coordinates project and membership workflows.
type ProjectService struct {
	projects   repository.ProjectRepository
	users      repository.UserRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// ProjectDependencies bundles repositories for project service.
type ProjectDependencies struct {
	ProjectRepo repository.ProjectRepository
	UserRepo    repository.UserRepository
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
}

// NewProjectService constructs the service.
func NewProjectService(deps ProjectDependencies) *ProjectService {
	return &ProjectService{
		projects:   deps.ProjectRepo,
		users:      deps.UserRepo,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ProjectCreateInput describes project creation payload.
type ProjectCreateInput struct {
	Name        string
	Description string
	Status      domain.ProjectStatus
	Priority    domain.Priority
}

// ProjectUpdateInput describes partial project updates; nil fields are untouched.
type ProjectUpdateInput struct {
	Name        *string
	Description *string
	Status      *domain.ProjectStatus
	Priority    *domain.Priority
}

// CreateProject creates a project owned by the actor. Project names are
// globally unique (exact, case-sensitive match).
func (s *ProjectService) CreateProject(ctx context.Context, actor *domain.User, input ProjectCreateInput) (*domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if err := s.checkNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	project := &domain.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		CreatedBy:   actor.ID,
		IsActive:    true,
	}
	if project.Status == "" {
		project.Status = domain.ProjectStatusActive
	}
	if project.Priority == "" {
		project.Priority = domain.PriorityMedium
	}
	if !project.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": project.Status})
	}
	if !project.Priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": project.Priority})
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// GetProject fetches a project; actor must be admin or hold VIEWER access.
func (s *ProjectService) GetProject(ctx context.Context, actor *domain.User, projectID string) (*domain.Project, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !project.HasAccess(actor.ID, domain.MemberRoleViewer) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return project, nil
}

// ListProjects returns projects visible to the actor: everything for admins,
// otherwise active projects the actor created or belongs to.
func (s *ProjectService) ListProjects(ctx context.Context, actor *domain.User, filter repository.ProjectFilter) ([]domain.Project, error) {
	if !actor.IsAdmin() {
		filter.AccessibleTo = &actor.ID
		if filter.IsActive == nil {
			active := true
			filter.IsActive = &active
		}
	}
	projects, err := s.projects.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return projects, nil
}

// UpdateProject mutates project fields; permitted only to admin or the
// creator, membership roles are irrelevant here.
func (s *ProjectService) UpdateProject(ctx context.Context, actor *domain.User, projectID string, input ProjectUpdateInput) (*domain.Project, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != project.CreatedBy {
		return nil, apperrors.NewForbidden("only the creator or an admin may update a project")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		if name != project.Name {
			if err := s.checkNameFree(ctx, name, project.ID); err != nil {
				return nil, err
			}
			project.Name = name
		}
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		project.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		project.Priority = *input.Priority
	}

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

// DeleteProject removes a project; admin only. A project with referencing
// tickets is archived (isActive=false, status=ARCHIVED) instead of removed.
// Returns true when the record was physically deleted.
func (s *ProjectService) DeleteProject(ctx context.Context, actor *domain.User, projectID string) (bool, error) {
	if !actor.IsAdmin() {
		return false, apperrors.NewForbidden("admin role required")
	}
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return false, err
	}

	refs, err := s.tickets.CountByProject(ctx, projectID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	if refs > 0 {
		project.IsActive = false
		project.Status = domain.ProjectStatusArchived
		if err := s.projects.Update(ctx, project); err != nil {
			return false, apperrors.MapError(err)
		}
		return false, nil
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return false, apperrors.MapError(err)
	}
	return true, nil
}

// AddMember adds a user to the project; permitted to admin or the creator.
// The target must exist and be active; duplicates are rejected. Emits the
// invitation notification.
func (s *ProjectService) AddMember(ctx context.Context, actor *domain.User, projectID, userID string, role domain.MemberRole) (*domain.Project, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != project.CreatedBy {
		return nil, apperrors.NewForbidden("only the creator or an admin may manage members")
	}

	if role == "" {
		role = domain.MemberRoleContributor
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid member role", map[string]any{"role": role})
	}

	invitee, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if !invitee.IsActive {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
	}
	if _, exists := project.MemberByUser(userID); exists {
		return nil, apperrors.NewConflict("user is already a member", map[string]any{"user_id": userID})
	}

	member := &domain.Member{UserID: userID, Role: role}
	if err := s.projects.AddMember(ctx, project.ID, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	project.Members = append(project.Members, *member)

	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventProjectMemberAdded,
		ActorID: actor.ID,
		Payload: events.ProjectMemberAddedPayload{
			ProjectID:    project.ID,
			ProjectName:  project.Name,
			InviteeEmail: invitee.Email,
			InviteeName:  invitee.Name,
			Role:         role,
			ActorName:    actor.Name,
		},
	})
	return project, nil
}

// RemoveMember drops a user from the project; permitted to admin or the creator.
func (s *ProjectService) RemoveMember(ctx context.Context, actor *domain.User, projectID, userID string) (*domain.Project, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != project.CreatedBy {
		return nil, apperrors.NewForbidden("only the creator or an admin may manage members")
	}
	if _, exists := project.MemberByUser(userID); !exists {
		return nil, apperrors.NewNotFound("member", map[string]any{"user_id": userID})
	}

	if err := s.projects.RemoveMember(ctx, project.ID, userID); err != nil {
		return nil, apperrors.MapError(err)
	}
	members := project.Members[:0]
	for _, member := range project.Members {
		if member.UserID != userID {
			members = append(members, member)
		}
	}
	project.Members = members
	return project, nil
}

// ChangeMemberRole updates a member's role; permitted to admin or the creator.
func (s *ProjectService) ChangeMemberRole(ctx context.Context, actor *domain.User, projectID, userID string, role domain.MemberRole) (*domain.Project, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != project.CreatedBy {
		return nil, apperrors.NewForbidden("only the creator or an admin may manage members")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid member role", map[string]any{"role": role})
	}
	member, exists := project.MemberByUser(userID)
	if !exists {
		return nil, apperrors.NewNotFound("member", map[string]any{"user_id": userID})
	}

	if err := s.projects.UpdateMemberRole(ctx, project.ID, userID, role); err != nil {
		return nil, apperrors.MapError(err)
	}
	member.Role = role
	return project, nil
}

// TicketStats returns per-status ticket counts; actor needs VIEWER access.
func (s *ProjectService) TicketStats(ctx context.Context, actor *domain.User, projectID string) (map[domain.TicketStatus]int64, error) {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !project.HasAccess(actor.ID, domain.MemberRoleViewer) {
		return nil, apperrors.NewForbidden("access denied")
	}
	stats, err := s.tickets.StatsByProject(ctx, projectID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

func (s *ProjectService) loadProject(ctx context.Context, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("project", map[string]any{"project_id": projectID})
		}
		return nil, apperrors.MapError(err)
	}
	return project, nil
}

func (s *ProjectService) checkNameFree(ctx context.Context, name, excludeID string) error {
	existing, err := s.projects.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	if existing.ID != excludeID {
		return apperrors.NewConflict("project name already in use", map[string]any{"name": name})
	}
	return nil
}
