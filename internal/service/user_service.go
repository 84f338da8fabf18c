package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/repository"
	apperrors "github.com/spec-kit/project-tracker/pkg/util"
)

// UserService coordinates account administration.
type UserService struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
	tickets  repository.TicketRepository
}

// UserDependencies bundles repositories for user service.
type UserDependencies struct {
	UserRepo    repository.UserRepository
	ProjectRepo repository.ProjectRepository
	TicketRepo  repository.TicketRepository
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:    deps.UserRepo,
		projects: deps.ProjectRepo,
		tickets:  deps.TicketRepo,
	}
}

// UserProfileInput describes profile update payload; nil fields are untouched.
type UserProfileInput struct {
	Name  *string
	Email *string
}

// ListUsers returns accounts; admin only.
func (s *UserService) ListUsers(ctx context.Context, actor *domain.User, filter repository.UserFilter) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUser fetches an account; permitted to the account itself or an admin.
func (s *UserService) GetUser(ctx context.Context, actor *domain.User, userID string) (*domain.User, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile updates name/email; permitted to the account itself or an admin.
func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, userID string, input UserProfileInput) (*domain.User, error) {
	if !actor.IsAdmin() && actor.ID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		user.Name = name
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
			user.Email = email
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ChangeRole sets the global role; admin only, never on the actor itself.
func (s *UserService) ChangeRole(ctx context.Context, actor *domain.User, userID string, role domain.Role) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if actor.ID == userID {
		return nil, apperrors.NewForbidden("cannot change own role")
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// SetActive toggles the account flag; admin only, never on the actor itself.
func (s *UserService) SetActive(ctx context.Context, actor *domain.User, userID string, active bool) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	if actor.ID == userID {
		return nil, apperrors.NewForbidden("cannot change own status")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	user.IsActive = active
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteUser removes an account; admin only, never on the actor itself. An
// account still referenced by projects, tickets, or ticket status history is
// deactivated instead of removed, preserving referential integrity. Returns
// true when the record was physically deleted.
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.User, userID string) (bool, error) {
	if !actor.IsAdmin() {
		return false, apperrors.NewForbidden("admin role required")
	}
	if actor.ID == userID {
		return false, apperrors.NewForbidden("cannot delete own account")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return false, apperrors.MapError(err)
	}

	projectRefs, err := s.projects.CountReferencingUser(ctx, userID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	ticketRefs, err := s.tickets.CountReferencingUser(ctx, userID)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	if projectRefs > 0 || ticketRefs > 0 {
		user.IsActive = false
		if err := s.users.Update(ctx, user); err != nil {
			return false, apperrors.MapError(err)
		}
		return false, nil
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return false, apperrors.MapError(err)
	}
	return true, nil
}
