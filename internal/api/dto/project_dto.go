package dto

import (
	"time"

	"github.com/spec-kit/project-tracker/internal/domain"
)

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	Priority    domain.Priority      `json:"priority"`
}

// UpdateProjectRequest payload; nil fields are untouched.
type UpdateProjectRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Status      *domain.ProjectStatus `json:"status"`
	Priority    *domain.Priority      `json:"priority"`
}

// AddMemberRequest payload.
type AddMemberRequest struct {
	UserID string            `json:"user_id"`
	Role   domain.MemberRole `json:"role"`
}

// ChangeMemberRoleRequest payload.
type ChangeMemberRoleRequest struct {
	Role domain.MemberRole `json:"role"`
}

// MemberResponse is one membership entry.
type MemberResponse struct {
	UserID   string            `json:"user_id"`
	Role     domain.MemberRole `json:"role"`
	JoinedAt time.Time         `json:"joined_at"`
}

// ProjectResponse is the public project shape.
type ProjectResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	Priority    domain.Priority      `json:"priority"`
	CreatedBy   string               `json:"created_by"`
	Members     []MemberResponse     `json:"members"`
	IsActive    bool                 `json:"is_active"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewProjectResponse maps a domain project.
func NewProjectResponse(project *domain.Project) ProjectResponse {
	members := make([]MemberResponse, len(project.Members))
	for i, member := range project.Members {
		members[i] = MemberResponse{
			UserID:   member.UserID,
			Role:     member.Role,
			JoinedAt: member.JoinedAt,
		}
	}
	return ProjectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		Priority:    project.Priority,
		CreatedBy:   project.CreatedBy,
		Members:     members,
		IsActive:    project.IsActive,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// NewProjectResponses maps a slice of domain projects.
func NewProjectResponses(projects []domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(projects))
	for i := range projects {
		out[i] = NewProjectResponse(&projects[i])
	}
	return out
}

// TicketStatsResponse is the per-status ticket count breakdown.
type TicketStatsResponse struct {
	ProjectID string                        `json:"project_id"`
	Counts    map[domain.TicketStatus]int64 `json:"counts"`
	Total     int64                         `json:"total"`
}

// NewTicketStatsResponse maps a stats result.
func NewTicketStatsResponse(projectID string, counts map[domain.TicketStatus]int64) TicketStatsResponse {
	var total int64
	for _, n := range counts {
		total += n
	}
	return TicketStatsResponse{ProjectID: projectID, Counts: counts, Total: total}
}
