package domain

import "time"

// MemberRole enumerates per-project capability levels.
type MemberRole string

const (
	MemberRoleViewer      MemberRole = "VIEWER"
	MemberRoleContributor MemberRole = "CONTRIBUTOR"
	MemberRoleManager     MemberRole = "MANAGER"
)

// Rank orders capability levels: VIEWER < CONTRIBUTOR < MANAGER. Unknown
// roles rank zero and therefore never satisfy a requirement.
func (r MemberRole) Rank() int {
	switch r {
	case MemberRoleViewer:
		return 1
	case MemberRoleContributor:
		return 2
	case MemberRoleManager:
		return 3
	default:
		return 0
	}
}

// Valid reports whether the member role is a known value.
func (r MemberRole) Valid() bool {
	return r.Rank() > 0
}

// ProjectStatus enumerates project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "PLANNING"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusArchived  ProjectStatus = "ARCHIVED"
)

// Valid reports whether the project status is a known value.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusArchived:
		return true
	default:
		return false
	}
}

// Member is one project membership entry. A user appears at most once per
// project.
type Member struct {
	UserID   string
	Role     MemberRole
	JoinedAt time.Time
}

// Project is the aggregate for tracked projects. Members are owned by the
// project and have no independent lifecycle.
type Project struct {
	ID          string
	Name        string
	Description string
	Status      ProjectStatus
	Priority    Priority
	CreatedBy   string
	Members     []Member
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemberByUser returns the membership entry for the given user, if any.
func (p *Project) MemberByUser(userID string) (*Member, bool) {
	for i := range p.Members {
		if p.Members[i].UserID == userID {
			return &p.Members[i], true
		}
	}
	return nil, false
}

// HasAccess decides whether the actor may act on this project at the required
// capability level. The creator always passes regardless of the members list.
// Global admin bypass is a call-site concern and is deliberately not folded
// in here; callers must check the actor's global role first.
func (p *Project) HasAccess(actorID string, required MemberRole) bool {
	if actorID == p.CreatedBy {
		return true
	}
	member, ok := p.MemberByUser(actorID)
	if !ok {
		return false
	}
	return member.Role.Rank() >= required.Rank()
}
