package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/events"
	"github.com/spec-kit/project-tracker/internal/repository"
)

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, user := range r.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.IsActive != nil && user.IsActive != *filter.IsActive {
			continue
		}
		if filter.Search != nil {
			needle := strings.ToLower(*filter.Search)
			if !strings.Contains(strings.ToLower(user.Name), needle) &&
				!strings.Contains(strings.ToLower(user.Email), needle) {
				continue
			}
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

// fakeProjectRepo is an in-memory repository.ProjectRepository.
type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]domain.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: map[string]domain.Project{}}
}

func cloneProject(p domain.Project) domain.Project {
	p.Members = append([]domain.Member(nil), p.Members...)
	return p
}

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	r.projects[project.ID] = cloneProject(*project)
	return nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.projects[project.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	project.Members = stored.Members
	project.UpdatedAt = time.Now()
	r.projects[project.ID] = cloneProject(*project)
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	p := cloneProject(project)
	return &p, nil
}

func (r *fakeProjectRepo) GetByName(_ context.Context, name string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, project := range r.projects {
		if project.Name == name {
			p := cloneProject(project)
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProjectRepo) List(_ context.Context, filter repository.ProjectFilter) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Project
	for _, project := range r.projects {
		if filter.IsActive != nil && project.IsActive != *filter.IsActive {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if project.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.AccessibleTo != nil && !project.HasAccess(*filter.AccessibleTo, domain.MemberRoleViewer) {
			continue
		}
		out = append(out, cloneProject(project))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) AddMember(_ context.Context, projectID string, member *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[projectID]
	if !ok {
		return pgx.ErrNoRows
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now()
	}
	project.Members = append(project.Members, *member)
	r.projects[projectID] = project
	return nil
}

func (r *fakeProjectRepo) RemoveMember(_ context.Context, projectID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[projectID]
	if !ok {
		return pgx.ErrNoRows
	}
	members := project.Members[:0]
	for _, member := range project.Members {
		if member.UserID != userID {
			members = append(members, member)
		}
	}
	project.Members = members
	r.projects[projectID] = project
	return nil
}

func (r *fakeProjectRepo) UpdateMemberRole(_ context.Context, projectID, userID string, role domain.MemberRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	project, ok := r.projects[projectID]
	if !ok {
		return pgx.ErrNoRows
	}
	for i := range project.Members {
		if project.Members[i].UserID == userID {
			project.Members[i].Role = role
			r.projects[projectID] = project
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeProjectRepo) CountReferencingUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, project := range r.projects {
		if project.CreatedBy == userID {
			count++
			continue
		}
		if _, ok := project.MemberByUser(userID); ok {
			count++
		}
	}
	return count, nil
}

// fakeTicketRepo is an in-memory repository.TicketRepository.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	history map[string][]domain.StatusChange
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: map[string]domain.Ticket{},
		history: map[string][]domain.StatusChange{},
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.ProjectID != nil && ticket.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.AssigneeID != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssigneeID) {
			continue
		}
		if filter.CreatedBy != nil && ticket.CreatedBy != *filter.CreatedBy {
			continue
		}
		if len(filter.Statuses) > 0 {
			match := false
			for _, status := range filter.Statuses {
				if ticket.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	delete(r.history, id)
	return nil
}

func (r *fakeTicketRepo) AppendStatusChange(_ context.Context, entry *domain.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.ChangedAt.IsZero() {
		entry.ChangedAt = time.Now()
	}
	r.history[entry.TicketID] = append(r.history[entry.TicketID], *entry)
	return nil
}

func (r *fakeTicketRepo) ListStatusHistory(_ context.Context, ticketID string) ([]domain.StatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.StatusChange(nil), r.history[ticketID]...), nil
}

func (r *fakeTicketRepo) CountByProject(_ context.Context, projectID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, ticket := range r.tickets {
		if ticket.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) CountReferencingUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, ticket := range r.tickets {
		if ticket.CreatedBy == userID || (ticket.AssignedTo != nil && *ticket.AssignedTo == userID) {
			count++
		}
	}
	for _, entries := range r.history {
		for _, entry := range entries {
			if entry.ChangedBy == userID {
				count++
			}
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) StatsByProject(_ context.Context, projectID string) (map[domain.TicketStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := map[domain.TicketStatus]int64{}
	for _, ticket := range r.tickets {
		if ticket.ProjectID == projectID {
			stats[ticket.Status]++
		}
	}
	return stats, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
