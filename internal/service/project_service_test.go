package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-tracker/internal/domain"
	"github.com/spec-kit/project-tracker/internal/events"
	"github.com/spec-kit/project-tracker/internal/repository"
)

type projectEnv struct {
	users      *fakeUserRepo
	projects   *fakeProjectRepo
	tickets    *fakeTicketRepo
	dispatcher *recordingDispatcher
	svc        *ProjectService

	admin   *domain.User
	creator *domain.User
	member  *domain.User
	other   *domain.User
}

func newProjectEnv(t *testing.T) *projectEnv {
	t.Helper()
	env := &projectEnv{
		users:      newFakeUserRepo(),
		projects:   newFakeProjectRepo(),
		tickets:    newFakeTicketRepo(),
		dispatcher: &recordingDispatcher{},
	}
	env.svc = NewProjectService(ProjectDependencies{
		ProjectRepo: env.projects,
		UserRepo:    env.users,
		TicketRepo:  env.tickets,
		Dispatcher:  env.dispatcher,
	})
	env.admin = seedUser(t, env.users, "Ada Admin", "ada@example.com", domain.RoleAdmin, true)
	env.creator = seedUser(t, env.users, "Carol Creator", "carol@example.com", domain.RoleUser, true)
	env.member = seedUser(t, env.users, "Mel Member", "mel@example.com", domain.RoleUser, true)
	env.other = seedUser(t, env.users, "Olga Other", "olga@example.com", domain.RoleUser, true)
	return env
}

func (env *projectEnv) createProject(t *testing.T, name string) *domain.Project {
	t.Helper()
	project, err := env.svc.CreateProject(context.Background(), env.creator, ProjectCreateInput{Name: name})
	require.NoError(t, err)
	return project
}

func TestCreateProjectDefaultsAndUniqueName(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "Apollo")
	assert.Equal(t, domain.ProjectStatusActive, project.Status)
	assert.Equal(t, domain.PriorityMedium, project.Priority)
	assert.True(t, project.IsActive)

	_, err := env.svc.CreateProject(ctx, env.other, ProjectCreateInput{Name: "Apollo"})
	assertErrCode(t, err, "CONFLICT")

	// Name matching is exact and case-sensitive.
	_, err = env.svc.CreateProject(ctx, env.other, ProjectCreateInput{Name: "apollo"})
	require.NoError(t, err)

	_, err = env.svc.CreateProject(ctx, env.other, ProjectCreateInput{Name: "   "})
	assertErrCode(t, err, "VALIDATION_FAILED")
}

func TestUpdateProjectCreatorOrAdminOnly(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "Apollo")
	_, err := env.svc.AddMember(ctx, env.creator, project.ID, env.member.ID, domain.MemberRoleManager)
	require.NoError(t, err)

	// Even a MANAGER member cannot update project fields.
	newName := "Artemis"
	_, err = env.svc.UpdateProject(ctx, env.member, project.ID, ProjectUpdateInput{Name: &newName})
	assertErrCode(t, err, "FORBIDDEN")

	updated, err := env.svc.UpdateProject(ctx, env.creator, project.ID, ProjectUpdateInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Artemis", updated.Name)

	onHold := domain.ProjectStatusOnHold
	updated, err = env.svc.UpdateProject(ctx, env.admin, project.ID, ProjectUpdateInput{Status: &onHold})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusOnHold, updated.Status)
}

func TestRenameToTakenNameConflicts(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	env.createProject(t, "Apollo")
	second := env.createProject(t, "Borealis")

	taken := "Apollo"
	_, err := env.svc.UpdateProject(ctx, env.creator, second.ID, ProjectUpdateInput{Name: &taken})
	assertErrCode(t, err, "CONFLICT")

	// Renaming to its own current name is a no-op, not a conflict.
	same := "Borealis"
	_, err = env.svc.UpdateProject(ctx, env.creator, second.ID, ProjectUpdateInput{Name: &same})
	require.NoError(t, err)
}

func TestDeleteProjectArchivesWhenTicketsExist(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "Apollo")
	require.NoError(t, env.tickets.Create(ctx, &domain.Ticket{
		ProjectID: project.ID, Title: "leftover", Status: domain.TicketStatusOpen,
		Priority: domain.PriorityLow, Type: domain.TicketTypeTask, CreatedBy: env.creator.ID,
	}))

	deleted, err := env.svc.DeleteProject(ctx, env.admin, project.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	archived, err := env.svc.GetProject(ctx, env.admin, project.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)
	assert.Equal(t, domain.ProjectStatusArchived, archived.Status)
}

func TestDeleteProjectRemovesWhenUnreferenced(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "Apollo")

	// Only admins may delete, creator included.
	_, err := env.svc.DeleteProject(ctx, env.creator, project.ID)
	assertErrCode(t, err, "FORBIDDEN")

	deleted, err := env.svc.DeleteProject(ctx, env.admin, project.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = env.svc.GetProject(ctx, env.admin, project.ID)
	assertErrCode(t, err, "NOT_FOUND")
}

func TestAddMemberRules(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "Apollo")

	_, err := env.svc.AddMember(ctx, env.other, project.ID, env.member.ID, domain.MemberRoleViewer)
	assertErrCode(t, err, "FORBIDDEN")

	updated, err := env.svc.AddMember(ctx, env.creator, project.ID, env.member.ID, "")
	require.NoError(t, err)
	member, ok := updated.MemberByUser(env.member.ID)
	require.True(t, ok)
	assert.Equal(t, domain.MemberRoleContributor, member.Role)

	_, err = env.svc.AddMember(ctx, env.creator, project.ID, env.member.ID, domain.MemberRoleViewer)
	assertErrCode(t, err, "CONFLICT")

	_, err = env.svc.AddMember(ctx, env.creator, project.ID, "nobody", domain.MemberRoleViewer)
	assertErrCode(t, err, "NOT_FOUND")

	inactive := seedUser(t, env.users, "Ira Inactive", "ira@example.com", domain.RoleUser, false)
	_, err = env.svc.AddMember(ctx, env.creator, project.ID, inactive.ID, domain.MemberRoleViewer)
	assertErrCode(t, err, "NOT_FOUND")

	invites := env.dispatcher.byType(events.EventProjectMemberAdded)
	require.Len(t, invites, 1)
	payload := invites[0].Payload.(events.ProjectMemberAddedPayload)
	assert.Equal(t, env.member.Email, payload.InviteeEmail)
}

func TestRemoveAndChangeMemberRole(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "Apollo")
	_, err := env.svc.AddMember(ctx, env.creator, project.ID, env.member.ID, domain.MemberRoleViewer)
	require.NoError(t, err)

	updated, err := env.svc.ChangeMemberRole(ctx, env.creator, project.ID, env.member.ID, domain.MemberRoleManager)
	require.NoError(t, err)
	member, ok := updated.MemberByUser(env.member.ID)
	require.True(t, ok)
	assert.Equal(t, domain.MemberRoleManager, member.Role)

	_, err = env.svc.ChangeMemberRole(ctx, env.creator, project.ID, env.other.ID, domain.MemberRoleViewer)
	assertErrCode(t, err, "NOT_FOUND")

	updated, err = env.svc.RemoveMember(ctx, env.creator, project.ID, env.member.ID)
	require.NoError(t, err)
	_, ok = updated.MemberByUser(env.member.ID)
	assert.False(t, ok)

	_, err = env.svc.RemoveMember(ctx, env.creator, project.ID, env.member.ID)
	assertErrCode(t, err, "NOT_FOUND")
}

func TestListProjectsScoping(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	mine := env.createProject(t, "Apollo")
	foreign, err := env.svc.CreateProject(ctx, env.other, ProjectCreateInput{Name: "Borealis"})
	require.NoError(t, err)
	_, err = env.svc.AddMember(ctx, env.other, foreign.ID, env.member.ID, domain.MemberRoleViewer)
	require.NoError(t, err)

	visible, err := env.svc.ListProjects(ctx, env.creator, repository.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, mine.ID, visible[0].ID)

	memberView, err := env.svc.ListProjects(ctx, env.member, repository.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, memberView, 1)
	assert.Equal(t, foreign.ID, memberView[0].ID)

	all, err := env.svc.ListProjects(ctx, env.admin, repository.ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTicketStatsRequiresViewer(t *testing.T) {
	env := newProjectEnv(t)
	ctx := context.Background()

	project := env.createProject(t, "Apollo")
	require.NoError(t, env.tickets.Create(ctx, &domain.Ticket{
		ProjectID: project.ID, Title: "a", Status: domain.TicketStatusOpen,
		Priority: domain.PriorityLow, Type: domain.TicketTypeBug, CreatedBy: env.creator.ID,
	}))
	require.NoError(t, env.tickets.Create(ctx, &domain.Ticket{
		ProjectID: project.ID, Title: "b", Status: domain.TicketStatusClosed,
		Priority: domain.PriorityLow, Type: domain.TicketTypeBug, CreatedBy: env.creator.ID,
	}))

	_, err := env.svc.TicketStats(ctx, env.other, project.ID)
	assertErrCode(t, err, "FORBIDDEN")

	stats, err := env.svc.TicketStats(ctx, env.creator, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats[domain.TicketStatusOpen])
	assert.Equal(t, int64(1), stats[domain.TicketStatusClosed])
}
