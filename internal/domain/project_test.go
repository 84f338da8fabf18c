package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testProject() *Project {
	return &Project{
		ID:        "p1",
		Name:      "Website Redesign",
		Status:    ProjectStatusActive,
		Priority:  PriorityMedium,
		CreatedBy: "creator",
		IsActive:  true,
		Members: []Member{
			{UserID: "viewer", Role: MemberRoleViewer, JoinedAt: time.Now()},
			{UserID: "contributor", Role: MemberRoleContributor, JoinedAt: time.Now()},
			{UserID: "manager", Role: MemberRoleManager, JoinedAt: time.Now()},
		},
	}
}

func TestHasAccessCreatorCeiling(t *testing.T) {
	p := testProject()
	for _, level := range []MemberRole{MemberRoleViewer, MemberRoleContributor, MemberRoleManager} {
		assert.True(t, p.HasAccess("creator", level), "creator must pass at %s", level)
	}
}

func TestHasAccessNonMemberDenied(t *testing.T) {
	p := testProject()
	assert.False(t, p.HasAccess("stranger", MemberRoleViewer))
}

func TestHasAccessRankOrdering(t *testing.T) {
	p := testProject()

	assert.True(t, p.HasAccess("viewer", MemberRoleViewer))
	assert.False(t, p.HasAccess("viewer", MemberRoleContributor))

	assert.True(t, p.HasAccess("contributor", MemberRoleViewer))
	assert.True(t, p.HasAccess("contributor", MemberRoleContributor))
	assert.False(t, p.HasAccess("contributor", MemberRoleManager))

	assert.True(t, p.HasAccess("manager", MemberRoleManager))
}

func TestHasAccessUnknownRequiredRole(t *testing.T) {
	p := testProject()
	// zero-ranked requirement still denies strangers, passes members
	assert.True(t, p.HasAccess("viewer", MemberRole("")))
	assert.False(t, p.HasAccess("stranger", MemberRole("")))
}

func TestMemberByUser(t *testing.T) {
	p := testProject()

	member, ok := p.MemberByUser("contributor")
	assert.True(t, ok)
	assert.Equal(t, MemberRoleContributor, member.Role)

	_, ok = p.MemberByUser("creator")
	assert.False(t, ok, "creator is not implicitly in the members list")
}

func TestMemberRoleRank(t *testing.T) {
	assert.Less(t, MemberRoleViewer.Rank(), MemberRoleContributor.Rank())
	assert.Less(t, MemberRoleContributor.Rank(), MemberRoleManager.Rank())
	assert.Equal(t, 0, MemberRole("OWNER").Rank())
	assert.False(t, MemberRole("OWNER").Valid())
}
