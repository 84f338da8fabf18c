package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetStatusResolvedTimestamps(t *testing.T) {
	now := time.Now()
	ticket := &Ticket{Status: TicketStatusOpen}

	changed := ticket.SetStatus(TicketStatusResolved, now)
	require.True(t, changed)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, now, *ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)

	// reopening clears the derived timestamp again
	changed = ticket.SetStatus(TicketStatusOpen, now.Add(time.Minute))
	require.True(t, changed)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)
}

func TestSetStatusClosedTimestamps(t *testing.T) {
	now := time.Now()
	ticket := &Ticket{Status: TicketStatusResolved, ResolvedAt: &now}

	changed := ticket.SetStatus(TicketStatusClosed, now.Add(time.Hour))
	require.True(t, changed)
	require.NotNil(t, ticket.ClosedAt)
	assert.Nil(t, ticket.ResolvedAt, "closing clears resolvedAt")
}

func TestSetStatusNoChange(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusInProgress}
	assert.False(t, ticket.SetStatus(TicketStatusInProgress, time.Now()))
}

func TestSetStatusUnrestrictedGraph(t *testing.T) {
	// no transition restrictions: CLOSED may go straight back to OPEN
	now := time.Now()
	ticket := &Ticket{Status: TicketStatusClosed, ClosedAt: &now}
	assert.True(t, ticket.SetStatus(TicketStatusOpen, now))
	assert.Nil(t, ticket.ClosedAt)
}

func TestValidHours(t *testing.T) {
	assert.True(t, ValidHours(0))
	assert.True(t, ValidHours(1000))
	assert.False(t, ValidHours(-0.5))
	assert.False(t, ValidHours(1000.5))
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TicketStatusInProgress.Valid())
	assert.False(t, TicketStatus("CANCELLED").Valid())
	assert.True(t, TicketTypeEnhancement.Valid())
	assert.False(t, TicketType("CHORE").Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("URGENT").Valid())
	assert.True(t, ProjectStatusOnHold.Valid())
	assert.False(t, ProjectStatus("DELETED").Valid())
}
