package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
)

func TestAutoAssignMaintenancePhasePicksMaintenance(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	tech := f.addUser(domain.RoleTechnician, false, true)
	installation := f.addTicket(domain.TicketTypeInstallation, domain.TicketStatusOpen, 3*time.Hour)
	home := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, 1*time.Hour)

	// counter 0 in a 4:2 window falls in the maintenance phase, so the
	// younger home ticket wins over the older installation
	ticket, err := f.assignments.AutoAssign(ctx, tech)
	require.NoError(t, err)
	assert.Equal(t, home.ID, ticket.ID)
	assert.Equal(t, domain.TicketStatusAssigned, ticket.Status)
	assert.NotEqual(t, installation.ID, ticket.ID)

	counter, err := f.settings.CycleCounter(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter)
}

func TestAutoAssignInstallationPhasePicksInstallation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.settings.StoreCycleCounter(ctx, 4))
	tech := f.addUser(domain.RoleTechnician, false, true)
	f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, 3*time.Hour)
	installation := f.addTicket(domain.TicketTypeInstallation, domain.TicketStatusOpen, 1*time.Hour)

	ticket, err := f.assignments.AutoAssign(ctx, tech)
	require.NoError(t, err)
	assert.Equal(t, installation.ID, ticket.ID)

	counter, err := f.settings.CycleCounter(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), counter)
}

func TestAutoAssignCounterWrapsAroundWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.settings.StoreCycleCounter(ctx, 5))
	tech := f.addUser(domain.RoleTechnician, false, true)
	f.addTicket(domain.TicketTypeInstallation, domain.TicketStatusOpen, time.Hour)

	_, err := f.assignments.AutoAssign(ctx, tech)
	require.NoError(t, err)

	counter, err := f.settings.CycleCounter(ctx)
	require.NoError(t, err)
	assert.Zero(t, counter)
}

func TestAutoAssignFallsBackToOtherClass(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	tech := f.addUser(domain.RoleTechnician, false, true)
	// maintenance phase but only installation work queued
	installation := f.addTicket(domain.TicketTypeInstallation, domain.TicketStatusOpen, time.Hour)

	ticket, err := f.assignments.AutoAssign(ctx, tech)
	require.NoError(t, err)
	assert.Equal(t, installation.ID, ticket.ID)
}

func TestAutoAssignBackboneSpecialistIsolation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("specialist only receives backbone work", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		specialist := f.addUser(domain.RoleTechnician, true, true)
		f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, 2*time.Hour)
		f.addTicket(domain.TicketTypeInstallation, domain.TicketStatusOpen, time.Hour)

		_, err := f.assignments.AutoAssign(ctx, specialist)
		assertCode(t, err, "NOT_FOUND")
	})

	t.Run("specialist takes backbone ticket in any phase", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		require.NoError(t, f.settings.StoreCycleCounter(ctx, 4)) // installation phase
		specialist := f.addUser(domain.RoleTechnician, true, true)
		backbone := f.addTicket(domain.TicketTypeBackboneMaintenance, domain.TicketStatusOpen, time.Hour)

		ticket, err := f.assignments.AutoAssign(ctx, specialist)
		require.NoError(t, err)
		assert.Equal(t, backbone.ID, ticket.ID)
	})

	t.Run("generalist never receives backbone work", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		tech := f.addUser(domain.RoleTechnician, false, true)
		f.addTicket(domain.TicketTypeBackboneMaintenance, domain.TicketStatusOpen, time.Hour)

		_, err := f.assignments.AutoAssign(ctx, tech)
		assertCode(t, err, "NOT_FOUND")
	})
}

func TestAutoAssignBusyTechnicianConflicts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	tech := f.addUser(domain.RoleTechnician, false, true)
	held := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusAssigned, time.Hour)
	f.assign(held, tech)
	f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, time.Minute)

	_, err := f.assignments.AutoAssign(ctx, tech)
	assertCode(t, err, "CONFLICT")
}

func TestAutoAssignClosedTicketFreesTechnician(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	tech := f.addUser(domain.RoleTechnician, false, true)
	done := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusClosed, 2*time.Hour)
	f.assign(done, tech)
	open := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, time.Minute)

	ticket, err := f.assignments.AutoAssign(ctx, tech)
	require.NoError(t, err)
	assert.Equal(t, open.ID, ticket.ID)
}

func TestAutoAssignPairsIdlePartner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	lead := f.addUser(domain.RoleTechnician, false, true)
	partner := f.addUser(domain.RoleTechnician, false, true)
	open := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, time.Hour)

	ticket, err := f.assignments.AutoAssign(ctx, lead)
	require.NoError(t, err)
	assert.Equal(t, open.ID, ticket.ID)

	active, err := f.assignRepo.ListActiveByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	ids := []string{active[0].UserID, active[1].UserID}
	assert.Contains(t, ids, lead.ID)
	assert.Contains(t, ids, partner.ID)
}

func TestAutoAssignBackboneTicketGetsNoPartner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	specialist := f.addUser(domain.RoleTechnician, true, true)
	f.addUser(domain.RoleTechnician, false, true) // idle generalist, must not be paired
	f.addTicket(domain.TicketTypeBackboneMaintenance, domain.TicketStatusOpen, time.Hour)

	ticket, err := f.assignments.AutoAssign(ctx, specialist)
	require.NoError(t, err)

	active, err := f.assignRepo.ListActiveByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, specialist.ID, active[0].UserID)
}

func TestAutoAssignPartnerLockContention(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("locked candidate is skipped for the next idle one", func(t *testing.T) {
		f := newFixture()
		lead := f.addUser(domain.RoleTechnician, false, true)
		contended := f.addUser(domain.RoleTechnician, false, true)
		fallback := f.addUser(domain.RoleTechnician, false, true)
		f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, time.Hour)

		// another auto-assign transaction holds the first candidate's lock
		f.assignRepo.holdLock(contended.ID)

		ticket, err := f.assignments.AutoAssign(ctx, lead)
		require.NoError(t, err)

		active, err := f.assignRepo.ListActiveByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, active, 2)
		ids := []string{active[0].UserID, active[1].UserID}
		assert.Contains(t, ids, lead.ID)
		assert.Contains(t, ids, fallback.ID)
		assert.NotContains(t, ids, contended.ID)
	})

	t.Run("falls through to single assignment when every candidate is locked", func(t *testing.T) {
		f := newFixture()
		lead := f.addUser(domain.RoleTechnician, false, true)
		contended := f.addUser(domain.RoleTechnician, false, true)
		f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, time.Hour)

		f.assignRepo.holdLock(contended.ID)

		ticket, err := f.assignments.AutoAssign(ctx, lead)
		require.NoError(t, err)

		active, err := f.assignRepo.ListActiveByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, lead.ID, active[0].UserID)
	})
}

func TestAutoAssignRejectsNonTechnicians(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture()
	admin := f.addUser(domain.RoleAdmin, false, true)
	inactive := f.addUser(domain.RoleTechnician, false, false)

	_, err := f.assignments.AutoAssign(ctx, admin)
	assertCode(t, err, "FORBIDDEN")

	_, err = f.assignments.AutoAssign(ctx, inactive)
	assertCode(t, err, "FORBIDDEN")
}

func TestManualAssign(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("assigns open ticket and deactivates prior rows", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		admin := f.addUser(domain.RoleAdmin, false, true)
		oldTech := f.addUser(domain.RoleTechnician, false, true)
		newTech := f.addUser(domain.RoleTechnician, false, true)
		open := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, time.Hour)
		f.assign(open, oldTech)

		ticket, err := f.assignments.ManualAssign(ctx, admin, open.ID, newTech.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusAssigned, ticket.Status)

		active, err := f.assignRepo.ListActiveByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, newTech.ID, active[0].UserID)

		trail, err := f.assignRepo.ListByTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Len(t, trail, 2)
	})

	t.Run("technician actor forbidden", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		tech := f.addUser(domain.RoleTechnician, false, true)
		other := f.addUser(domain.RoleTechnician, false, true)
		open := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, time.Hour)

		_, err := f.assignments.ManualAssign(ctx, tech, open.ID, other.ID)
		assertCode(t, err, "FORBIDDEN")
	})

	t.Run("assignee must be an active technician", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		admin := f.addUser(domain.RoleAdmin, false, true)
		helpdesk := f.addUser(domain.RoleHelpdesk, false, true)
		open := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, time.Hour)

		_, err := f.assignments.ManualAssign(ctx, admin, open.ID, helpdesk.ID)
		assertCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("conflict when ticket already in progress", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		admin := f.addUser(domain.RoleAdmin, false, true)
		tech := f.addUser(domain.RoleTechnician, false, true)
		inProgress := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusInProgress, time.Hour)

		_, err := f.assignments.ManualAssign(ctx, admin, inProgress.ID, tech.ID)
		assertCode(t, err, "CONFLICT")
	})

	t.Run("unknown user not found", func(t *testing.T) {
		t.Parallel()
		f := newFixture()
		admin := f.addUser(domain.RoleAdmin, false, true)
		open := f.addTicket(domain.TicketTypeHomeMaintenance, domain.TicketStatusOpen, time.Hour)

		_, err := f.assignments.ManualAssign(ctx, admin, open.ID, "missing")
		assertCode(t, err, "NOT_FOUND")
	})
}
