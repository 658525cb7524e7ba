package repository_test

import (
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nusalink/ftth-helpdesk/internal/domain"
	"github.com/nusalink/ftth-helpdesk/internal/repository"
)

func TestLockOldestEligible(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("empty type list short-circuits", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewTicketRepository(mock)

		_, err = repo.LockOldestEligible(ctx, nil)
		require.ErrorIs(t, err, pgx.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty queue surfaces ErrNoRows", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewTicketRepository(mock)

		mock.ExpectQuery(regexp.QuoteMeta(repository.LockOldestEligibleSQL)).
			WithArgs([]string{"home_maintenance"}).
			WillReturnError(pgx.ErrNoRows)

		_, err = repo.LockOldestEligible(ctx, []domain.TicketType{domain.TicketTypeHomeMaintenance})
		require.ErrorIs(t, err, pgx.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCountByStatus(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := repository.NewTicketRepository(mock)

	mock.ExpectQuery("SELECT status, COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow("open", int64(3)).
			AddRow("closed", int64(7)))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[domain.TicketStatusOpen])
	assert.Equal(t, int64(7), counts[domain.TicketStatusClosed])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackfillAreas(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := repository.NewTicketRepository(mock)

	mock.ExpectExec("UPDATE tickets t SET area").
		WillReturnResult(pgxmock.NewResult("UPDATE", 12))

	affected, err := repo.BackfillAreas(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
