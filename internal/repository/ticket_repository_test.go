package repository_test

import (
	"context"
	"testing"

	"raffle-service/internal/model"
	"raffle-service/internal/repository"
	apperrors "raffle-service/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createLedgerEntry(t *testing.T, repo repository.TicketRepository, raffleID, number, userID int, status model.PaymentStatus) *model.Ticket {
	t.Helper()
	ctx := context.Background()

	tx, err := testDB.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	created, err := repo.Create(ctx, tx, &model.Ticket{
		RaffleID:      raffleID,
		Number:        number,
		UserID:        userID,
		PaymentMethod: model.PaymentMethodPix,
		PaymentStatus: model.PaymentStatusPending,
	})
	require.NoError(t, err)

	if status != model.PaymentStatusPending {
		created, err = repo.UpdateStatus(ctx, tx, raffleID, number, status, nil)
		require.NoError(t, err)
	}

	require.NoError(t, tx.Commit(ctx))
	return created
}

func TestTicketRepository_Create(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	repo := repository.NewTicketRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := createTestUser(t, "Buyer", "buyer@test.com")
		raffleID := createTestRaffle(t, 10, 5.0, model.RaffleStatusActive)

		ticket := createLedgerEntry(t, repo, raffleID, 3, userID, model.PaymentStatusPending)

		assert.NotZero(t, ticket.ID)
		assert.Equal(t, 3, ticket.Number)
		assert.Equal(t, model.PaymentStatusPending, ticket.PaymentStatus)
		assertRowCount(t, "tickets", 1)
	})

	t.Run("Failed - duplicate number", func(t *testing.T) {
		setupTestWithTruncate(t)
		userA := createTestUser(t, "UserA", "a@test.com")
		userB := createTestUser(t, "UserB", "b@test.com")
		raffleID := createTestRaffle(t, 10, 5.0, model.RaffleStatusActive)

		createLedgerEntry(t, repo, raffleID, 3, userA, model.PaymentStatusPending)

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		_, err = repo.Create(ctx, tx, &model.Ticket{
			RaffleID:      raffleID,
			Number:        3,
			UserID:        userB,
			PaymentMethod: model.PaymentMethodCard,
			PaymentStatus: model.PaymentStatusPending,
		})

		assert.ErrorIs(t, err, apperrors.ErrNumberTaken)
	})

	t.Run("Success - failed entry frees the number", func(t *testing.T) {
		setupTestWithTruncate(t)
		userA := createTestUser(t, "UserA", "a@test.com")
		userB := createTestUser(t, "UserB", "b@test.com")
		raffleID := createTestRaffle(t, 10, 5.0, model.RaffleStatusActive)

		createLedgerEntry(t, repo, raffleID, 3, userA, model.PaymentStatusFailed)

		ticket := createLedgerEntry(t, repo, raffleID, 3, userB, model.PaymentStatusPending)

		assert.Equal(t, userB, ticket.UserID)
		// 帳本保留 failed 條目，現在同號碼有兩筆
		assertRowCount(t, "tickets", 2)
	})
}

func TestTicketRepository_FindActiveByNumber(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	repo := repository.NewTicketRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := createTestUser(t, "Buyer", "buyer@test.com")
		raffleID := createTestRaffle(t, 10, 5.0, model.RaffleStatusActive)
		createLedgerEntry(t, repo, raffleID, 3, userID, model.PaymentStatusPending)

		ticket, err := repo.FindActiveByNumber(ctx, raffleID, 3)

		require.NoError(t, err)
		assert.Equal(t, 3, ticket.Number)
	})

	t.Run("Failed - only failed entry exists", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := createTestUser(t, "Buyer", "buyer@test.com")
		raffleID := createTestRaffle(t, 10, 5.0, model.RaffleStatusActive)
		createLedgerEntry(t, repo, raffleID, 3, userID, model.PaymentStatusFailed)

		_, err := repo.FindActiveByNumber(ctx, raffleID, 3)

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestTicketRepository_UpdateStatus(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	repo := repository.NewTicketRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := createTestUser(t, "Buyer", "buyer@test.com")
		raffleID := createTestRaffle(t, 10, 5.0, model.RaffleStatusActive)
		createLedgerEntry(t, repo, raffleID, 3, userID, model.PaymentStatusPending)

		txID := "tx-123"
		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		updated, err := repo.UpdateStatus(ctx, tx, raffleID, 3, model.PaymentStatusCompleted, &txID)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, model.PaymentStatusCompleted, updated.PaymentStatus)
		require.NotNil(t, updated.TransactionID)
		assert.Equal(t, "tx-123", *updated.TransactionID)
	})

	t.Run("Failed - no active entry for number", func(t *testing.T) {
		setupTestWithTruncate(t)
		createTestUser(t, "Buyer", "buyer@test.com")
		raffleID := createTestRaffle(t, 10, 5.0, model.RaffleStatusActive)

		tx, err := testDB.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		_, err = repo.UpdateStatus(ctx, tx, raffleID, 7, model.PaymentStatusCompleted, nil)

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})
}

func TestTicketRepository_CountActiveByBuyer(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	repo := repository.NewTicketRepository(testDB)

	setupTestWithTruncate(t)
	userID := createTestUser(t, "Buyer", "buyer@test.com")
	raffleID := createTestRaffle(t, 10, 5.0, model.RaffleStatusActive)

	createLedgerEntry(t, repo, raffleID, 1, userID, model.PaymentStatusPending)
	createLedgerEntry(t, repo, raffleID, 2, userID, model.PaymentStatusCompleted)
	createLedgerEntry(t, repo, raffleID, 3, userID, model.PaymentStatusFailed)

	tx, err := testDB.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	count, err := repo.CountActiveByBuyer(ctx, tx, raffleID, userID)

	require.NoError(t, err)
	// failed 條目不計入個人持有數
	assert.Equal(t, 2, count)
}

func TestTicketRepository_ListCompleted(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	repo := repository.NewTicketRepository(testDB)

	setupTestWithTruncate(t)
	userID := createTestUser(t, "Buyer", "buyer@test.com")
	raffleID := createTestRaffle(t, 10, 5.0, model.RaffleStatusActive)

	createLedgerEntry(t, repo, raffleID, 1, userID, model.PaymentStatusCompleted)
	createLedgerEntry(t, repo, raffleID, 2, userID, model.PaymentStatusPending)
	createLedgerEntry(t, repo, raffleID, 3, userID, model.PaymentStatusCompleted)

	var completed []*model.Ticket
	err := runInTx(t, func(tx pgx.Tx) error {
		var txErr error
		completed, txErr = repo.ListCompleted(ctx, tx, raffleID)
		return txErr
	})

	require.NoError(t, err)
	require.Len(t, completed, 2)
	assert.Equal(t, 1, completed[0].Number)
	assert.Equal(t, 3, completed[1].Number)
}

func runInTx(t *testing.T, fn func(tx pgx.Tx) error) error {
	t.Helper()
	ctx := context.Background()

	tx, err := testDB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
