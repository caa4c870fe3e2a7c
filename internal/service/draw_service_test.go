package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"raffle-service/internal/model"
	"raffle-service/internal/repository"
	"raffle-service/internal/service"
	apperrors "raffle-service/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDrawService() service.DrawService {
	raffleRepo := repository.NewRaffleRepository(testDB)
	ticketRepo := repository.NewTicketRepository(testDB)
	return service.NewDrawService(testDB, raffleRepo, ticketRepo)
}

// completeTickets 購票並標記付款完成
func completeTickets(t *testing.T, purchaseService service.PurchaseService, raffleID int, userID int, numbers ...int) {
	t.Helper()
	ctx := context.Background()

	for _, number := range numbers {
		_, err := purchaseService.PurchaseTicket(ctx, raffleID, model.PurchaseTicketRequest{
			UserID: userID, Number: number, PaymentMethod: "pix",
		})
		require.NoError(t, err)
		_, err = purchaseService.MarkPaymentStatus(ctx, raffleID, model.MarkPaymentRequest{
			Number: number, Status: "completed",
		})
		require.NoError(t, err)
	}
}

func TestDrawService_DrawWinner(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	drawService := newDrawService()
	purchaseService := newPurchaseService()
	raffleRepo := repository.NewRaffleRepository(testDB)

	t.Run("Success", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := seedUser(t, "Buyer", "buyer@test.com")
		raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusActive, 0)
		completeTickets(t, purchaseService, raffleID, userID, 1, 2, 3)

		winner, err := drawService.DrawWinner(ctx, raffleID)

		require.NoError(t, err)
		assert.Contains(t, []int{1, 2, 3}, winner.TicketNumber)
		assert.Equal(t, userID, winner.UserID)
		assert.False(t, winner.Claimed)

		raffle, err := raffleRepo.FindByID(ctx, raffleID)
		require.NoError(t, err)
		assert.Equal(t, model.RaffleStatusDrawn, raffle.Status)
	})

	t.Run("Success - pending tickets are excluded", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := seedUser(t, "Buyer", "buyer@test.com")
		raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusActive, 0)
		completeTickets(t, purchaseService, raffleID, userID, 1)

		// 號碼 2 只到 pending，不能進入抽選池
		_, err := purchaseService.PurchaseTicket(ctx, raffleID, model.PurchaseTicketRequest{
			UserID: userID, Number: 2, PaymentMethod: "pix",
		})
		require.NoError(t, err)

		winner, err := drawService.DrawWinner(ctx, raffleID)

		require.NoError(t, err)
		assert.Equal(t, 1, winner.TicketNumber)
	})

	t.Run("Failed - empty pool", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := seedUser(t, "Buyer", "buyer@test.com")
		raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusActive, 0)

		// 只有 pending 票也算空池
		_, err := purchaseService.PurchaseTicket(ctx, raffleID, model.PurchaseTicketRequest{
			UserID: userID, Number: 1, PaymentMethod: "pix",
		})
		require.NoError(t, err)

		_, err = drawService.DrawWinner(ctx, raffleID)

		assert.ErrorIs(t, err, apperrors.ErrEmptyPool)
	})

	t.Run("Failed - already drawn", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := seedUser(t, "Buyer", "buyer@test.com")
		raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusActive, 0)
		completeTickets(t, purchaseService, raffleID, userID, 1)

		_, err := drawService.DrawWinner(ctx, raffleID)
		require.NoError(t, err)

		_, err = drawService.DrawWinner(ctx, raffleID)
		assert.ErrorIs(t, err, apperrors.ErrAlreadyDrawn)
	})

	t.Run("Failed - draft raffle not drawable", func(t *testing.T) {
		setupTestWithTruncate(t)
		seedUser(t, "Buyer", "buyer@test.com")
		raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusDraft, 0)

		_, err := drawService.DrawWinner(ctx, raffleID)

		assert.ErrorIs(t, err, apperrors.ErrRaffleClosed)
	})

	t.Run("Failed - purchases rejected after draw", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := seedUser(t, "Buyer", "buyer@test.com")
		raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusActive, 0)
		completeTickets(t, purchaseService, raffleID, userID, 1)

		_, err := drawService.DrawWinner(ctx, raffleID)
		require.NoError(t, err)

		_, err = purchaseService.PurchaseTicket(ctx, raffleID, model.PurchaseTicketRequest{
			UserID: userID, Number: 2, PaymentMethod: "pix",
		})
		assert.ErrorIs(t, err, apperrors.ErrRaffleClosed)
	})
}

func TestDrawService_ClaimPrize(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	drawService := newDrawService()
	purchaseService := newPurchaseService()

	t.Run("Success", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := seedUser(t, "Buyer", "buyer@test.com")
		raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusActive, 0)
		completeTickets(t, purchaseService, raffleID, userID, 1)

		_, err := drawService.DrawWinner(ctx, raffleID)
		require.NoError(t, err)

		raffle, err := drawService.ClaimPrize(ctx, raffleID)

		require.NoError(t, err)
		require.NotNil(t, raffle.Winner)
		assert.True(t, raffle.Winner.Claimed)
		assert.NotNil(t, raffle.Winner.ClaimedAt)
	})

	t.Run("Failed - no winner yet", func(t *testing.T) {
		setupTestWithTruncate(t)
		seedUser(t, "Buyer", "buyer@test.com")
		raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusActive, 0)

		_, err := drawService.ClaimPrize(ctx, raffleID)

		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})

	t.Run("Failed - already claimed", func(t *testing.T) {
		setupTestWithTruncate(t)
		userID := seedUser(t, "Buyer", "buyer@test.com")
		raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusActive, 0)
		completeTickets(t, purchaseService, raffleID, userID, 1)

		_, err := drawService.DrawWinner(ctx, raffleID)
		require.NoError(t, err)

		_, err = drawService.ClaimPrize(ctx, raffleID)
		require.NoError(t, err)

		_, err = drawService.ClaimPrize(ctx, raffleID)
		assert.ErrorIs(t, err, apperrors.ErrWinnerAlreadyClaimed)
	})
}

// 20 個併發開獎請求只能成立一次
func TestConcurrentDraw_SingleWinner(t *testing.T) {
	requireTestDB(t)
	ctx := context.Background()
	drawService := newDrawService()
	purchaseService := newPurchaseService()

	setupTestWithTruncate(t)
	raffleID := seedRaffle(t, 10, 5.0, model.RaffleStatusActive, 0)
	for i := 0; i < 3; i++ {
		userID := seedUser(t, fmt.Sprintf("User%d", i), fmt.Sprintf("user%d@test.com", i))
		completeTickets(t, purchaseService, raffleID, userID, i+1)
	}

	concurrentDraws := 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successCount := 0
	alreadyDrawnCount := 0

	for i := 0; i < concurrentDraws; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := drawService.DrawWinner(ctx, raffleID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successCount++
			case errors.Is(err, apperrors.ErrAlreadyDrawn):
				alreadyDrawnCount++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	wg.Wait()

	t.Logf("%d concurrent draws - Success: %d, AlreadyDrawn: %d", concurrentDraws, successCount, alreadyDrawnCount)
	assert.Equal(t, 1, successCount)
	assert.Equal(t, concurrentDraws-1, alreadyDrawnCount)
}
