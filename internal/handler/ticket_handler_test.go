package handler_test

import (
	"net/http"
	"testing"

	"raffle-service/internal/handler"
	"raffle-service/internal/model"
	"raffle-service/internal/service/mocks"
	apperrors "raffle-service/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTicketRouter(raffleService *mocks.RaffleServiceMock, purchaseService *mocks.PurchaseServiceMock) *gin.Engine {
	router := gin.New()
	handler.NewTicketHandler(raffleService, purchaseService).RegisterRoutes(router)
	return router
}

func activeRaffle(raffleID uuid.UUID) *model.Raffle {
	return &model.Raffle{
		ID:           1,
		RaffleID:     raffleID,
		Title:        "Test Raffle",
		TicketPrice:  5.0,
		TotalTickets: 10,
		Status:       model.RaffleStatusActive,
	}
}

func TestTicketHandler_AvailableNumbers(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)
		purchaseService.On("AvailableNumbers", mock.Anything, 1).Return([]int{1, 3, 5}, nil)

		req := createJSONHTTPRequest(t, http.MethodGet, "/api/v1/raffles/"+raffleID.String()+"/numbers", nil)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Len(t, body["numbers"], 3)
		purchaseService.AssertExpectations(t)
	})

	t.Run("Failed - invalid uuid", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		req := createJSONHTTPRequest(t, http.MethodGet, "/api/v1/raffles/not-a-uuid/numbers", nil)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		raffleService.AssertNotCalled(t, "GetByRaffleID")
	})

	t.Run("Failed - raffle not found", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(nil, apperrors.ErrRaffleNotFound)

		req := createJSONHTTPRequest(t, http.MethodGet, "/api/v1/raffles/"+raffleID.String()+"/numbers", nil)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		purchaseService.AssertNotCalled(t, "AvailableNumbers")
	})
}

func TestTicketHandler_CheckNumber(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)
		purchaseService.On("CheckNumber", mock.Anything, 1, 4).Return(true, nil)

		req := createJSONHTTPRequest(t, http.MethodGet, "/api/v1/raffles/"+raffleID.String()+"/numbers/4", nil)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["available"])
	})

	t.Run("Failed - out of range", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)
		purchaseService.On("CheckNumber", mock.Anything, 1, 99).Return(false, apperrors.ErrNumberOutOfRange)

		req := createJSONHTTPRequest(t, http.MethodGet, "/api/v1/raffles/"+raffleID.String()+"/numbers/99", nil)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - non-numeric number", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)

		req := createJSONHTTPRequest(t, http.MethodGet, "/api/v1/raffles/"+raffleID.String()+"/numbers/abc", nil)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		purchaseService.AssertNotCalled(t, "CheckNumber")
	})
}

func TestTicketHandler_PurchaseTicket(t *testing.T) {
	purchaseReq := model.PurchaseTicketRequest{UserID: 100, Number: 4, PaymentMethod: "pix"}

	t.Run("Success", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		ticket := &model.Ticket{ID: 10, RaffleID: 1, Number: 4, UserID: 100, PaymentStatus: model.PaymentStatusPending}
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)
		purchaseService.On("PurchaseTicket", mock.Anything, 1, purchaseReq).Return(ticket, nil)

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/raffles/"+raffleID.String()+"/tickets", purchaseReq)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		purchaseService.AssertExpectations(t)
	})

	t.Run("Failed - number taken", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)
		purchaseService.On("PurchaseTicket", mock.Anything, 1, purchaseReq).Return(nil, apperrors.ErrNumberTaken)

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/raffles/"+raffleID.String()+"/tickets", purchaseReq)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Failed - raffle closed", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)
		purchaseService.On("PurchaseTicket", mock.Anything, 1, purchaseReq).Return(nil, apperrors.ErrRaffleClosed)

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/raffles/"+raffleID.String()+"/tickets", purchaseReq)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Failed - invalid body", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)

		req := createJSONHTTPRequest(t, http.MethodPost, "/api/v1/raffles/"+raffleID.String()+"/tickets", "not-an-object")
		w := performRequest(router, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		purchaseService.AssertNotCalled(t, "PurchaseTicket")
	})
}

func TestTicketHandler_MarkPaymentStatus(t *testing.T) {
	markReq := model.MarkPaymentRequest{Number: 4, Status: "completed"}

	t.Run("Success", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		updated := activeRaffle(raffleID)
		updated.Stats.SoldTickets = 1
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)
		purchaseService.On("MarkPaymentStatus", mock.Anything, 1, markReq).Return(updated, nil)

		req := createJSONHTTPRequest(t, http.MethodPut, "/api/v1/raffles/"+raffleID.String()+"/payments", markReq)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		purchaseService.AssertExpectations(t)
	})

	t.Run("Failed - ticket not found", func(t *testing.T) {
		raffleService := mocks.NewRaffleServiceMock()
		purchaseService := mocks.NewPurchaseServiceMock()
		router := setupTicketRouter(raffleService, purchaseService)

		raffleID := uuid.New()
		raffleService.On("GetByRaffleID", mock.Anything, raffleID).Return(activeRaffle(raffleID), nil)
		purchaseService.On("MarkPaymentStatus", mock.Anything, 1, markReq).Return(nil, apperrors.ErrTicketNotFound)

		req := createJSONHTTPRequest(t, http.MethodPut, "/api/v1/raffles/"+raffleID.String()+"/payments", markReq)
		w := performRequest(router, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
