package handler

import (
	"errors"
	"net/http"
	"strconv"

	"raffle-service/internal/model"
	"raffle-service/internal/service"
	apperrors "raffle-service/pkg/app_errors"
	"raffle-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TicketHandler struct {
	raffleService   service.RaffleService
	purchaseService service.PurchaseService
}

func NewTicketHandler(raffleService service.RaffleService, purchaseService service.PurchaseService) *TicketHandler {
	return &TicketHandler{
		raffleService:   raffleService,
		purchaseService: purchaseService,
	}
}

func (h *TicketHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("raffles/:uuid/numbers", h.AvailableNumbers)
		router.GET("raffles/:uuid/numbers/:number", h.CheckNumber)
		router.GET("raffles/:uuid/tickets", h.ListTickets)
		router.POST("raffles/:uuid/tickets", h.PurchaseTicket)
		router.PUT("raffles/:uuid/payments", h.MarkPaymentStatus)
	}
}

func (h *TicketHandler) AvailableNumbers(c *gin.Context) {
	raffle, ok := h.resolve(c, "AvailableNumbers")
	if !ok {
		return
	}
	numbers, err := h.purchaseService.AvailableNumbers(c, raffle.ID)
	if err != nil {
		h.handleError(c, err, "AvailableNumbers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"numbers": numbers})
}

func (h *TicketHandler) CheckNumber(c *gin.Context) {
	raffle, ok := h.resolve(c, "CheckNumber")
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket number"})
		return
	}
	available, err := h.purchaseService.CheckNumber(c, raffle.ID, number)
	if err != nil {
		h.handleError(c, err, "CheckNumber")
		return
	}
	c.JSON(http.StatusOK, gin.H{"number": number, "available": available})
}

func (h *TicketHandler) ListTickets(c *gin.Context) {
	raffle, ok := h.resolve(c, "ListTickets")
	if !ok {
		return
	}
	tickets, err := h.purchaseService.ListTickets(c, raffle.ID)
	if err != nil {
		h.handleError(c, err, "ListTickets")
		return
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) PurchaseTicket(c *gin.Context) {
	raffle, ok := h.resolve(c, "PurchaseTicket")
	if !ok {
		return
	}
	var req model.PurchaseTicketRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	ticket, err := h.purchaseService.PurchaseTicket(c, raffle.ID, req)
	if err != nil {
		h.handleError(c, err, "PurchaseTicket")
		return
	}
	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) MarkPaymentStatus(c *gin.Context) {
	raffle, ok := h.resolve(c, "MarkPaymentStatus")
	if !ok {
		return
	}
	var req model.MarkPaymentRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	updated, err := h.purchaseService.MarkPaymentStatus(c, raffle.ID, req)
	if err != nil {
		h.handleError(c, err, "MarkPaymentStatus")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TicketHandler) resolve(c *gin.Context, operation string) (*model.Raffle, bool) {
	raffleID, ok := ParseRaffleUUID(c)
	if !ok {
		return nil, false
	}
	raffle, err := h.raffleService.GetByRaffleID(c, raffleID)
	if err != nil {
		h.handleError(c, err, operation)
		return nil, false
	}
	return raffle, true
}

func (h *TicketHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrNumberOutOfRange):
		log.Warn("Number out of range")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Ticket number out of range"})
	case errors.Is(err, apperrors.ErrNumberTaken):
		log.Warn("Number taken")
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket number already taken"})
	case errors.Is(err, apperrors.ErrRaffleClosed):
		log.Warn("Raffle closed")
		c.JSON(http.StatusConflict, gin.H{"error": "Raffle closed for purchases"})
	case errors.Is(err, apperrors.ErrExceedsMaxPerUser):
		log.Warn("Exceeds max per user")
		c.JSON(http.StatusConflict, gin.H{"error": "Exceeds max tickets per user"})
	case errors.Is(err, apperrors.ErrRaffleNotFound):
		log.Warn("Raffle not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Raffle not found"})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
