package handler

import (
	"errors"
	"net/http"

	"raffle-service/internal/model"
	"raffle-service/internal/service"
	apperrors "raffle-service/pkg/app_errors"
	"raffle-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DrawHandler struct {
	raffleService service.RaffleService
	drawService   service.DrawService
}

func NewDrawHandler(raffleService service.RaffleService, drawService service.DrawService) *DrawHandler {
	return &DrawHandler{
		raffleService: raffleService,
		drawService:   drawService,
	}
}

func (h *DrawHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("raffles/:uuid/draw", h.DrawWinner)
		router.PUT("raffles/:uuid/claim", h.ClaimPrize)
	}
}

func (h *DrawHandler) DrawWinner(c *gin.Context) {
	raffle, ok := h.resolve(c, "DrawWinner")
	if !ok {
		return
	}
	winner, err := h.drawService.DrawWinner(c, raffle.ID)
	if err != nil {
		h.handleError(c, err, "DrawWinner")
		return
	}
	c.JSON(http.StatusOK, winner)
}

func (h *DrawHandler) ClaimPrize(c *gin.Context) {
	raffle, ok := h.resolve(c, "ClaimPrize")
	if !ok {
		return
	}
	updated, err := h.drawService.ClaimPrize(c, raffle.ID)
	if err != nil {
		h.handleError(c, err, "ClaimPrize")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *DrawHandler) resolve(c *gin.Context, operation string) (*model.Raffle, bool) {
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

func (h *DrawHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEmptyPool):
		log.Warn("Empty draw pool")
		c.JSON(http.StatusConflict, gin.H{"error": "No completed tickets to draw from"})
	case errors.Is(err, apperrors.ErrAlreadyDrawn):
		log.Warn("Already drawn")
		c.JSON(http.StatusConflict, gin.H{"error": "Raffle already drawn"})
	case errors.Is(err, apperrors.ErrRaffleClosed):
		log.Warn("Raffle not drawable")
		c.JSON(http.StatusConflict, gin.H{"error": "Raffle is not drawable"})
	case errors.Is(err, apperrors.ErrWinnerAlreadyClaimed):
		log.Warn("Prize already claimed")
		c.JSON(http.StatusConflict, gin.H{"error": "Prize already claimed"})
	case errors.Is(err, apperrors.ErrRaffleNotFound):
		log.Warn("Raffle not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Raffle not found"})
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("No winner to claim")
		c.JSON(http.StatusNotFound, gin.H{"error": "Raffle has no winner yet"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
