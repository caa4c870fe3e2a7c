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

type RaffleHandler struct {
	service service.RaffleService
}

func NewRaffleHandler(service service.RaffleService) *RaffleHandler {
	return &RaffleHandler{service: service}
}

func (h *RaffleHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("raffles", h.List)
		router.GET("raffles/:uuid", h.GetByRaffleID)
		router.POST("raffles", h.Create)
		router.PUT("raffles/:uuid", h.Update)
		router.PUT("raffles/:uuid/open", h.OpenForSale)
		router.PUT("raffles/:uuid/cancel", h.Cancel)
		router.POST("raffles/:uuid/views", h.RecordView)
		router.POST("raffles/:uuid/shares", h.RecordShare)
	}
}

// UpdateRaffleRequest 更新抽獎活動請求
type UpdateRaffleRequest struct {
	Title            *string  `json:"title"`
	Description      *string  `json:"description"`
	PrizeDescription *string  `json:"prize_description"`
	PrizeImage       *string  `json:"prize_image"`
	PrizeValue       *float64 `json:"prize_value"`
	MaxPerUser       *int     `json:"max_per_user"`
	IsPublic         *bool    `json:"is_public"`
}

func (h *RaffleHandler) List(c *gin.Context) {
	if churchIDStr := c.Query("church_id"); churchIDStr != "" {
		churchID, err := strconv.Atoi(churchIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid church id"})
			return
		}
		raffles, err := h.service.ListByChurchID(c, churchID)
		if err != nil {
			h.handleError(c, err, "List")
			return
		}
		c.JSON(http.StatusOK, raffles)
		return
	}

	raffles, err := h.service.List(c)
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, raffles)
}

func (h *RaffleHandler) GetByRaffleID(c *gin.Context) {
	raffleID, ok := ParseRaffleUUID(c)
	if !ok {
		return
	}
	raffle, err := h.service.GetByRaffleID(c, raffleID)
	if err != nil {
		h.handleError(c, err, "GetByRaffleID")
		return
	}
	c.JSON(http.StatusOK, raffle)
}

func (h *RaffleHandler) Create(c *gin.Context) {
	var req model.CreateRaffleRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.Create(c, req)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RaffleHandler) Update(c *gin.Context) {
	raffle, ok := h.resolve(c, "Update")
	if !ok {
		return
	}
	var req UpdateRaffleRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	params := model.UpdateRaffleParams{
		Title:            req.Title,
		Description:      req.Description,
		PrizeDescription: req.PrizeDescription,
		PrizeImage:       req.PrizeImage,
		PrizeValue:       req.PrizeValue,
		MaxPerUser:       req.MaxPerUser,
		IsPublic:         req.IsPublic,
	}
	updated, err := h.service.Update(c, raffle.ID, params)
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RaffleHandler) OpenForSale(c *gin.Context) {
	raffle, ok := h.resolve(c, "OpenForSale")
	if !ok {
		return
	}
	updated, err := h.service.OpenForSale(c, raffle.ID)
	if err != nil {
		h.handleError(c, err, "OpenForSale")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RaffleHandler) Cancel(c *gin.Context) {
	raffle, ok := h.resolve(c, "Cancel")
	if !ok {
		return
	}
	updated, err := h.service.Cancel(c, raffle.ID)
	if err != nil {
		h.handleError(c, err, "Cancel")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RaffleHandler) RecordView(c *gin.Context) {
	raffle, ok := h.resolve(c, "RecordView")
	if !ok {
		return
	}
	if err := h.service.RecordView(c, raffle.ID); err != nil {
		h.handleError(c, err, "RecordView")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RaffleHandler) RecordShare(c *gin.Context) {
	raffle, ok := h.resolve(c, "RecordShare")
	if !ok {
		return
	}
	if err := h.service.RecordShare(c, raffle.ID); err != nil {
		h.handleError(c, err, "RecordShare")
		return
	}
	c.Status(http.StatusNoContent)
}

// resolve 由路由上的 uuid 找出 raffle
func (h *RaffleHandler) resolve(c *gin.Context, operation string) (*model.Raffle, bool) {
	raffleID, ok := ParseRaffleUUID(c)
	if !ok {
		return nil, false
	}
	raffle, err := h.service.GetByRaffleID(c, raffleID)
	if err != nil {
		h.handleError(c, err, operation)
		return nil, false
	}
	return raffle, true
}

func (h *RaffleHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrRaffleNotFound):
		log.Warn("Raffle not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Raffle not found"})
	case errors.Is(err, apperrors.ErrAlreadyDrawn):
		log.Warn("Raffle already drawn")
		c.JSON(http.StatusConflict, gin.H{"error": "Raffle already drawn"})
	case errors.Is(err, apperrors.ErrInvalidStatusTransition):
		log.Warn("Invalid status transition")
		c.JSON(http.StatusConflict, gin.H{"error": "Invalid status transition"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
