package handler

import (
	"errors"
	"net/http"

	"raffle-service/internal/model"
	"raffle-service/internal/queue"
	"raffle-service/internal/service"
	apperrors "raffle-service/pkg/app_errors"
	"raffle-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentHandler 接收付款供應商的 webhook，轉成事件丟進隊列，
// 由 worker 非同步套用到帳本
type PaymentHandler struct {
	raffleService service.RaffleService
	queue         queue.PaymentQueue
}

func NewPaymentHandler(raffleService service.RaffleService, queue queue.PaymentQueue) *PaymentHandler {
	return &PaymentHandler{
		raffleService: raffleService,
		queue:         queue,
	}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("payments/webhook", h.Webhook)
	}
}

// PaymentWebhookRequest 付款供應商回報
type PaymentWebhookRequest struct {
	RaffleID      string  `json:"raffle_id" binding:"required"`
	Number        int     `json:"number" binding:"required"`
	Status        string  `json:"status" binding:"required"`
	TransactionID *string `json:"transaction_id"`
}

func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req PaymentWebhookRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	raffleUUID, err := uuid.Parse(req.RaffleID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid raffle uuid"})
		return
	}

	status := model.PaymentStatus(req.Status)
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment status"})
		return
	}

	raffle, err := h.raffleService.GetByRaffleID(c, raffleUUID)
	if err != nil {
		if errors.Is(err, apperrors.ErrRaffleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Raffle not found"})
			return
		}
		logger.WithComponent("handler").Error("webhook raffle lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	event := &model.PaymentEvent{
		RaffleID:      raffle.ID,
		Number:        req.Number,
		Status:        status,
		TransactionID: req.TransactionID,
	}

	if err := h.queue.PublishPaymentEvent(c, event); err != nil {
		logger.WithComponent("handler").Error("publish payment event failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.Status(http.StatusAccepted)
}
