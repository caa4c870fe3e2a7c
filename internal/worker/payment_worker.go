package worker

import (
	"context"
	"errors"

	"raffle-service/internal/model"
	"raffle-service/internal/queue"
	"raffle-service/internal/service"
	apperrors "raffle-service/pkg/app_errors"
	"raffle-service/pkg/logger"

	"go.uber.org/zap"
)

// PaymentWorker 訂閱付款事件隊列，將供應商回報的狀態變更套用到帳本
type PaymentWorker interface {
	Start(ctx context.Context) error
}

type PaymentWorkerImpl struct {
	service service.PurchaseService
	queue   queue.PaymentQueue
}

func NewPaymentWorker(service service.PurchaseService, queue queue.PaymentQueue) PaymentWorker {
	return &PaymentWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *PaymentWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribePaymentEvents(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			event := msg.Data
			_, err := w.service.MarkPaymentStatus(ctx, event.RaffleID, model.MarkPaymentRequest{
				Number:        event.Number,
				Status:        string(event.Status),
				TransactionID: event.TransactionID,
			})

			switch {
			case err == nil:
				msg.Ack()
			case w.isPermanent(err):
				// 領域錯誤重試也不會成功，直接丟棄避免卡住 PEL
				logger.WithComponent("worker").Warn("drop payment event",
					zap.Int("raffle_id", event.RaffleID),
					zap.Int("number", event.Number),
					zap.Error(err))
				msg.Nack(false)
			default:
				// 基礎設施錯誤（例如資料庫暫時連不上）交給隊列重試
				msg.Nack(true)
			}
		}
	}()
	return nil
}

func (w *PaymentWorkerImpl) isPermanent(err error) bool {
	return errors.Is(err, apperrors.ErrRaffleNotFound) ||
		errors.Is(err, apperrors.ErrTicketNotFound) ||
		errors.Is(err, apperrors.ErrRaffleClosed) ||
		errors.Is(err, apperrors.ErrInvalidInput)
}
