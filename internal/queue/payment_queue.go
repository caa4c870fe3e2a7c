package queue

import (
	"context"

	"raffle-service/internal/model"
)

type Delivery struct {
	Data *model.PaymentEvent
	Ack  func()
	Nack func(requeue bool)
}

// PaymentQueue 付款供應商回報事件的隊列，worker 訂閱後逐筆套用到帳本
type PaymentQueue interface {
	// 發送付款事件到隊列
	PublishPaymentEvent(ctx context.Context, event *model.PaymentEvent) error
	// 訂閱付款事件隊列
	SubscribePaymentEvents(ctx context.Context) (<-chan Delivery, error)
}

type PaymentQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *model.PaymentEvent
}

func NewPaymentQueue(bufferSize int) PaymentQueue {
	return &PaymentQueueImpl{
		ch: make(chan *model.PaymentEvent, bufferSize),
	}
}

func (q *PaymentQueueImpl) PublishPaymentEvent(ctx context.Context, event *model.PaymentEvent) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *PaymentQueueImpl) SubscribePaymentEvents(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				// 將原始事件包裝成 Delivery 格式給 Worker
				out <- Delivery{
					Data: event,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- event // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
