package model

// PaymentEvent 付款供應商回報的狀態變更，經由 queue 投遞給 worker 套用
type PaymentEvent struct {
	RaffleID      int           `json:"raffle_id"`
	Number        int           `json:"number"`
	Status        PaymentStatus `json:"status"`
	TransactionID *string       `json:"transaction_id,omitempty"`
}
