package model

import "time"

// PaymentMethod 付款方式類型
type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

// IsValid 驗證付款方式是否有效
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodCard, PaymentMethodCash:
		return true
	}
	return false
}

// PaymentStatus 付款狀態類型
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// IsValid 驗證付款狀態是否有效
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// Blocks 此狀態是否佔用號碼：pending 與 completed 佔用，failed 釋出號碼供重售
func (s PaymentStatus) Blocks() bool {
	return s == PaymentStatusPending || s == PaymentStatusCompleted
}

// Ticket 票券帳本條目
type Ticket struct {
	ID            int           `json:"id" db:"id"`
	RaffleID      int           `json:"raffle_id" db:"raffle_id"`
	Number        int           `json:"number" db:"number"`
	UserID        int           `json:"user_id" db:"user_id"`
	PaymentMethod PaymentMethod `json:"payment_method" db:"payment_method"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	TransactionID *string       `json:"transaction_id,omitempty" db:"transaction_id"`
	PurchasedAt   time.Time     `json:"purchased_at" db:"purchased_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// PurchaseTicketRequest 購票請求
type PurchaseTicketRequest struct {
	UserID        int    `json:"user_id" binding:"required"`
	Number        int    `json:"number" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// MarkPaymentRequest 更新付款狀態請求
type MarkPaymentRequest struct {
	Number        int     `json:"number" binding:"required"`
	Status        string  `json:"status" binding:"required"`
	TransactionID *string `json:"transaction_id"`
}
