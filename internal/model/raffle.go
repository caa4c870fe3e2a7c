package model

import (
	"time"

	"github.com/google/uuid"
)

// RaffleStatus 抽獎活動狀態類型
type RaffleStatus string

const (
	RaffleStatusDraft     RaffleStatus = "draft"
	RaffleStatusActive    RaffleStatus = "active"
	RaffleStatusSoldOut   RaffleStatus = "sold_out"
	RaffleStatusDrawn     RaffleStatus = "drawn"
	RaffleStatusCancelled RaffleStatus = "cancelled"
)

// IsValid 驗證狀態是否有效
func (s RaffleStatus) IsValid() bool {
	switch s {
	case RaffleStatusDraft, RaffleStatusActive, RaffleStatusSoldOut, RaffleStatusDrawn, RaffleStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
// drawn 與 cancelled 為終態；sold_out 不可回到 active（容量不會縮減）
func (s RaffleStatus) CanTransitionTo(target RaffleStatus) bool {
	transitions := map[RaffleStatus][]RaffleStatus{
		RaffleStatusDraft:     {RaffleStatusActive, RaffleStatusCancelled},
		RaffleStatusActive:    {RaffleStatusSoldOut, RaffleStatusDrawn, RaffleStatusCancelled},
		RaffleStatusSoldOut:   {RaffleStatusDrawn, RaffleStatusCancelled},
		RaffleStatusDrawn:     {},
		RaffleStatusCancelled: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// IsOpenForPurchase 是否可售票（僅 active 可售）
func (s RaffleStatus) IsOpenForPurchase() bool {
	return s == RaffleStatusActive
}

// IsDrawable 是否可開獎（active 或 sold_out）
func (s RaffleStatus) IsDrawable() bool {
	return s == RaffleStatusActive || s == RaffleStatusSoldOut
}

// RaffleStats 衍生統計欄位，一律由票券帳本重新計算，不可直接寫入
type RaffleStats struct {
	SoldTickets  int     `json:"sold_tickets" db:"sold_tickets"`
	TotalRevenue float64 `json:"total_revenue" db:"total_revenue"`
	UniqueBuyers int     `json:"unique_buyers" db:"unique_buyers"`
	ViewCount    int     `json:"view_count" db:"view_count"`
	ShareCount   int     `json:"share_count" db:"share_count"`
}

// Winner 中獎紀錄，每個抽獎活動至多一筆
type Winner struct {
	TicketNumber int        `json:"ticket_number"`
	UserID       int        `json:"user_id"`
	DrawnAt      time.Time  `json:"drawn_at"`
	Claimed      bool       `json:"claimed"`
	ClaimedAt    *time.Time `json:"claimed_at,omitempty"`
}

// Raffle 抽獎活動模型
type Raffle struct {
	ID               int          `json:"id" db:"id"`
	RaffleID         uuid.UUID    `json:"raffle_id" db:"raffle_id"`
	ChurchID         int          `json:"church_id" db:"church_id"`
	Title            string       `json:"title" db:"title"`
	Description      *string      `json:"description,omitempty" db:"description"`
	PrizeDescription string       `json:"prize_description" db:"prize_description"`
	PrizeImage       *string      `json:"prize_image,omitempty" db:"prize_image"`
	PrizeValue       *float64     `json:"prize_value,omitempty" db:"prize_value"`
	TicketPrice      float64      `json:"ticket_price" db:"ticket_price"`
	TotalTickets     int          `json:"total_tickets" db:"total_tickets"`
	MaxPerUser       int          `json:"max_per_user" db:"max_per_user"`
	IsPublic         bool         `json:"is_public" db:"is_public"`
	RequiresApproval bool         `json:"requires_approval" db:"requires_approval"`
	Status           RaffleStatus `json:"status" db:"status"`
	StartsAt         time.Time    `json:"starts_at" db:"starts_at"`
	EndsAt           time.Time    `json:"ends_at" db:"ends_at"`
	DrawDate         *time.Time   `json:"draw_date,omitempty" db:"draw_date"`
	Stats            RaffleStats  `json:"stats"`
	Winner           *Winner      `json:"winner,omitempty"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// HasWinner 檢查是否已開獎
func (r *Raffle) HasWinner() bool {
	return r.Winner != nil
}

// IsNumberInRange 檢查號碼是否在 [1, TotalTickets] 區間
func (r *Raffle) IsNumberInRange(number int) bool {
	return number >= 1 && number <= r.TotalTickets
}

// CreateRaffleRequest 建立抽獎活動請求
type CreateRaffleRequest struct {
	ChurchID         int      `json:"church_id" binding:"required"`
	Title            string   `json:"title" binding:"required"`
	Description      *string  `json:"description"`
	PrizeDescription string   `json:"prize_description" binding:"required"`
	PrizeImage       *string  `json:"prize_image"`
	PrizeValue       *float64 `json:"prize_value"`
	TicketPrice      float64  `json:"ticket_price" binding:"required,gte=0.01"`
	TotalTickets     int      `json:"total_tickets" binding:"required,min=1"`
	MaxPerUser       int      `json:"max_per_user" binding:"min=0"`
	IsPublic         *bool    `json:"is_public"`
	RequiresApproval bool     `json:"requires_approval"`
	StartsAt         string   `json:"starts_at" binding:"required"`
	EndsAt           string   `json:"ends_at" binding:"required"`
}

// UpdateRaffleParams 更新抽獎活動參數
type UpdateRaffleParams struct {
	Title            *string
	Description      *string
	PrizeDescription *string
	PrizeImage       *string
	PrizeValue       *float64
	MaxPerUser       *int
	IsPublic         *bool
}
