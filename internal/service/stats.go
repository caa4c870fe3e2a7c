package service

import "raffle-service/internal/model"

// RecomputeStats 由票券帳本重新計算衍生統計欄位。純函式且冪等：
// 對同一份帳本執行兩次結果相同。每次寫入帳本的交易都必須在同一筆
// 交易內呼叫並回寫結果，讓快取欄位永遠與帳本一致。
//
// 狀態只會在 active 且售滿時轉為 sold_out，其餘狀態原樣帶回，
// sold_out 不會自動回復。
func RecomputeStats(raffle *model.Raffle, ledger []*model.Ticket) (model.RaffleStats, model.RaffleStatus) {
	stats := raffle.Stats

	sold := 0
	buyers := make(map[int]struct{})
	for _, ticket := range ledger {
		if ticket.PaymentStatus != model.PaymentStatusCompleted {
			continue
		}
		sold++
		buyers[ticket.UserID] = struct{}{}
	}

	stats.SoldTickets = sold
	stats.TotalRevenue = float64(sold) * raffle.TicketPrice
	stats.UniqueBuyers = len(buyers)

	status := raffle.Status
	if sold >= raffle.TotalTickets && status == model.RaffleStatusActive {
		status = model.RaffleStatusSoldOut
	}

	return stats, status
}
