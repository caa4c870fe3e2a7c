package service

import "raffle-service/internal/model"

// IsNumberAvailable 檢查號碼是否可售：pending 或 completed 條目佔用號碼，
// failed 條目不擋重售。不做範圍檢查，範圍由呼叫端負責。
func IsNumberAvailable(ledger []*model.Ticket, number int) bool {
	for _, ticket := range ledger {
		if ticket.Number == number && ticket.PaymentStatus.Blocks() {
			return false
		}
	}
	return true
}

// AvailableNumbers 回傳 1..totalTickets 中尚未被佔用的號碼，遞增排序，
// 每次呼叫重新計算，不做快取。
func AvailableNumbers(totalTickets int, ledger []*model.Ticket) []int {
	taken := make(map[int]struct{}, len(ledger))
	for _, ticket := range ledger {
		if ticket.PaymentStatus.Blocks() {
			taken[ticket.Number] = struct{}{}
		}
	}

	numbers := make([]int, 0, totalTickets-len(taken))
	for n := 1; n <= totalTickets; n++ {
		if _, ok := taken[n]; !ok {
			numbers = append(numbers, n)
		}
	}
	return numbers
}
