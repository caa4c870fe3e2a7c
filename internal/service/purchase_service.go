package service

import (
	"context"
	"errors"

	"raffle-service/internal/cache"
	"raffle-service/internal/model"
	"raffle-service/internal/repository"
	apperrors "raffle-service/pkg/app_errors"
	"raffle-service/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type PurchaseService interface {
	// 查詢可售號碼（每次重新計算）
	AvailableNumbers(ctx context.Context, raffleID int) ([]int, error)
	// 查詢單一號碼是否可售
	CheckNumber(ctx context.Context, raffleID int, number int) (bool, error)
	ListTickets(ctx context.Context, raffleID int) ([]*model.Ticket, error)
	// 購票：閘門快速路徑 + 資料庫交易落帳
	PurchaseTicket(ctx context.Context, raffleID int, req model.PurchaseTicketRequest) (*model.Ticket, error)
	// 更新付款狀態並同步重算統計
	MarkPaymentStatus(ctx context.Context, raffleID int, req model.MarkPaymentRequest) (*model.Raffle, error)
}

type PurchaseServiceImpl struct {
	pool       *pgxpool.Pool
	raffleRepo repository.RaffleRepository
	ticketRepo repository.TicketRepository
	gate       cache.RafflePurchaseGate
}

func NewPurchaseService(
	pool *pgxpool.Pool,
	raffleRepo repository.RaffleRepository,
	ticketRepo repository.TicketRepository,
	gate cache.RafflePurchaseGate,
) PurchaseService {
	return &PurchaseServiceImpl{
		pool:       pool,
		raffleRepo: raffleRepo,
		ticketRepo: ticketRepo,
		gate:       gate,
	}
}

func (s *PurchaseServiceImpl) AvailableNumbers(ctx context.Context, raffleID int) ([]int, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	ledger, err := s.ticketRepo.ListByRaffleID(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	return AvailableNumbers(raffle.TotalTickets, ledger), nil
}

func (s *PurchaseServiceImpl) CheckNumber(ctx context.Context, raffleID int, number int) (bool, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return false, err
	}

	// 範圍外的號碼一律視為不可售
	if !raffle.IsNumberInRange(number) {
		return false, nil
	}

	_, err = s.ticketRepo.FindActiveByNumber(ctx, raffleID, number)
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			return true, nil
		}
		return false, err
	}

	return false, nil
}

func (s *PurchaseServiceImpl) ListTickets(ctx context.Context, raffleID int) ([]*model.Ticket, error) {
	if _, err := s.raffleRepo.FindByID(ctx, raffleID); err != nil {
		return nil, err
	}
	return s.ticketRepo.ListByRaffleID(ctx, raffleID)
}

// PurchaseTicket 落一筆 pending 帳本條目。唯一性由 tickets 的 partial unique
// index 保證；閘門只是快速路徑，未預熱時直接走資料庫。
func (s *PurchaseServiceImpl) PurchaseTicket(ctx context.Context, raffleID int, req model.PurchaseTicketRequest) (*model.Ticket, error) {
	method := model.PaymentMethod(req.PaymentMethod)
	if !method.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		return nil, err
	}

	if !raffle.IsNumberInRange(req.Number) {
		return nil, apperrors.ErrNumberOutOfRange
	}
	if !raffle.Status.IsOpenForPurchase() {
		return nil, apperrors.ErrRaffleClosed
	}

	// 1. 閘門快速路徑：售罄與個人上限在這裡先擋掉大部分流量
	gateHeld := false
	err = s.gate.Acquire(ctx, raffleID, req.UserID)
	switch {
	case err == nil:
		gateHeld = true
	case errors.Is(err, cache.ErrNotWarmed):
		// 未預熱不擋單，由資料庫交易把關
	case errors.Is(err, apperrors.ErrRaffleClosed), errors.Is(err, apperrors.ErrExceedsMaxPerUser):
		return nil, err
	default:
		// Redis 故障不阻斷售票
		logger.WithComponent("service").Warn("purchase gate unavailable", zap.Int("raffle_id", raffleID), zap.Error(err))
	}

	ticket, err := s.purchaseInTx(ctx, raffleID, req, method)
	if err != nil {
		if gateHeld {
			// 回補閘門：使用 context.Background() 確保一定執行
			if releaseErr := s.gate.Release(context.Background(), raffleID, req.UserID); releaseErr != nil {
				logger.WithComponent("service").Warn("gate release failed", zap.Int("raffle_id", raffleID), zap.Error(releaseErr))
			}
		}
		return nil, err
	}

	return ticket, nil
}

func (s *PurchaseServiceImpl) purchaseInTx(ctx context.Context, raffleID int, req model.PurchaseTicketRequest, method model.PaymentMethod) (*model.Ticket, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 鎖定 raffle 列：同一活動的帳本寫入與統計重算依此序列化
	raffle, err := s.raffleRepo.FindByIDWithLock(ctx, tx, raffleID)
	if err != nil {
		return nil, err
	}

	if !raffle.Status.IsOpenForPurchase() {
		return nil, apperrors.ErrRaffleClosed
	}
	if raffle.Stats.SoldTickets >= raffle.TotalTickets {
		return nil, apperrors.ErrRaffleClosed
	}

	if raffle.MaxPerUser > 0 {
		count, err := s.ticketRepo.CountActiveByBuyer(ctx, tx, raffleID, req.UserID)
		if err != nil {
			return nil, err
		}
		if count+1 > raffle.MaxPerUser {
			return nil, apperrors.ErrExceedsMaxPerUser
		}
	}

	ticket := &model.Ticket{
		RaffleID:      raffleID,
		Number:        req.Number,
		UserID:        req.UserID,
		PaymentMethod: method,
		PaymentStatus: model.PaymentStatusPending,
	}

	created, err := s.ticketRepo.Create(ctx, tx, ticket)
	if err != nil {
		return nil, err
	}

	if err := s.recomputeAndSave(ctx, tx, raffle); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}

// MarkPaymentStatus 更新號碼的付款狀態並在同一交易內重算統計。
// 開獎或取消後帳本不再有意義，直接拒絕。
func (s *PurchaseServiceImpl) MarkPaymentStatus(ctx context.Context, raffleID int, req model.MarkPaymentRequest) (*model.Raffle, error) {
	status := model.PaymentStatus(req.Status)
	if !status.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	raffle, err := s.raffleRepo.FindByIDWithLock(ctx, tx, raffleID)
	if err != nil {
		return nil, err
	}

	if raffle.Status == model.RaffleStatusDrawn || raffle.Status == model.RaffleStatusCancelled {
		return nil, apperrors.ErrRaffleClosed
	}

	ticket, err := s.ticketRepo.UpdateStatus(ctx, tx, raffleID, req.Number, status, req.TransactionID)
	if err != nil {
		return nil, err
	}

	if err := s.recomputeAndSave(ctx, tx, raffle); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// 付款失敗釋出號碼，同步回補閘門名額
	if status == model.PaymentStatusFailed {
		if releaseErr := s.gate.Release(context.Background(), raffleID, ticket.UserID); releaseErr != nil && !errors.Is(releaseErr, cache.ErrNotWarmed) {
			logger.WithComponent("service").Warn("gate release failed", zap.Int("raffle_id", raffleID), zap.Error(releaseErr))
		}
	}

	return s.raffleRepo.FindByID(ctx, raffleID)
}

// recomputeAndSave 帳本異動後的統計重算，與帳本寫入同交易
func (s *PurchaseServiceImpl) recomputeAndSave(ctx context.Context, tx pgx.Tx, raffle *model.Raffle) error {
	ledger, err := s.ticketRepo.ListLedger(ctx, tx, raffle.ID)
	if err != nil {
		return err
	}

	stats, status := RecomputeStats(raffle, ledger)
	return s.raffleRepo.SaveStats(ctx, tx, raffle.ID, stats, status)
}
