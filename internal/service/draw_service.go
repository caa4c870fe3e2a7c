package service

import (
	"context"
	"math/rand"
	"time"

	"raffle-service/internal/model"
	"raffle-service/internal/repository"
	apperrors "raffle-service/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DrawService interface {
	// 開獎：在 completed 票券中均勻抽出一張
	DrawWinner(ctx context.Context, raffleID int) (*model.Winner, error)
	// 中獎人領獎
	ClaimPrize(ctx context.Context, raffleID int) (*model.Raffle, error)
}

type DrawServiceImpl struct {
	pool       *pgxpool.Pool
	raffleRepo repository.RaffleRepository
	ticketRepo repository.TicketRepository
}

func NewDrawService(
	pool *pgxpool.Pool,
	raffleRepo repository.RaffleRepository,
	ticketRepo repository.TicketRepository,
) DrawService {
	return &DrawServiceImpl{
		pool:       pool,
		raffleRepo: raffleRepo,
		ticketRepo: ticketRepo,
	}
}

// PickWinner 在 completed 票券中均勻抽出一張。每張票一個籤位，
// 同一買家持多張票就有多個籤位。呼叫端保證 completed 非空。
func PickWinner(completed []*model.Ticket) *model.Ticket {
	return completed[rand.Intn(len(completed))]
}

// DrawWinner 整個讀取-抽選-寫入流程在單一交易內，與 raffle 列鎖一起
// 保證不會有兩次開獎同時成立；SetWinner 的條件式更新是第二道防線。
func (s *DrawServiceImpl) DrawWinner(ctx context.Context, raffleID int) (*model.Winner, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	raffle, err := s.raffleRepo.FindByIDWithLock(ctx, tx, raffleID)
	if err != nil {
		return nil, err
	}

	if raffle.Status == model.RaffleStatusDrawn || raffle.HasWinner() {
		return nil, apperrors.ErrAlreadyDrawn
	}
	if !raffle.Status.IsDrawable() {
		return nil, apperrors.ErrRaffleClosed
	}

	completed, err := s.ticketRepo.ListCompleted(ctx, tx, raffleID)
	if err != nil {
		return nil, err
	}
	if len(completed) == 0 {
		return nil, apperrors.ErrEmptyPool
	}

	winnerTicket := PickWinner(completed)
	drawnAt := time.Now().UTC()

	err = s.raffleRepo.SetWinner(ctx, tx, raffleID, winnerTicket.Number, winnerTicket.UserID, drawnAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &model.Winner{
		TicketNumber: winnerTicket.Number,
		UserID:       winnerTicket.UserID,
		DrawnAt:      drawnAt,
		Claimed:      false,
	}, nil
}

func (s *DrawServiceImpl) ClaimPrize(ctx context.Context, raffleID int) (*model.Raffle, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	raffle, err := s.raffleRepo.FindByIDWithLock(ctx, tx, raffleID)
	if err != nil {
		return nil, err
	}

	if !raffle.HasWinner() {
		return nil, apperrors.ErrTicketNotFound
	}

	err = s.raffleRepo.ClaimWinner(ctx, tx, raffleID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.raffleRepo.FindByID(ctx, raffleID)
}
