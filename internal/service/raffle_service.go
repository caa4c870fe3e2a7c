package service

import (
	"context"
	"time"

	"raffle-service/internal/cache"
	"raffle-service/internal/model"
	"raffle-service/internal/repository"
	apperrors "raffle-service/pkg/app_errors"
	"raffle-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RaffleService interface {
	Create(ctx context.Context, req model.CreateRaffleRequest) (*model.Raffle, error)
	List(ctx context.Context) ([]*model.Raffle, error)
	ListByChurchID(ctx context.Context, churchID int) ([]*model.Raffle, error)
	GetByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error)
	Update(ctx context.Context, id int, params model.UpdateRaffleParams) (*model.Raffle, error)
	// 開賣：draft -> active 並預熱購票閘門
	OpenForSale(ctx context.Context, id int) (*model.Raffle, error)
	// 取消：開獎後不可取消
	Cancel(ctx context.Context, id int) (*model.Raffle, error)
	// 瀏覽/分享計數，best-effort
	RecordView(ctx context.Context, id int) error
	RecordShare(ctx context.Context, id int) error
}

type RaffleServiceImpl struct {
	raffleRepo repository.RaffleRepository
	ticketRepo repository.TicketRepository
	gate       cache.RafflePurchaseGate
}

func NewRaffleService(
	raffleRepo repository.RaffleRepository,
	ticketRepo repository.TicketRepository,
	gate cache.RafflePurchaseGate,
) RaffleService {
	return &RaffleServiceImpl{
		raffleRepo: raffleRepo,
		ticketRepo: ticketRepo,
		gate:       gate,
	}
}

func (s *RaffleServiceImpl) Create(ctx context.Context, req model.CreateRaffleRequest) (*model.Raffle, error) {
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	if !endsAt.After(startsAt) {
		return nil, apperrors.ErrInvalidInput
	}
	if req.TicketPrice < 0.01 || req.TotalTickets < 1 {
		return nil, apperrors.ErrInvalidInput
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	raffle := &model.Raffle{
		RaffleID:         uuid.New(),
		ChurchID:         req.ChurchID,
		Title:            req.Title,
		Description:      req.Description,
		PrizeDescription: req.PrizeDescription,
		PrizeImage:       req.PrizeImage,
		PrizeValue:       req.PrizeValue,
		TicketPrice:      req.TicketPrice,
		TotalTickets:     req.TotalTickets,
		MaxPerUser:       req.MaxPerUser,
		IsPublic:         isPublic,
		RequiresApproval: req.RequiresApproval,
		Status:           model.RaffleStatusDraft,
		StartsAt:         startsAt,
		EndsAt:           endsAt,
	}

	return s.raffleRepo.Create(ctx, raffle)
}

func (s *RaffleServiceImpl) List(ctx context.Context) ([]*model.Raffle, error) {
	return s.raffleRepo.List(ctx)
}

func (s *RaffleServiceImpl) ListByChurchID(ctx context.Context, churchID int) ([]*model.Raffle, error) {
	return s.raffleRepo.ListByChurchID(ctx, churchID)
}

func (s *RaffleServiceImpl) GetByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error) {
	return s.raffleRepo.FindByRaffleID(ctx, raffleID)
}

func (s *RaffleServiceImpl) Update(ctx context.Context, id int, params model.UpdateRaffleParams) (*model.Raffle, error) {
	return s.raffleRepo.Update(ctx, id, params)
}

func (s *RaffleServiceImpl) OpenForSale(ctx context.Context, id int) (*model.Raffle, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !raffle.Status.CanTransitionTo(model.RaffleStatusActive) {
		return nil, apperrors.ErrInvalidStatusTransition
	}

	updated, err := s.raffleRepo.UpdateStatus(ctx, id, model.RaffleStatusActive)
	if err != nil {
		return nil, err
	}

	// 預熱閘門：剩餘名額 = 總票數 - 已佔用號碼數
	ledger, err := s.ticketRepo.ListByRaffleID(ctx, id)
	if err != nil {
		return nil, err
	}
	remaining := len(AvailableNumbers(updated.TotalTickets, ledger))

	if err := s.gate.WarmUp(ctx, id, remaining, updated.MaxPerUser); err != nil {
		// 閘門預熱失敗不擋開賣，購票會退回資料庫路徑
		logger.WithComponent("service").Warn("gate warm up failed", zap.Int("raffle_id", id), zap.Error(err))
	}

	return updated, nil
}

func (s *RaffleServiceImpl) Cancel(ctx context.Context, id int) (*model.Raffle, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if raffle.Status == model.RaffleStatusDrawn {
		return nil, apperrors.ErrAlreadyDrawn
	}
	if !raffle.Status.CanTransitionTo(model.RaffleStatusCancelled) {
		return nil, apperrors.ErrInvalidStatusTransition
	}

	updated, err := s.raffleRepo.UpdateStatus(ctx, id, model.RaffleStatusCancelled)
	if err != nil {
		return nil, err
	}

	if err := s.gate.Evict(ctx, id); err != nil {
		logger.WithComponent("service").Warn("gate evict failed", zap.Int("raffle_id", id), zap.Error(err))
	}

	return updated, nil
}

func (s *RaffleServiceImpl) RecordView(ctx context.Context, id int) error {
	return s.raffleRepo.AddViews(ctx, id, 1)
}

func (s *RaffleServiceImpl) RecordShare(ctx context.Context, id int) error {
	return s.raffleRepo.AddShares(ctx, id, 1)
}
