package mocks

import (
	"context"

	"raffle-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type RaffleServiceMock struct {
	mock.Mock
}

func NewRaffleServiceMock() *RaffleServiceMock {
	return &RaffleServiceMock{}
}

func (m *RaffleServiceMock) Create(ctx context.Context, req model.CreateRaffleRequest) (*model.Raffle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *RaffleServiceMock) List(ctx context.Context) ([]*model.Raffle, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Raffle), args.Error(1)
}

func (m *RaffleServiceMock) ListByChurchID(ctx context.Context, churchID int) ([]*model.Raffle, error) {
	args := m.Called(ctx, churchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Raffle), args.Error(1)
}

func (m *RaffleServiceMock) GetByRaffleID(ctx context.Context, raffleID uuid.UUID) (*model.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *RaffleServiceMock) Update(ctx context.Context, id int, params model.UpdateRaffleParams) (*model.Raffle, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *RaffleServiceMock) OpenForSale(ctx context.Context, id int) (*model.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *RaffleServiceMock) Cancel(ctx context.Context, id int) (*model.Raffle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}

func (m *RaffleServiceMock) RecordView(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RaffleServiceMock) RecordShare(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
