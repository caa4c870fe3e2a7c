package mocks

import (
	"context"

	"raffle-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type DrawServiceMock struct {
	mock.Mock
}

func NewDrawServiceMock() *DrawServiceMock {
	return &DrawServiceMock{}
}

func (m *DrawServiceMock) DrawWinner(ctx context.Context, raffleID int) (*model.Winner, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Winner), args.Error(1)
}

func (m *DrawServiceMock) ClaimPrize(ctx context.Context, raffleID int) (*model.Raffle, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}
