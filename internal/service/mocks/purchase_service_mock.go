package mocks

import (
	"context"

	"raffle-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type PurchaseServiceMock struct {
	mock.Mock
}

func NewPurchaseServiceMock() *PurchaseServiceMock {
	return &PurchaseServiceMock{}
}

func (m *PurchaseServiceMock) AvailableNumbers(ctx context.Context, raffleID int) ([]int, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *PurchaseServiceMock) CheckNumber(ctx context.Context, raffleID int, number int) (bool, error) {
	args := m.Called(ctx, raffleID, number)
	return args.Bool(0), args.Error(1)
}

func (m *PurchaseServiceMock) ListTickets(ctx context.Context, raffleID int) ([]*model.Ticket, error) {
	args := m.Called(ctx, raffleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *PurchaseServiceMock) PurchaseTicket(ctx context.Context, raffleID int, req model.PurchaseTicketRequest) (*model.Ticket, error) {
	args := m.Called(ctx, raffleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *PurchaseServiceMock) MarkPaymentStatus(ctx context.Context, raffleID int, req model.MarkPaymentRequest) (*model.Raffle, error) {
	args := m.Called(ctx, raffleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Raffle), args.Error(1)
}
