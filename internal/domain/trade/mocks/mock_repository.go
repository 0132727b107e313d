package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/barterhub/barterhub/internal/domain/trade"
)

// MockOfferRepository is a mock implementation of trade.OfferRepository
type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) Create(ctx context.Context, offer *trade.Offer, items []*trade.OfferItem) error {
	args := m.Called(ctx, offer, items)
	return args.Error(0)
}

func (m *MockOfferRepository) GetByID(ctx context.Context, offerID uuid.UUID) (*trade.Offer, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Offer), args.Error(1)
}

func (m *MockOfferRepository) ListByParticipant(ctx context.Context, userID uuid.UUID, filter trade.ListFilter) ([]*trade.Offer, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*trade.Offer), args.Error(1)
}

func (m *MockOfferRepository) ListItems(ctx context.Context, offerID uuid.UUID) ([]*trade.OfferItem, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*trade.OfferItem), args.Error(1)
}

func (m *MockOfferRepository) ListCounters(ctx context.Context, parentOfferID uuid.UUID) ([]*trade.Offer, error) {
	args := m.Called(ctx, parentOfferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*trade.Offer), args.Error(1)
}

func (m *MockOfferRepository) ApplyTransition(ctx context.Context, t trade.Transition) (*trade.Offer, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Offer), args.Error(1)
}

// MockHistoryRepository is a mock implementation of trade.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) ListFor(ctx context.Context, offerID uuid.UUID) ([]*trade.HistoryEntry, error) {
	args := m.Called(ctx, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*trade.HistoryEntry), args.Error(1)
}

// MockStatusRepository is a mock implementation of trade.StatusRepository
type MockStatusRepository struct {
	mock.Mock
}

func (m *MockStatusRepository) ListActive(ctx context.Context) ([]*trade.StatusInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*trade.StatusInfo), args.Error(1)
}
