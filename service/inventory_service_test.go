package service

import (
	"context"
	"testing"
	"time"

	"prepaidhaven/events"
	"prepaidhaven/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newInventoryMocks() (*MockUnitOfWorkFactory, *MockUnitOfWork, *MockCardRepository, *MockEventPublisher) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCardRepo := new(MockCardRepository)
	mockPublisher := new(MockEventPublisher)

	mockUoW.SetRepositories(new(MockUserRepository), mockCardRepo, new(MockPurchaseRepository), mockPublisher)
	mockFactory.On("Create").Return(mockUoW)

	return mockFactory, mockUoW, mockCardRepo, mockPublisher
}

func TestAddCard_Success(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockCardRepo, mockPublisher := newInventoryMocks()

	svc := NewInventoryService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCardRepo.On("Create", ctx, mock.MatchedBy(func(c *models.Card) bool {
		return c.Name == "Visa" && c.BIN == "411111" &&
			c.Balance.Equal(decimal.NewFromInt(50)) && c.Price.Equal(decimal.NewFromInt(10))
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Card).ID = 1
	})

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		added, ok := e.(events.CardAddedEvent)
		return ok && added.CardID == 1 && added.Name == "Visa"
	})).Return()

	card, err := svc.AddCard(ctx, "Visa", "411111", decimal.NewFromInt(50), decimal.NewFromInt(10))

	require.NoError(t, err)
	assert.Equal(t, int64(1), card.ID)
	assert.Nil(t, card.LockedUntil)
	mockCardRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestAddCard_TrimsNameAndBIN(t *testing.T) {
	ctx := context.Background()
	mockFactory, mockUoW, mockCardRepo, mockPublisher := newInventoryMocks()

	svc := NewInventoryService(mockFactory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCardRepo.On("Create", ctx, mock.MatchedBy(func(c *models.Card) bool {
		return c.Name == "Visa" && c.BIN == "411111"
	})).Return(nil)
	mockPublisher.On("Publish", mock.Anything).Return()

	_, err := svc.AddCard(ctx, "  Visa ", " 411111 ", decimal.NewFromInt(50), decimal.NewFromInt(10))
	require.NoError(t, err)
}

func TestAddCard_Validation(t *testing.T) {
	ctx := context.Background()
	mockFactory, _, mockCardRepo, _ := newInventoryMocks()

	svc := NewInventoryService(mockFactory)

	tests := []struct {
		name    string
		cardN   string
		bin     string
		balance decimal.Decimal
		price   decimal.Decimal
	}{
		{"empty name", "", "411111", decimal.NewFromInt(50), decimal.NewFromInt(10)},
		{"blank name", "   ", "411111", decimal.NewFromInt(50), decimal.NewFromInt(10)},
		{"empty bin", "Visa", "", decimal.NewFromInt(50), decimal.NewFromInt(10)},
		{"negative balance", "Visa", "411111", decimal.NewFromInt(-1), decimal.NewFromInt(10)},
		{"negative price", "Visa", "411111", decimal.NewFromInt(50), decimal.NewFromInt(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddCard(ctx, tt.cardN, tt.bin, tt.balance, tt.price)
			require.Error(t, err)
		})
	}

	mockCardRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRemainingLock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("locked card", func(t *testing.T) {
		mockFactory, mockUoW, mockCardRepo, _ := newInventoryMocks()
		svc := NewInventoryService(mockFactory)

		until := now.Add(10 * time.Minute)
		card := &models.Card{ID: 3, LockedUntil: &until}

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Commit").Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockCardRepo.On("GetByID", ctx, int64(3)).Return(card, nil)

		remaining, locked, err := svc.RemainingLock(ctx, 3, now)
		require.NoError(t, err)
		assert.True(t, locked)
		assert.Equal(t, 10*time.Minute, remaining)
	})

	t.Run("unknown card", func(t *testing.T) {
		mockFactory, mockUoW, mockCardRepo, _ := newInventoryMocks()
		svc := NewInventoryService(mockFactory)

		mockUoW.On("Begin", ctx).Return(nil)
		mockUoW.On("Rollback").Return(nil)
		mockCardRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

		_, _, err := svc.RemainingLock(ctx, 99, now)
		require.Error(t, err)
	})
}

func TestListAvailable_PassesThrough(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()
	mockFactory, mockUoW, mockCardRepo, _ := newInventoryMocks()

	svc := NewInventoryService(mockFactory)

	expected := []*models.Card{{ID: 1, Name: "Visa"}}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockCardRepo.On("ListAvailable", ctx, now).Return(expected, nil)

	cards, err := svc.ListAvailable(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, expected, cards)
}
