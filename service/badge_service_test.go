package service

import (
	"context"
	"testing"

	"steward/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupBadgeMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockUserRepository, *MockBadgeRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBadgeRepo := new(MockBadgeRepository)

	mockUoW.SetRepositories(mockUserRepo, new(MockAccountRepository), mockBadgeRepo, new(MockLedgerRepository))
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockUoW, mockFactory, mockUserRepo, mockBadgeRepo
}

func TestBadgeService_CreateBadge(t *testing.T) {
	ctx := context.Background()

	t.Run("creates new badge", func(t *testing.T) {
		mockUoW, mockFactory, _, mockBadgeRepo := setupBadgeMocks()
		mockUoW.On("Commit").Return(nil)

		mockBadgeRepo.On("GetByName", ctx, "veteran").Return(nil, nil)
		mockBadgeRepo.On("Create", ctx, mock.MatchedBy(func(b *models.Badge) bool {
			return b.Name == "veteran" && b.Description == "One year of service"
		})).Return(nil)

		service := NewBadgeService(mockFactory)

		badge, err := service.CreateBadge(ctx, "veteran", "One year of service")
		require.NoError(t, err)
		assert.Equal(t, "veteran", badge.Name)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, mockFactory, _, mockBadgeRepo := setupBadgeMocks()

		mockBadgeRepo.On("GetByName", ctx, "veteran").Return(&models.Badge{ID: 1, Name: "veteran"}, nil)

		service := NewBadgeService(mockFactory)

		_, err := service.CreateBadge(ctx, "veteran", "again")
		assert.ErrorIs(t, err, ErrBadgeExists)
	})
}

func TestBadgeService_DeleteBadge(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing badge", func(t *testing.T) {
		mockUoW, mockFactory, _, mockBadgeRepo := setupBadgeMocks()
		mockUoW.On("Commit").Return(nil)

		mockBadgeRepo.On("GetByName", ctx, "old").Return(&models.Badge{ID: 3, Name: "old"}, nil)
		mockBadgeRepo.On("Delete", ctx, int64(3)).Return(nil)

		service := NewBadgeService(mockFactory)

		assert.NoError(t, service.DeleteBadge(ctx, "old"))
		mockBadgeRepo.AssertExpectations(t)
	})

	t.Run("unknown badge", func(t *testing.T) {
		_, mockFactory, _, mockBadgeRepo := setupBadgeMocks()

		mockBadgeRepo.On("GetByName", ctx, "missing").Return(nil, nil)

		service := NewBadgeService(mockFactory)

		assert.ErrorIs(t, service.DeleteBadge(ctx, "missing"), ErrBadgeNotFound)
	})
}

func TestBadgeService_EditBadge(t *testing.T) {
	ctx := context.Background()

	t.Run("rename and redescribe", func(t *testing.T) {
		mockUoW, mockFactory, _, mockBadgeRepo := setupBadgeMocks()
		mockUoW.On("Commit").Return(nil)

		mockBadgeRepo.On("GetByName", ctx, "helper").Return(&models.Badge{ID: 2, Name: "helper", Description: "old"}, nil)
		mockBadgeRepo.On("GetByName", ctx, "mentor").Return(nil, nil)
		mockBadgeRepo.On("Update", ctx, mock.MatchedBy(func(b *models.Badge) bool {
			return b.ID == 2 && b.Name == "mentor" && b.Description == "Guides newcomers"
		})).Return(nil)

		service := NewBadgeService(mockFactory)

		newName := "mentor"
		newDesc := "Guides newcomers"
		badge, err := service.EditBadge(ctx, "helper", &newName, &newDesc)
		require.NoError(t, err)
		assert.Equal(t, "mentor", badge.Name)
	})

	t.Run("new name taken", func(t *testing.T) {
		_, mockFactory, _, mockBadgeRepo := setupBadgeMocks()

		mockBadgeRepo.On("GetByName", ctx, "helper").Return(&models.Badge{ID: 2, Name: "helper"}, nil)
		mockBadgeRepo.On("GetByName", ctx, "veteran").Return(&models.Badge{ID: 9, Name: "veteran"}, nil)

		service := NewBadgeService(mockFactory)

		newName := "veteran"
		_, err := service.EditBadge(ctx, "helper", &newName, nil)
		assert.ErrorIs(t, err, ErrBadgeExists)
	})

	t.Run("nothing to edit", func(t *testing.T) {
		service := NewBadgeService(new(MockUnitOfWorkFactory))

		_, err := service.EditBadge(ctx, "helper", nil, nil)
		assert.Error(t, err)
	})
}

func TestBadgeService_AwardBadge(t *testing.T) {
	ctx := context.Background()

	t.Run("awards to registered user", func(t *testing.T) {
		mockUoW, mockFactory, mockUserRepo, mockBadgeRepo := setupBadgeMocks()
		mockUoW.On("Commit").Return(nil)

		mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformDiscord, "disc-1").Return(&models.User{ID: 1}, nil)
		mockBadgeRepo.On("GetByName", ctx, "veteran").Return(&models.Badge{ID: 5, Name: "veteran"}, nil)
		mockBadgeRepo.On("Award", ctx, int64(1), int64(5)).Return(true, nil)

		service := NewBadgeService(mockFactory)

		awarded, err := service.AwardBadge(ctx, "disc-1", "veteran")
		require.NoError(t, err)
		assert.True(t, awarded)
	})

	t.Run("already held", func(t *testing.T) {
		mockUoW, mockFactory, mockUserRepo, mockBadgeRepo := setupBadgeMocks()
		mockUoW.On("Commit").Return(nil)

		mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformDiscord, "disc-1").Return(&models.User{ID: 1}, nil)
		mockBadgeRepo.On("GetByName", ctx, "veteran").Return(&models.Badge{ID: 5, Name: "veteran"}, nil)
		mockBadgeRepo.On("Award", ctx, int64(1), int64(5)).Return(false, nil)

		service := NewBadgeService(mockFactory)

		awarded, err := service.AwardBadge(ctx, "disc-1", "veteran")
		require.NoError(t, err)
		assert.False(t, awarded)
	})

	t.Run("unregistered target", func(t *testing.T) {
		_, mockFactory, mockUserRepo, _ := setupBadgeMocks()

		mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformDiscord, "ghost").Return(nil, nil)

		service := NewBadgeService(mockFactory)

		_, err := service.AwardBadge(ctx, "ghost", "veteran")
		assert.ErrorIs(t, err, ErrNotRegistered)
	})

	t.Run("unknown badge", func(t *testing.T) {
		_, mockFactory, mockUserRepo, mockBadgeRepo := setupBadgeMocks()

		mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformDiscord, "disc-1").Return(&models.User{ID: 1}, nil)
		mockBadgeRepo.On("GetByName", ctx, "missing").Return(nil, nil)

		service := NewBadgeService(mockFactory)

		_, err := service.AwardBadge(ctx, "disc-1", "missing")
		assert.ErrorIs(t, err, ErrBadgeNotFound)
	})
}

func TestBadgeService_RevokeBadgeFromAll(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, _, mockBadgeRepo := setupBadgeMocks()
	mockUoW.On("Commit").Return(nil)

	mockBadgeRepo.On("GetByName", ctx, "event").Return(&models.Badge{ID: 7, Name: "event"}, nil)
	mockBadgeRepo.On("RevokeAll", ctx, int64(7)).Return(12, nil)

	service := NewBadgeService(mockFactory)

	count, err := service.RevokeBadgeFromAll(ctx, "event")
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}
