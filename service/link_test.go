package service

import (
	"context"
	"testing"
	"time"

	"steward/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupLinkMocks() (*LinkCodeRegistry, *MockUnitOfWorkFactory, *MockUserRepository, *MockMergeService, *MockNotifier) {
	registry := NewLinkCodeRegistry(5 * time.Minute)

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockMerger := new(MockMergeService)
	mockNotifier := new(MockNotifier)

	mockUoW.SetRepositories(mockUserRepo, new(MockAccountRepository), new(MockBadgeRepository), new(MockLedgerRepository))
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return registry, mockFactory, mockUserRepo, mockMerger, mockNotifier
}

func TestLinkService_RequestLink(t *testing.T) {
	ctx := context.Background()
	registry, mockFactory, mockUserRepo, mockMerger, mockNotifier := setupLinkMocks()

	mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformDiscord, "disc-1").
		Return(&models.User{ID: 1, Username: "alice"}, nil)

	service := NewLinkService(registry, mockFactory, mockMerger, mockNotifier)

	ticket, err := service.RequestLink(ctx, "disc-1")
	require.NoError(t, err)
	assert.Len(t, ticket.Code, 10)
	assert.True(t, ticket.ExpiresAt.After(time.Now()))

	t.Run("second request while pending", func(t *testing.T) {
		_, err := service.RequestLink(ctx, "disc-1")
		assert.ErrorIs(t, err, ErrAlreadyPending)
	})
}

func TestLinkService_RequestLink_Unregistered(t *testing.T) {
	ctx := context.Background()
	registry, mockFactory, mockUserRepo, mockMerger, mockNotifier := setupLinkMocks()

	mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformDiscord, "ghost").Return(nil, nil)

	service := NewLinkService(registry, mockFactory, mockMerger, mockNotifier)

	_, err := service.RequestLink(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotRegistered)

	// No code was issued for the failed request
	_, _, issueErr := registry.Issue("ghost")
	assert.NoError(t, issueErr)
}

func TestLinkService_Claim(t *testing.T) {
	ctx := context.Background()
	registry, mockFactory, mockUserRepo, mockMerger, mockNotifier := setupLinkMocks()

	steamUser := &models.User{ID: 10, Username: "steam-side"}
	discordUser := &models.User{ID: 20, Username: "alice"}

	mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformSteam, "7656-1").Return(steamUser, nil)
	mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformDiscord, "disc-1").Return(discordUser, nil)

	mergeResult := &models.MergeResult{
		SourceUserID:  10,
		TargetUserID:  20,
		MergedBalance: 150,
		MergedLevel:   7,
	}
	// Steam-origin user folds into the Discord-origin user, not the
	// other way around
	mockMerger.On("Merge", ctx, int64(10), int64(20)).Return(mergeResult, nil)
	mockNotifier.On("NotifyLinkSuccess", "disc-1", mergeResult).Return()

	service := NewLinkService(registry, mockFactory, mockMerger, mockNotifier)

	code, _, err := registry.Issue("disc-1")
	require.NoError(t, err)

	result, err := service.Claim(ctx, "7656-1", code)
	require.NoError(t, err)
	assert.Equal(t, mergeResult, result)

	mockMerger.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)

	t.Run("replayed code fails", func(t *testing.T) {
		_, err := service.Claim(ctx, "7656-1", code)
		assert.ErrorIs(t, err, ErrInvalidCode)
	})
}

func TestLinkService_Claim_UnknownCode(t *testing.T) {
	registry, mockFactory, _, mockMerger, mockNotifier := setupLinkMocks()

	service := NewLinkService(registry, mockFactory, mockMerger, mockNotifier)

	_, err := service.Claim(context.Background(), "7656-1", "nonsense")
	assert.ErrorIs(t, err, ErrInvalidCode)
	mockMerger.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything)
}

func TestLinkService_Claim_AmbiguousMergeSet(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		steamUser   *models.User
		discordUser *models.User
	}{
		{
			name:        "steam identity unknown",
			steamUser:   nil,
			discordUser: &models.User{ID: 20},
		},
		{
			name:        "discord owner vanished",
			steamUser:   &models.User{ID: 10},
			discordUser: nil,
		},
		{
			name:        "already the same user",
			steamUser:   &models.User{ID: 20},
			discordUser: &models.User{ID: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, mockFactory, mockUserRepo, mockMerger, mockNotifier := setupLinkMocks()

			mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformSteam, "7656-1").Return(tt.steamUser, nil)
			mockUserRepo.On("GetByPlatformAccount", ctx, models.PlatformDiscord, "disc-1").Return(tt.discordUser, nil)

			service := NewLinkService(registry, mockFactory, mockMerger, mockNotifier)

			code, _, err := registry.Issue("disc-1")
			require.NoError(t, err)

			_, err = service.Claim(ctx, "7656-1", code)
			assert.ErrorIs(t, err, ErrAmbiguousMergeSet)
			mockMerger.AssertNotCalled(t, "Merge", mock.Anything, mock.Anything, mock.Anything)
			mockNotifier.AssertNotCalled(t, "NotifyLinkSuccess", mock.Anything, mock.Anything)

			// The code was still consumed; a retry needs a fresh one
			_, err = service.Claim(ctx, "7656-1", code)
			assert.ErrorIs(t, err, ErrInvalidCode)
		})
	}
}
