package wsbridge

import (
	"context"
	"encoding/json"
	"testing"

	"steward/models"
	"steward/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockLinkService is a mock implementation of service.LinkService
type mockLinkService struct {
	mock.Mock
}

func (m *mockLinkService) RequestLink(ctx context.Context, discordID string) (*models.LinkTicket, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LinkTicket), args.Error(1)
}

func (m *mockLinkService) Claim(ctx context.Context, steamID, code string) (*models.MergeResult, error) {
	args := m.Called(ctx, steamID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MergeResult), args.Error(1)
}

// mockUserService is a mock implementation of service.UserService
type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Register(ctx context.Context, discordID, username string) (*models.User, error) {
	args := m.Called(ctx, discordID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetOrCreateSteamUser(ctx context.Context, steamID, username string) (*models.User, error) {
	args := m.Called(ctx, steamID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) Profile(ctx context.Context, discordID string) (*models.Profile, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockUserService) ProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockUserService) Leaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserService) Delete(ctx context.Context, discordID string) error {
	args := m.Called(ctx, discordID)
	return args.Error(0)
}

func (m *mockUserService) TouchActivity(ctx context.Context, discordID string) error {
	args := m.Called(ctx, discordID)
	return args.Error(0)
}

// mockLevelingService is a mock implementation of service.LevelingService
type mockLevelingService struct {
	mock.Mock
}

func (m *mockLevelingService) GrantXP(ctx context.Context, userID int64, baseXP int, roleIDs []string) (*models.XPGrant, error) {
	args := m.Called(ctx, userID, baseXP, roleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.XPGrant), args.Error(1)
}

func setupHandler() (*Handler, *mockLinkService, *mockUserService, *mockLevelingService) {
	linkSvc := new(mockLinkService)
	userSvc := new(mockUserService)
	levelingSvc := new(mockLevelingService)
	return NewHandler(linkSvc, userSvc, levelingSvc), linkSvc, userSvc, levelingSvc
}

func TestHandler_LinkCode(t *testing.T) {
	ctx := context.Background()

	t.Run("successful claim", func(t *testing.T) {
		handler, linkSvc, _, _ := setupHandler()

		result := &models.MergeResult{MergedBalance: 100, MergedLevel: 8}
		linkSvc.On("Claim", ctx, "7656-1", "AbCdEfGh12").Return(result, nil)

		resp := handler.Handle(ctx, &Envelope{
			Type:          "linkCode_steam",
			Content:       "7656-1 AbCdEfGh12",
			CorrelationID: "corr-1",
		})

		require.NotNil(t, resp)
		assert.Equal(t, "linkCode_steam_response", resp.Type)
		assert.Equal(t, "corr-1", resp.CorrelationID)
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Error)
	})

	t.Run("invalid code is a generic failure", func(t *testing.T) {
		handler, linkSvc, _, _ := setupHandler()

		linkSvc.On("Claim", ctx, "7656-1", "stale").Return(nil, service.ErrInvalidCode)

		resp := handler.Handle(ctx, &Envelope{
			Type:          "linkCode_steam",
			Content:       "7656-1 stale",
			CorrelationID: "corr-2",
		})

		require.NotNil(t, resp)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid or expired code", resp.Error)
	})

	t.Run("ambiguity is not leaked over the wire", func(t *testing.T) {
		handler, linkSvc, _, _ := setupHandler()

		linkSvc.On("Claim", ctx, "7656-1", "somecode99").Return(nil, service.ErrAmbiguousMergeSet)

		resp := handler.Handle(ctx, &Envelope{
			Type:          "linkCode_steam",
			Content:       "7656-1 somecode99",
			CorrelationID: "corr-3",
		})

		require.NotNil(t, resp)
		assert.False(t, resp.Success)
		assert.Equal(t, "Invalid or expired code", resp.Error)
	})

	t.Run("malformed content", func(t *testing.T) {
		handler, linkSvc, _, _ := setupHandler()

		resp := handler.Handle(ctx, &Envelope{
			Type:          "linkCode_steam",
			Content:       "just-one-field",
			CorrelationID: "corr-4",
		})

		require.NotNil(t, resp)
		assert.False(t, resp.Success)
		linkSvc.AssertNotCalled(t, "Claim", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_GetUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns serialized user", func(t *testing.T) {
		handler, _, userSvc, _ := setupHandler()

		user := &models.User{ID: 7, Username: "Display Name", Balance: 50, XP: 30, Level: 4}
		userSvc.On("GetOrCreateSteamUser", ctx, "7656-1", "Display Name").Return(user, nil)

		resp := handler.Handle(ctx, &Envelope{
			Type:          "getUser_steam",
			Content:       "7656-1 Display Name",
			CorrelationID: "corr-1",
		})

		require.NotNil(t, resp)
		assert.True(t, resp.Success)

		var payload userPayload
		require.NoError(t, json.Unmarshal([]byte(resp.Content), &payload))
		assert.Equal(t, int64(7), payload.ID)
		assert.Equal(t, "Display Name", payload.Username)
		assert.Equal(t, 4, payload.Level)
	})

	t.Run("missing display name", func(t *testing.T) {
		handler, _, userSvc, _ := setupHandler()

		resp := handler.Handle(ctx, &Envelope{
			Type:          "getUser_steam",
			Content:       "7656-1",
			CorrelationID: "corr-2",
		})

		require.NotNil(t, resp)
		assert.False(t, resp.Success)
		userSvc.AssertNotCalled(t, "GetOrCreateSteamUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_GiveXP(t *testing.T) {
	ctx := context.Background()

	t.Run("grants xp", func(t *testing.T) {
		handler, _, _, levelingSvc := setupHandler()

		grant := &models.XPGrant{UserID: 7, AppliedXP: 50, NewLevel: 3, NewXP: 10}
		levelingSvc.On("GrantXP", ctx, int64(7), 50, []string(nil)).Return(grant, nil)

		resp := handler.Handle(ctx, &Envelope{
			Type:          "giveXP",
			Content:       "7 50",
			CorrelationID: "corr-1",
		})

		require.NotNil(t, resp)
		assert.Equal(t, "giveXP_response", resp.Type)
		assert.True(t, resp.Success)
	})

	t.Run("unknown user", func(t *testing.T) {
		handler, _, _, levelingSvc := setupHandler()

		levelingSvc.On("GrantXP", ctx, int64(404), 10, []string(nil)).Return(nil, service.ErrUserNotFound)

		resp := handler.Handle(ctx, &Envelope{
			Type:          "giveXP",
			Content:       "404 10",
			CorrelationID: "corr-2",
		})

		require.NotNil(t, resp)
		assert.False(t, resp.Success)
		assert.Equal(t, "User not found", resp.Error)
	})

	t.Run("bad amount", func(t *testing.T) {
		handler, _, _, levelingSvc := setupHandler()

		resp := handler.Handle(ctx, &Envelope{
			Type:          "giveXP",
			Content:       "7 -3",
			CorrelationID: "corr-3",
		})

		require.NotNil(t, resp)
		assert.False(t, resp.Success)
		levelingSvc.AssertNotCalled(t, "GrantXP", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_UnknownType(t *testing.T) {
	handler, _, _, _ := setupHandler()

	resp := handler.Handle(context.Background(), &Envelope{
		Type:          "selfDestruct",
		CorrelationID: "corr-1",
	})

	require.NotNil(t, resp)
	assert.Equal(t, "error", resp.Type)
	assert.False(t, resp.Success)
	assert.Equal(t, "Unknown message type: selfDestruct", resp.Error)
}

func TestHandler_NoCorrelationIDNoResponse(t *testing.T) {
	ctx := context.Background()
	handler, _, _, levelingSvc := setupHandler()

	grant := &models.XPGrant{UserID: 7, AppliedXP: 50, NewLevel: 3}
	levelingSvc.On("GrantXP", ctx, int64(7), 50, []string(nil)).Return(grant, nil)

	// The work still happens; only the response is suppressed
	resp := handler.Handle(ctx, &Envelope{Type: "giveXP", Content: "7 50"})
	assert.Nil(t, resp)
	levelingSvc.AssertExpectations(t)
}
