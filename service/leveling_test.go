package service

import (
	"context"
	"testing"

	"steward/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func levelingTestConfig() LevelingConfig {
	return LevelingConfig{
		XPPerMessage: 1,
		MaxLevel:     50,
		LevelUpBonus: 25,
		RoleMultipliers: map[string]float64{
			"booster": 1.5,
			"veteran": 2.0,
		},
	}
}

func setupLevelingMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockUserRepository, *MockLedgerRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockLedgerRepo := new(MockLedgerRepository)

	mockUoW.SetRepositories(mockUserRepo, new(MockAccountRepository), new(MockBadgeRepository), mockLedgerRepo)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", mock.Anything).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	return mockUoW, mockFactory, mockUserRepo, mockLedgerRepo
}

func TestLevelingService_GrantXP_NoLevelUp(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, _ := setupLevelingMocks()
	mockUoW.On("Commit").Return(nil)

	user := &models.User{ID: 1, Username: "alice", XP: 40, Level: 3}
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(user, nil)
	mockUserRepo.On("UpdateProgress", ctx, int64(1), 50, 3).Return(nil)
	mockUserRepo.On("TouchActive", ctx, int64(1)).Return(nil)

	service := NewLevelingService(mockFactory, levelingTestConfig())

	grant, err := service.GrantXP(ctx, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, grant.AppliedXP)
	assert.Equal(t, 1.0, grant.Multiplier)
	assert.Equal(t, 0, grant.LevelsGained)
	assert.False(t, grant.LeveledUp())
	assert.Equal(t, 3, grant.NewLevel)
	assert.Equal(t, 50, grant.NewXP)
	assert.Equal(t, int64(0), grant.BonusPaid)

	mockUserRepo.AssertExpectations(t)
}

func TestLevelingService_GrantXP_ExactThreshold(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, mockLedgerRepo := setupLevelingMocks()
	mockUoW.On("Commit").Return(nil)

	// Level 2 needs 200 xp; 190 held plus 10 granted lands exactly on the
	// threshold
	user := &models.User{ID: 1, Username: "alice", XP: 190, Level: 2, Balance: 100}
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(user, nil)
	mockUserRepo.On("UpdateProgress", ctx, int64(1), 0, 3).Return(nil)
	mockUserRepo.On("TouchActive", ctx, int64(1)).Return(nil)
	mockUserRepo.On("AddBalance", ctx, int64(1), int64(25)).Return(nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.Reason == models.LedgerReasonLevelUpBonus && e.Amount == 25 && e.BalanceAfter == 125
	})).Return(nil)

	service := NewLevelingService(mockFactory, levelingTestConfig())

	grant, err := service.GrantXP(ctx, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, grant.LevelsGained)
	assert.Equal(t, 3, grant.NewLevel)
	assert.Equal(t, 0, grant.NewXP)
	assert.Equal(t, int64(25), grant.BonusPaid)

	mockUserRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestLevelingService_GrantXP_MultiLevelRollover(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, mockLedgerRepo := setupLevelingMocks()
	mockUoW.On("Commit").Return(nil)

	// 100 xp passes level 1 (needs 100), then 200 more passes level 2
	// (needs 200), leaving 1 over
	user := &models.User{ID: 1, Username: "alice", XP: 0, Level: 1}
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(user, nil)
	mockUserRepo.On("UpdateProgress", ctx, int64(1), 1, 3).Return(nil)
	mockUserRepo.On("TouchActive", ctx, int64(1)).Return(nil)
	mockUserRepo.On("AddBalance", ctx, int64(1), int64(25)).Return(nil).Times(2)
	mockLedgerRepo.On("Record", ctx, mock.AnythingOfType("*models.LedgerEntry")).Return(nil).Times(2)

	service := NewLevelingService(mockFactory, levelingTestConfig())

	grant, err := service.GrantXP(ctx, 1, 301, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, grant.LevelsGained)
	assert.Equal(t, 3, grant.NewLevel)
	assert.Equal(t, 1, grant.NewXP)
	assert.Equal(t, int64(50), grant.BonusPaid)

	mockUserRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
}

func TestLevelingService_GrantXP_RoleMultiplier(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, _ := setupLevelingMocks()
	mockUoW.On("Commit").Return(nil)

	user := &models.User{ID: 1, Username: "alice", XP: 0, Level: 5}
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(user, nil)
	// Both multipliers match: the max (2.0) applies, not the sum
	mockUserRepo.On("UpdateProgress", ctx, int64(1), 20, 5).Return(nil)
	mockUserRepo.On("TouchActive", ctx, int64(1)).Return(nil)

	service := NewLevelingService(mockFactory, levelingTestConfig())

	grant, err := service.GrantXP(ctx, 1, 10, []string{"booster", "veteran", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, grant.Multiplier)
	assert.Equal(t, 20, grant.AppliedXP)

	mockUserRepo.AssertExpectations(t)
}

func TestLevelingService_GrantXP_MultiplierFloor(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, _ := setupLevelingMocks()
	mockUoW.On("Commit").Return(nil)

	cfg := levelingTestConfig()
	cfg.RoleMultipliers = map[string]float64{"cursed": 0.5}

	user := &models.User{ID: 1, Username: "alice", XP: 0, Level: 5}
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(user, nil)
	// A sub-1.0 multiplier never reduces the grant
	mockUserRepo.On("UpdateProgress", ctx, int64(1), 10, 5).Return(nil)
	mockUserRepo.On("TouchActive", ctx, int64(1)).Return(nil)

	service := NewLevelingService(mockFactory, cfg)

	grant, err := service.GrantXP(ctx, 1, 10, []string{"cursed"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, grant.Multiplier)
	assert.Equal(t, 10, grant.AppliedXP)
}

func TestLevelingService_GrantXP_MaxLevelRetainsXP(t *testing.T) {
	ctx := context.Background()
	mockUoW, mockFactory, mockUserRepo, _ := setupLevelingMocks()
	mockUoW.On("Commit").Return(nil)

	user := &models.User{ID: 1, Username: "alice", XP: 4990, Level: 50}
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(user, nil)
	// At the cap: xp keeps accumulating, level does not advance, no bonus
	mockUserRepo.On("UpdateProgress", ctx, int64(1), 5010, 50).Return(nil)
	mockUserRepo.On("TouchActive", ctx, int64(1)).Return(nil)

	service := NewLevelingService(mockFactory, levelingTestConfig())

	grant, err := service.GrantXP(ctx, 1, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, grant.LevelsGained)
	assert.Equal(t, 50, grant.NewLevel)
	assert.Equal(t, 5010, grant.NewXP)
	assert.Equal(t, int64(0), grant.BonusPaid)

	mockUserRepo.AssertExpectations(t)
}

func TestLevelingService_GrantXP_UserNotFound(t *testing.T) {
	ctx := context.Background()
	_, mockFactory, mockUserRepo, _ := setupLevelingMocks()

	mockUserRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	service := NewLevelingService(mockFactory, levelingTestConfig())

	_, err := service.GrantXP(ctx, 404, 10, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLevelingService_GrantXP_RejectsNonPositive(t *testing.T) {
	service := NewLevelingService(new(MockUnitOfWorkFactory), levelingTestConfig())

	_, err := service.GrantXP(context.Background(), 1, 0, nil)
	assert.Error(t, err)

	_, err = service.GrantXP(context.Background(), 1, -5, nil)
	assert.Error(t, err)
}

func TestAdvanceLevels(t *testing.T) {
	tests := []struct {
		name       string
		level      int
		xp         int
		grant      int
		wantLevel  int
		wantXP     int
		wantGained int
	}{
		{name: "no threshold crossed", level: 1, xp: 0, grant: 99, wantLevel: 1, wantXP: 99, wantGained: 0},
		{name: "exact threshold", level: 1, xp: 0, grant: 100, wantLevel: 2, wantXP: 0, wantGained: 1},
		{name: "rollover carries remainder", level: 1, xp: 50, grant: 75, wantLevel: 2, wantXP: 25, wantGained: 1},
		{name: "double level", level: 1, xp: 0, grant: 300, wantLevel: 3, wantXP: 0, wantGained: 2},
		{name: "capped at max level", level: 49, xp: 0, grant: 100000, wantLevel: 50, wantXP: 95100, wantGained: 1},
		{name: "zero level normalized, no free level", level: 0, xp: 0, grant: 99, wantLevel: 1, wantXP: 99, wantGained: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{Level: tt.level, XP: tt.xp}
			gained := advanceLevels(user, tt.grant, 50)
			assert.Equal(t, tt.wantLevel, user.Level)
			assert.Equal(t, tt.wantXP, user.XP)
			assert.Equal(t, tt.wantGained, gained)
		})
	}
}
