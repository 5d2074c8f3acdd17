package service

import (
	"context"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"steward/models"
)

// LevelingConfig holds the tunables of the XP state machine
type LevelingConfig struct {
	XPPerMessage int
	MaxLevel     int
	LevelUpBonus int64
	// RoleMultipliers maps Discord role IDs to XP multipliers. Unmatched
	// roles contribute 1.0; multiple matches take the maximum, not the sum.
	RoleMultipliers map[string]float64
}

// levelingService implements the LevelingService interface
type levelingService struct {
	uowFactory UnitOfWorkFactory
	cfg        LevelingConfig
}

// NewLevelingService creates a new leveling service
func NewLevelingService(uowFactory UnitOfWorkFactory, cfg LevelingConfig) LevelingService {
	return &levelingService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// GrantXP applies an XP grant to a user inside a single transaction
func (s *levelingService) GrantXP(ctx context.Context, userID int64, baseXP int, roleIDs []string) (*models.XPGrant, error) {
	if baseXP <= 0 {
		return nil, fmt.Errorf("xp grant must be positive")
	}

	multiplier := s.resolveMultiplier(roleIDs)
	applied := int(math.Floor(float64(baseXP) * multiplier))

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	grant, err := applyXPGrant(ctx, uow, user, applied, s.cfg)
	if err != nil {
		return nil, err
	}
	grant.BaseXP = baseXP
	grant.Multiplier = multiplier

	if err := uow.Commit(); err != nil {
		return nil, txFailure(err)
	}

	if grant.LeveledUp() {
		log.WithFields(log.Fields{
			"userID":   userID,
			"newLevel": grant.NewLevel,
			"levels":   grant.LevelsGained,
		}).Info("User leveled up")
	}

	return grant, nil
}

// resolveMultiplier returns the effective multiplier for a grant context.
// The floor is 1.0 even if every matching role is configured below it.
func (s *levelingService) resolveMultiplier(roleIDs []string) float64 {
	multiplier := 1.0
	for _, roleID := range roleIDs {
		if m, ok := s.cfg.RoleMultipliers[roleID]; ok && m > multiplier {
			multiplier = m
		}
	}
	return multiplier
}

// advanceLevels runs the level state machine on the user in place and
// returns the number of levels gained. XP keeps accumulating at the level
// cap; no further level-ups occur.
func advanceLevels(user *models.User, appliedXP int, maxLevel int) int {
	// Levels start at 1. XPForNextLevel(0) is 0, so anything lower would
	// mint a free level-up.
	if user.Level < 1 {
		user.Level = 1
	}
	user.XP += appliedXP
	gained := 0
	for user.Level < maxLevel && user.XP >= models.XPForNextLevel(user.Level) {
		user.XP -= models.XPForNextLevel(user.Level)
		user.Level++
		gained++
	}
	return gained
}

// applyXPGrant advances the user's level state, persists it, touches
// last-active and pays the per-level bonus, all against the caller's open
// unit of work. Shared between chat/RPC grants and the daily allowance.
func applyXPGrant(ctx context.Context, uow UnitOfWork, user *models.User, appliedXP int, cfg LevelingConfig) (*models.XPGrant, error) {
	balance := user.Balance
	gained := advanceLevels(user, appliedXP, cfg.MaxLevel)

	if err := uow.UserRepository().UpdateProgress(ctx, user.ID, user.XP, user.Level); err != nil {
		return nil, fmt.Errorf("failed to update level progress: %w", err)
	}
	if err := uow.UserRepository().TouchActive(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to touch last active: %w", err)
	}

	var bonusPaid int64
	for i := 0; i < gained; i++ {
		if cfg.LevelUpBonus <= 0 {
			break
		}
		if err := uow.UserRepository().AddBalance(ctx, user.ID, cfg.LevelUpBonus); err != nil {
			return nil, fmt.Errorf("failed to pay level-up bonus: %w", err)
		}
		balance += cfg.LevelUpBonus
		bonusPaid += cfg.LevelUpBonus

		entry := &models.LedgerEntry{
			UserID:       user.ID,
			Amount:       cfg.LevelUpBonus,
			BalanceAfter: balance,
			Reason:       models.LedgerReasonLevelUpBonus,
			Metadata: map[string]any{
				"level": user.Level - gained + i + 1,
			},
		}
		if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record level-up bonus: %w", err)
		}
	}
	user.Balance = balance

	return &models.XPGrant{
		UserID:       user.ID,
		AppliedXP:    appliedXP,
		Multiplier:   1.0,
		LevelsGained: gained,
		NewLevel:     user.Level,
		NewXP:        user.XP,
		BonusPaid:    bonusPaid,
		Username:     user.Username,
	}, nil
}

// txFailure marks a commit error as a store-level transaction abort
func txFailure(err error) error {
	return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
}
