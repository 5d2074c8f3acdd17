package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"steward/models"
)

// EconomyConfig holds the currency tunables
type EconomyConfig struct {
	DailyMoney int64
	DailyXP    int
}

// economyService implements the EconomyService interface
type economyService struct {
	uowFactory UnitOfWorkFactory
	cfg        EconomyConfig
	leveling   LevelingConfig
}

// NewEconomyService creates a new economy service
func NewEconomyService(uowFactory UnitOfWorkFactory, cfg EconomyConfig, leveling LevelingConfig) EconomyService {
	return &economyService{
		uowFactory: uowFactory,
		cfg:        cfg,
		leveling:   leveling,
	}
}

// ClaimDaily pays the daily money and XP allowance. The gate is calendar-day
// in UTC, not a rolling 24 hours.
func (s *economyService) ClaimDaily(ctx context.Context, discordID string) (*models.DailyReward, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	user, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrNotRegistered
	}

	now := nowUTC()
	if user.LastDailyAt != nil && sameUTCDay(*user.LastDailyAt, now) {
		return nil, ErrDailyAlreadyClaimed
	}

	newBalance := user.Balance + s.cfg.DailyMoney
	if err := uow.UserRepository().AddBalance(ctx, user.ID, s.cfg.DailyMoney); err != nil {
		return nil, fmt.Errorf("failed to add daily money: %w", err)
	}
	entry := &models.LedgerEntry{
		UserID:       user.ID,
		Amount:       s.cfg.DailyMoney,
		BalanceAfter: newBalance,
		Reason:       models.LedgerReasonDaily,
	}
	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record daily money: %w", err)
	}

	if err := uow.UserRepository().SetLastDaily(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to set last daily claim: %w", err)
	}

	user.Balance = newBalance
	grant, err := applyXPGrant(ctx, uow, user, s.cfg.DailyXP, s.leveling)
	if err != nil {
		return nil, err
	}
	grant.BaseXP = s.cfg.DailyXP

	if err := uow.Commit(); err != nil {
		return nil, txFailure(err)
	}

	return &models.DailyReward{
		Money:      s.cfg.DailyMoney,
		XP:         s.cfg.DailyXP,
		NewBalance: user.Balance,
		TotalXP:    grant.NewXP,
		Grant:      grant,
	}, nil
}

// Transfer moves currency between two Discord accounts' users
func (s *economyService) Transfer(ctx context.Context, fromDiscordID, toDiscordID string, amount int64) (*models.TransferResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if fromDiscordID == toDiscordID {
		return nil, fmt.Errorf("cannot transfer to yourself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	sender, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, fromDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sender: %w", err)
	}
	if sender == nil {
		return nil, ErrNotRegistered
	}

	recipient, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, toDiscordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient == nil {
		return nil, ErrNotRegistered
	}

	if sender.Balance < amount {
		return nil, ErrInsufficientBalance
	}

	newSenderBalance := sender.Balance - amount
	newRecipientBalance := recipient.Balance + amount

	if err := uow.UserRepository().DeductBalance(ctx, sender.ID, amount); err != nil {
		return nil, fmt.Errorf("failed to deduct transfer amount: %w", err)
	}
	if err := uow.UserRepository().AddBalance(ctx, recipient.ID, amount); err != nil {
		return nil, fmt.Errorf("failed to add transfer amount: %w", err)
	}

	fromEntry := &models.LedgerEntry{
		UserID:       sender.ID,
		Amount:       -amount,
		BalanceAfter: newSenderBalance,
		Reason:       models.LedgerReasonTransferOut,
		Metadata: map[string]any{
			"recipient_user_id":  recipient.ID,
			"recipient_username": recipient.Username,
		},
	}
	if err := uow.LedgerRepository().Record(ctx, fromEntry); err != nil {
		return nil, fmt.Errorf("failed to record sender balance change: %w", err)
	}

	toEntry := &models.LedgerEntry{
		UserID:       recipient.ID,
		Amount:       amount,
		BalanceAfter: newRecipientBalance,
		Reason:       models.LedgerReasonTransferIn,
		Metadata: map[string]any{
			"sender_user_id":  sender.ID,
			"sender_username": sender.Username,
		},
	}
	if err := uow.LedgerRepository().Record(ctx, toEntry); err != nil {
		return nil, fmt.Errorf("failed to record recipient balance change: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, txFailure(err)
	}

	log.WithFields(log.Fields{
		"from":   sender.ID,
		"to":     recipient.ID,
		"amount": amount,
	}).Info("Transferred currency")

	return &models.TransferResult{
		Amount:           amount,
		RecipientName:    recipient.Username,
		SenderBalance:    newSenderBalance,
		RecipientBalance: newRecipientBalance,
	}, nil
}
