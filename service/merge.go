package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"steward/models"
)

// mergeService implements the MergeService interface
type mergeService struct {
	uowFactory UnitOfWorkFactory
}

// NewMergeService creates a new merge service
func NewMergeService(uowFactory UnitOfWorkFactory) MergeService {
	return &mergeService{
		uowFactory: uowFactory,
	}
}

// Merge folds the source user into the target user: accounts are reassigned,
// badges transferred with duplicates collapsed, balances summed, levels
// summed with xp reset to zero, and the source deleted. All of it happens in
// one transaction; any failure leaves durable state untouched.
func (s *mergeService) Merge(ctx context.Context, sourceUserID, targetUserID int64) (*models.MergeResult, error) {
	if sourceUserID == targetUserID {
		return nil, fmt.Errorf("cannot merge a user into itself")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	source, err := uow.UserRepository().GetByID(ctx, sourceUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get source user: %w", err)
	}
	target, err := uow.UserRepository().GetByID(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get target user: %w", err)
	}
	if source == nil || target == nil {
		return nil, ErrUserNotFound
	}

	accountsMoved, err := uow.AccountRepository().ReassignOwner(ctx, sourceUserID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to reassign accounts: %w", err)
	}

	badgesTransferred, err := uow.BadgeRepository().TransferHeld(ctx, sourceUserID, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer badges: %w", err)
	}

	mergedBalance := target.Balance + source.Balance
	mergedLevel := target.Level + source.Level

	if source.Balance > 0 {
		if err := uow.UserRepository().AddBalance(ctx, targetUserID, source.Balance); err != nil {
			return nil, fmt.Errorf("failed to combine balances: %w", err)
		}
		entry := &models.LedgerEntry{
			UserID:       targetUserID,
			Amount:       source.Balance,
			BalanceAfter: mergedBalance,
			Reason:       models.LedgerReasonMergeCredit,
			Metadata: map[string]any{
				"source_user_id":  sourceUserID,
				"source_username": source.Username,
			},
		}
		if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record merge credit: %w", err)
		}
	}

	// Merged xp resets to zero rather than re-deriving progress from a
	// summed pool against the new level's threshold.
	if err := uow.UserRepository().UpdateProgress(ctx, targetUserID, 0, mergedLevel); err != nil {
		return nil, fmt.Errorf("failed to combine levels: %w", err)
	}

	if err := uow.UserRepository().Delete(ctx, sourceUserID); err != nil {
		return nil, fmt.Errorf("failed to delete source user: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, txFailure(err)
	}

	log.WithFields(log.Fields{
		"sourceUserID": sourceUserID,
		"targetUserID": targetUserID,
		"accounts":     accountsMoved,
		"badges":       badgesTransferred,
	}).Info("Merged users")

	return &models.MergeResult{
		SourceUserID:      sourceUserID,
		TargetUserID:      targetUserID,
		MergedBalance:     mergedBalance,
		MergedLevel:       mergedLevel,
		AccountsMoved:     accountsMoved,
		BadgesTransferred: badgesTransferred,
	}, nil
}
