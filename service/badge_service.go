package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"steward/models"
)

// badgeService implements the BadgeService interface
type badgeService struct {
	uowFactory UnitOfWorkFactory
}

// NewBadgeService creates a new badge service
func NewBadgeService(uowFactory UnitOfWorkFactory) BadgeService {
	return &badgeService{
		uowFactory: uowFactory,
	}
}

// CreateBadge creates a new badge
func (s *badgeService) CreateBadge(ctx context.Context, name, description string) (*models.Badge, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.BadgeRepository().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing badge: %w", err)
	}
	if existing != nil {
		return nil, ErrBadgeExists
	}

	badge := &models.Badge{
		Name:        name,
		Description: description,
	}
	if err := uow.BadgeRepository().Create(ctx, badge); err != nil {
		return nil, fmt.Errorf("failed to create badge: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, txFailure(err)
	}

	log.WithField("badge", name).Info("Created badge")
	return badge, nil
}

// DeleteBadge removes a badge entirely
func (s *badgeService) DeleteBadge(ctx context.Context, name string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	badge, err := uow.BadgeRepository().GetByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to look up badge: %w", err)
	}
	if badge == nil {
		return ErrBadgeNotFound
	}

	if err := uow.BadgeRepository().Delete(ctx, badge.ID); err != nil {
		return fmt.Errorf("failed to delete badge: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return txFailure(err)
	}

	log.WithField("badge", name).Info("Deleted badge")
	return nil
}

// EditBadge renames a badge and/or changes its description
func (s *badgeService) EditBadge(ctx context.Context, name string, newName, newDescription *string) (*models.Badge, error) {
	if newName == nil && newDescription == nil {
		return nil, fmt.Errorf("nothing to edit")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	badge, err := uow.BadgeRepository().GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up badge: %w", err)
	}
	if badge == nil {
		return nil, ErrBadgeNotFound
	}

	if newName != nil {
		taken, err := uow.BadgeRepository().GetByName(ctx, *newName)
		if err != nil {
			return nil, fmt.Errorf("failed to check new badge name: %w", err)
		}
		if taken != nil && taken.ID != badge.ID {
			return nil, ErrBadgeExists
		}
		badge.Name = *newName
	}
	if newDescription != nil {
		badge.Description = *newDescription
	}

	if err := uow.BadgeRepository().Update(ctx, badge); err != nil {
		return nil, fmt.Errorf("failed to update badge: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, txFailure(err)
	}

	return badge, nil
}

// AwardBadge grants a badge to a Discord account's user
func (s *badgeService) AwardBadge(ctx context.Context, discordID, badgeName string) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, badge, err := s.resolvePair(ctx, uow, discordID, badgeName)
	if err != nil {
		return false, err
	}

	awarded, err := uow.BadgeRepository().Award(ctx, user.ID, badge.ID)
	if err != nil {
		return false, fmt.Errorf("failed to award badge: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return false, txFailure(err)
	}

	return awarded, nil
}

// RevokeBadge removes a badge from a Discord account's user
func (s *badgeService) RevokeBadge(ctx context.Context, discordID, badgeName string) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, badge, err := s.resolvePair(ctx, uow, discordID, badgeName)
	if err != nil {
		return false, err
	}

	revoked, err := uow.BadgeRepository().Revoke(ctx, user.ID, badge.ID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke badge: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return false, txFailure(err)
	}

	return revoked, nil
}

// RevokeBadgeFromAll removes a badge from every holder
func (s *badgeService) RevokeBadgeFromAll(ctx context.Context, badgeName string) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	badge, err := uow.BadgeRepository().GetByName(ctx, badgeName)
	if err != nil {
		return 0, fmt.Errorf("failed to look up badge: %w", err)
	}
	if badge == nil {
		return 0, ErrBadgeNotFound
	}

	count, err := uow.BadgeRepository().RevokeAll(ctx, badge.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke badge from all holders: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, txFailure(err)
	}

	return count, nil
}

func (s *badgeService) resolvePair(ctx context.Context, uow UnitOfWork, discordID, badgeName string) (*models.User, *models.Badge, error) {
	user, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, discordID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrNotRegistered
	}

	badge, err := uow.BadgeRepository().GetByName(ctx, badgeName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up badge: %w", err)
	}
	if badge == nil {
		return nil, nil, ErrBadgeNotFound
	}

	return user, badge, nil
}
