package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"steward/models"
)

// userService implements the UserService interface
type userService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory, startingBalance int64) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

// Register creates a profile for a Discord account
func (s *userService) Register(ctx context.Context, discordID, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	existing, err := uow.AccountRepository().GetByPlatformID(ctx, models.PlatformDiscord, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	user, err := s.createUserWithAccount(ctx, uow, models.PlatformDiscord, discordID, username)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, txFailure(err)
	}

	log.WithFields(log.Fields{
		"discordID": discordID,
		"username":  username,
	}).Info("Registered new user")

	return user, nil
}

// GetOrCreateSteamUser retrieves the user owning a Steam account, creating
// the user and account on first contact
func (s *userService) GetOrCreateSteamUser(ctx context.Context, steamID, username string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformSteam, steamID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up steam user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	name, err := s.steamUsername(ctx, uow, username, steamID)
	if err != nil {
		return nil, err
	}

	user, err = s.createUserWithAccount(ctx, uow, models.PlatformSteam, steamID, name)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, txFailure(err)
	}

	log.WithFields(log.Fields{
		"steamID":  steamID,
		"username": name,
	}).Info("Created user for steam account")

	return user, nil
}

// steamUsername disambiguates a Steam display name that collides with an
// existing user's username. Steam does not enforce unique display names;
// usernames here are unique, so colliding names get a suffix drawn from the
// steam id.
func (s *userService) steamUsername(ctx context.Context, uow UnitOfWork, username, steamID string) (string, error) {
	existing, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to check username: %w", err)
	}
	if existing == nil {
		return username, nil
	}

	suffix := steamID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	candidate := fmt.Sprintf("%s#%s", username, suffix)
	existing, err = uow.UserRepository().GetByUsername(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("failed to check username: %w", err)
	}
	if existing == nil {
		return candidate, nil
	}

	// The full steam id is unique per account, and this user has no account
	// yet, so the long form cannot collide with another steam-origin user.
	return fmt.Sprintf("%s#%s", username, steamID), nil
}

// createUserWithAccount creates a user plus its first platform account and
// records the starting balance, against the caller's open unit of work
func (s *userService) createUserWithAccount(ctx context.Context, uow UnitOfWork, platform models.Platform, platformID, username string) (*models.User, error) {
	user, err := uow.UserRepository().Create(ctx, username, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	account := &models.Account{
		Platform:   platform,
		PlatformID: platformID,
		Username:   username,
		UserID:     user.ID,
	}
	if err := uow.AccountRepository().Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	if s.startingBalance > 0 {
		entry := &models.LedgerEntry{
			UserID:       user.ID,
			Amount:       s.startingBalance,
			BalanceAfter: s.startingBalance,
			Reason:       models.LedgerReasonInitial,
			Metadata: map[string]any{
				"username": username,
				"platform": string(platform),
			},
		}
		if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record starting balance: %w", err)
		}
	}

	return user, nil
}

// GetByDiscordID retrieves the user owning a Discord account
func (s *userService) GetByDiscordID(ctx context.Context, discordID string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrNotRegistered
	}
	return user, nil
}

// Profile returns the user and badges for a Discord account
func (s *userService) Profile(ctx context.Context, discordID string) (*models.Profile, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return s.buildProfile(ctx, uow, user)
}

// ProfileByUsername returns the user and badges for a display username
func (s *userService) ProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return s.buildProfile(ctx, uow, user)
}

func (s *userService) buildProfile(ctx context.Context, uow UnitOfWork, user *models.User) (*models.Profile, error) {
	if user == nil {
		return nil, ErrNotRegistered
	}

	badges, err := uow.BadgeRepository().ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}

	return &models.Profile{
		User:   user,
		Badges: badges,
	}, nil
}

// Leaderboard returns the top users ordered by level
func (s *userService) Leaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().TopByLevel(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return users, nil
}

// Delete removes the user owning a Discord account and all related data
func (s *userService) Delete(ctx context.Context, discordID string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, discordID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return ErrNotRegistered
	}

	if err := uow.UserRepository().Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return txFailure(err)
	}

	log.WithFields(log.Fields{
		"discordID": discordID,
		"userID":    user.ID,
	}).Info("Deleted user data")

	return nil
}

// TouchActivity updates last-active for a Discord account's user. Unregistered
// accounts are a silent no-op; every command invocation routes through here.
func (s *userService) TouchActivity(ctx context.Context, discordID string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, discordID)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil
	}

	if err := uow.UserRepository().TouchActive(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to touch last active: %w", err)
	}

	return uow.Commit()
}
