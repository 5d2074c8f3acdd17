package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"steward/models"
)

// linkService implements the LinkService interface
type linkService struct {
	registry   *LinkCodeRegistry
	uowFactory UnitOfWorkFactory
	merger     MergeService
	notifier   Notifier
}

// NewLinkService creates a new link service
func NewLinkService(registry *LinkCodeRegistry, uowFactory UnitOfWorkFactory, merger MergeService, notifier Notifier) LinkService {
	return &linkService{
		registry:   registry,
		uowFactory: uowFactory,
		merger:     merger,
		notifier:   notifier,
	}
}

// RequestLink issues a one-time code for the requesting Discord user
func (s *linkService) RequestLink(ctx context.Context, discordID string) (*models.LinkTicket, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, discordID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up requesting user: %w", err)
	}
	if user == nil {
		return nil, ErrNotRegistered
	}

	code, expiresAt, err := s.registry.Issue(discordID)
	if err != nil {
		return nil, err
	}

	return &models.LinkTicket{
		Code:      code,
		ExpiresAt: expiresAt,
	}, nil
}

// Claim consumes a code presented by a Steam identity and merges the Steam
// user into the Discord user the code belongs to. The code is consumed
// atomically up front, so a replayed claim fails with ErrInvalidCode and
// racing claims have exactly one winner.
func (s *linkService) Claim(ctx context.Context, steamID, code string) (*models.MergeResult, error) {
	ownerID, ok := s.registry.Claim(code)
	if !ok {
		return nil, ErrInvalidCode
	}

	steamUser, discordUser, err := s.lookupMergePair(ctx, steamID, ownerID)
	if err != nil {
		return nil, err
	}

	result, err := s.merger.Merge(ctx, steamUser.ID, discordUser.ID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"discordID": ownerID,
		"steamID":   steamID,
	}).Info("Linked accounts")

	if s.notifier != nil {
		s.notifier.NotifyLinkSuccess(ownerID, result)
	}

	return result, nil
}

// lookupMergePair resolves the Steam-origin and Discord-origin users and
// enforces the exactly-two-distinct-users precondition. The specific record
// that made the set ambiguous is logged but never surfaced to the claimer.
func (s *linkService) lookupMergePair(ctx context.Context, steamID, discordID string) (*models.User, *models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	steamUser, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformSteam, steamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up steam user: %w", err)
	}
	discordUser, err := uow.UserRepository().GetByPlatformAccount(ctx, models.PlatformDiscord, discordID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up discord user: %w", err)
	}

	if steamUser == nil || discordUser == nil || steamUser.ID == discordUser.ID {
		log.WithFields(log.Fields{
			"discordID":       discordID,
			"steamID":         steamID,
			"steamResolved":   steamUser != nil,
			"discordResolved": discordUser != nil,
		}).Error("Link claim did not resolve to exactly two distinct users")
		return nil, nil, ErrAmbiguousMergeSet
	}

	return steamUser, discordUser, nil
}
