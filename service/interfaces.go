package service

import (
	"context"
	"time"

	"steward/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, or nil if not found
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by display username, or nil if not found
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// GetByPlatformAccount retrieves the user owning the given platform
	// account, or nil if no such account exists
	GetByPlatformAccount(ctx context.Context, platform models.Platform, platformID string) (*models.User, error)

	// Create creates a new user with the given username and starting balance
	Create(ctx context.Context, username string, startingBalance int64) (*models.User, error)

	// AddBalance adds to a user's balance atomically
	AddBalance(ctx context.Context, id int64, amount int64) error

	// DeductBalance deducts from a user's balance, failing if insufficient
	DeductBalance(ctx context.Context, id int64, amount int64) error

	// UpdateProgress sets a user's xp and level
	UpdateProgress(ctx context.Context, id int64, xp int, level int) error

	// TouchActive updates a user's last-active timestamp
	TouchActive(ctx context.Context, id int64) error

	// SetLastDaily records when the user last claimed the daily allowance
	SetLastDaily(ctx context.Context, id int64, claimedAt time.Time) error

	// Delete removes a user; accounts, badges and ledger entries cascade
	Delete(ctx context.Context, id int64) error

	// TopByLevel returns the highest-level users, level descending
	TopByLevel(ctx context.Context, limit int) ([]*models.User, error)
}

// AccountRepository defines the interface for platform account data access
type AccountRepository interface {
	// Create creates a new platform account
	Create(ctx context.Context, account *models.Account) error

	// GetByPlatformID retrieves an account by its platform identity, or nil
	// if not found
	GetByPlatformID(ctx context.Context, platform models.Platform, platformID string) (*models.Account, error)

	// ListByUser returns all accounts owned by a user
	ListByUser(ctx context.Context, userID int64) ([]*models.Account, error)

	// ReassignOwner moves every account owned by fromUserID to toUserID and
	// returns the number of accounts moved
	ReassignOwner(ctx context.Context, fromUserID, toUserID int64) (int, error)
}

// BadgeRepository defines the interface for badge data access
type BadgeRepository interface {
	// Create creates a new badge
	Create(ctx context.Context, badge *models.Badge) error

	// GetByName retrieves a badge by name, or nil if not found
	GetByName(ctx context.Context, name string) (*models.Badge, error)

	// Update updates a badge's name and description
	Update(ctx context.Context, badge *models.Badge) error

	// Delete removes a badge; held associations cascade
	Delete(ctx context.Context, id int64) error

	// Award grants a badge to a user; returns false if already held
	Award(ctx context.Context, userID, badgeID int64) (bool, error)

	// Revoke removes a badge from a user; returns false if not held
	Revoke(ctx context.Context, userID, badgeID int64) (bool, error)

	// RevokeAll removes a badge from every holder and returns the count
	RevokeAll(ctx context.Context, badgeID int64) (int, error)

	// ListByUser returns the badges held by a user
	ListByUser(ctx context.Context, userID int64) ([]*models.Badge, error)

	// TransferHeld moves badge associations from one user to another,
	// collapsing duplicates, and returns the number transferred
	TransferHeld(ctx context.Context, fromUserID, toUserID int64) (int, error)
}

// LedgerRepository defines the interface for balance change records
type LedgerRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// ListByUser returns the most recent ledger entries for a user
	ListByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	AccountRepository() AccountRepository
	BadgeRepository() BadgeRepository
	LedgerRepository() LedgerRepository
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}

// Notifier delivers out-of-band notifications to Discord users
type Notifier interface {
	// NotifyCodeExpired tells a user their link code expired unused
	NotifyCodeExpired(discordID string)

	// NotifyLinkSuccess tells a user their accounts were linked
	NotifyLinkSuccess(discordID string, result *models.MergeResult)
}

// UserService defines the interface for profile operations
type UserService interface {
	// Register creates a profile for a Discord account
	Register(ctx context.Context, discordID, username string) (*models.User, error)

	// GetOrCreateSteamUser retrieves the user owning a Steam account,
	// creating the user and account on first contact
	GetOrCreateSteamUser(ctx context.Context, steamID, username string) (*models.User, error)

	// GetByDiscordID retrieves the user owning a Discord account
	GetByDiscordID(ctx context.Context, discordID string) (*models.User, error)

	// Profile returns the user and badges for a Discord account
	Profile(ctx context.Context, discordID string) (*models.Profile, error)

	// ProfileByUsername returns the user and badges for a display username
	ProfileByUsername(ctx context.Context, username string) (*models.Profile, error)

	// Leaderboard returns the top users ordered by level
	Leaderboard(ctx context.Context, limit int) ([]*models.User, error)

	// Delete removes the user owning a Discord account and all related data
	Delete(ctx context.Context, discordID string) error

	// TouchActivity updates last-active for a Discord account's user; no-op
	// for unregistered accounts
	TouchActivity(ctx context.Context, discordID string) error
}

// LevelingService defines the interface for XP grants
type LevelingService interface {
	// GrantXP applies an XP grant to a user, resolving the role multiplier,
	// rolling over levels and paying the per-level bonus
	GrantXP(ctx context.Context, userID int64, baseXP int, roleIDs []string) (*models.XPGrant, error)
}

// EconomyService defines the interface for currency operations
type EconomyService interface {
	// ClaimDaily pays the daily money and XP allowance
	ClaimDaily(ctx context.Context, discordID string) (*models.DailyReward, error)

	// Transfer moves currency between two Discord accounts' users
	Transfer(ctx context.Context, fromDiscordID, toDiscordID string, amount int64) (*models.TransferResult, error)
}

// BadgeService defines the interface for badge management
type BadgeService interface {
	// CreateBadge creates a new badge
	CreateBadge(ctx context.Context, name, description string) (*models.Badge, error)

	// DeleteBadge removes a badge entirely
	DeleteBadge(ctx context.Context, name string) error

	// EditBadge renames a badge and/or changes its description
	EditBadge(ctx context.Context, name string, newName, newDescription *string) (*models.Badge, error)

	// AwardBadge grants a badge to a Discord account's user; returns false
	// if already held
	AwardBadge(ctx context.Context, discordID, badgeName string) (bool, error)

	// RevokeBadge removes a badge from a Discord account's user; returns
	// false if not held
	RevokeBadge(ctx context.Context, discordID, badgeName string) (bool, error)

	// RevokeBadgeFromAll removes a badge from every holder
	RevokeBadgeFromAll(ctx context.Context, badgeName string) (int, error)
}

// LinkService drives the cross-platform account linking protocol
type LinkService interface {
	// RequestLink issues a one-time link code for a registered Discord user
	RequestLink(ctx context.Context, discordID string) (*models.LinkTicket, error)

	// Claim consumes a code presented by an external platform identity and
	// merges the two users it connects
	Claim(ctx context.Context, steamID, code string) (*models.MergeResult, error)
}

// MergeService folds one user into another
type MergeService interface {
	// Merge transfers source's accounts, badges and economy state to target
	// and deletes source, all in one transaction
	Merge(ctx context.Context, sourceUserID, targetUserID int64) (*models.MergeResult, error)
}
