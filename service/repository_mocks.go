package service

import (
	"context"
	"time"

	"steward/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByPlatformAccount(ctx context.Context, platform models.Platform, platformID string) (*models.User, error) {
	args := m.Called(ctx, platform, platformID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, username string, startingBalance int64) (*models.User, error) {
	args := m.Called(ctx, username, startingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProgress(ctx context.Context, id int64, xp int, level int) error {
	args := m.Called(ctx, id, xp, level)
	return args.Error(0)
}

func (m *MockUserRepository) TouchActive(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) SetLastDaily(ctx context.Context, id int64, claimedAt time.Time) error {
	args := m.Called(ctx, id, claimedAt)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) TopByLevel(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByPlatformID(ctx context.Context, platform models.Platform, platformID string) (*models.Account, error) {
	args := m.Called(ctx, platform, platformID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ReassignOwner(ctx context.Context, fromUserID, toUserID int64) (int, error) {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Int(0), args.Error(1)
}

// MockBadgeRepository is a mock implementation of BadgeRepository
type MockBadgeRepository struct {
	mock.Mock
}

func (m *MockBadgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	args := m.Called(ctx, badge)
	return args.Error(0)
}

func (m *MockBadgeRepository) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Badge), args.Error(1)
}

func (m *MockBadgeRepository) Update(ctx context.Context, badge *models.Badge) error {
	args := m.Called(ctx, badge)
	return args.Error(0)
}

func (m *MockBadgeRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBadgeRepository) Award(ctx context.Context, userID, badgeID int64) (bool, error) {
	args := m.Called(ctx, userID, badgeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBadgeRepository) Revoke(ctx context.Context, userID, badgeID int64) (bool, error) {
	args := m.Called(ctx, userID, badgeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBadgeRepository) RevokeAll(ctx context.Context, badgeID int64) (int, error) {
	args := m.Called(ctx, badgeID)
	return args.Int(0), args.Error(1)
}

func (m *MockBadgeRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Badge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Badge), args.Error(1)
}

func (m *MockBadgeRepository) TransferHeld(ctx context.Context, fromUserID, toUserID int64) (int, error) {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Int(0), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	userRepo    UserRepository
	accountRepo AccountRepository
	badgeRepo   BadgeRepository
	ledgerRepo  LedgerRepository
}

// SetRepositories wires concrete mock repositories into the unit of work
func (m *MockUnitOfWork) SetRepositories(userRepo UserRepository, accountRepo AccountRepository, badgeRepo BadgeRepository, ledgerRepo LedgerRepository) {
	m.userRepo = userRepo
	m.accountRepo = accountRepo
	m.badgeRepo = badgeRepo
	m.ledgerRepo = ledgerRepo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) BadgeRepository() BadgeRepository {
	return m.badgeRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockMergeService is a mock implementation of MergeService
type MockMergeService struct {
	mock.Mock
}

func (m *MockMergeService) Merge(ctx context.Context, sourceUserID, targetUserID int64) (*models.MergeResult, error) {
	args := m.Called(ctx, sourceUserID, targetUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MergeResult), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyCodeExpired(discordID string) {
	m.Called(discordID)
}

func (m *MockNotifier) NotifyLinkSuccess(discordID string, result *models.MergeResult) {
	m.Called(discordID, result)
}
