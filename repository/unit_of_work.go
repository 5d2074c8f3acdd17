package repository

import (
	"context"
	"fmt"

	"steward/database"
	"steward/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db          *database.DB
	tx          pgx.Tx
	ctx         context.Context
	userRepo    service.UserRepository
	accountRepo service.AccountRepository
	badgeRepo   service.BadgeRepository
	ledgerRepo  service.LedgerRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db}
}

type unitOfWorkFactory struct {
	db *database.DB
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{db: f.db}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.userRepo = newUserRepositoryWithTx(tx)
	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.badgeRepo = newBadgeRepositoryWithTx(tx)
	u.ledgerRepo = newLedgerRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// BadgeRepository returns the badge repository for this unit of work
func (u *unitOfWork) BadgeRepository() service.BadgeRepository {
	if u.badgeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.badgeRepo
}

// LedgerRepository returns the ledger repository for this unit of work
func (u *unitOfWork) LedgerRepository() service.LedgerRepository {
	if u.ledgerRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ledgerRepo
}
