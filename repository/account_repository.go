package repository

import (
	"context"
	"fmt"

	"steward/database"
	"steward/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository provides platform account data access backed by postgres
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

// Create creates a new platform account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (platform, platform_id, username, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		account.Platform,
		account.PlatformID,
		account.Username,
		account.UserID,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create %s account %s: %w", account.Platform, account.PlatformID, err)
	}
	return nil
}

// GetByPlatformID retrieves an account by its platform identity
func (r *AccountRepository) GetByPlatformID(ctx context.Context, platform models.Platform, platformID string) (*models.Account, error) {
	query := `
		SELECT id, platform, platform_id, username, user_id, created_at
		FROM accounts
		WHERE platform = $1 AND platform_id = $2
	`

	var account models.Account
	err := r.q.QueryRow(ctx, query, platform, platformID).Scan(
		&account.ID,
		&account.Platform,
		&account.PlatformID,
		&account.Username,
		&account.UserID,
		&account.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s account %s: %w", platform, platformID, err)
	}
	return &account, nil
}

// ListByUser returns all accounts owned by a user
func (r *AccountRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Account, error) {
	query := `
		SELECT id, platform, platform_id, username, user_id, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for user %d: %w", userID, err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(
			&account.ID,
			&account.Platform,
			&account.PlatformID,
			&account.Username,
			&account.UserID,
			&account.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// ReassignOwner moves every account owned by fromUserID to toUserID. The
// global (platform, platform_id) uniqueness constraint guarantees no
// duplicate rows can result, so a plain update is sufficient.
func (r *AccountRepository) ReassignOwner(ctx context.Context, fromUserID, toUserID int64) (int, error) {
	query := `UPDATE accounts SET user_id = $2 WHERE user_id = $1`

	result, err := r.q.Exec(ctx, query, fromUserID, toUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to reassign accounts from user %d to %d: %w", fromUserID, toUserID, err)
	}
	return int(result.RowsAffected()), nil
}
