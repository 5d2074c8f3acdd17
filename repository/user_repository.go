package repository

import (
	"context"
	"fmt"
	"time"

	"steward/database"
	"steward/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable abstracts pgxpool.Pool and pgx.Tx so repositories work both
// standalone and inside a unit of work
type queryable interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const userColumns = `id, username, balance, xp, level, role, last_active_at, last_daily_at, created_at, updated_at`

// UserRepository provides user data access backed by postgres
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Balance,
		&user.XP,
		&user.Level,
		&user.Role,
		&user.LastActiveAt,
		&user.LastDailyAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by display username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username %q: %w", username, err)
	}
	return user, nil
}

// GetByPlatformAccount retrieves the user owning the given platform account
func (r *UserRepository) GetByPlatformAccount(ctx context.Context, platform models.Platform, platformID string) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.balance, u.xp, u.level, u.role, u.last_active_at, u.last_daily_at, u.created_at, u.updated_at
		FROM users u
		JOIN accounts a ON a.user_id = u.id
		WHERE a.platform = $1 AND a.platform_id = $2
	`

	user, err := scanUser(r.q.QueryRow(ctx, query, platform, platformID))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s account %s: %w", platform, platformID, err)
	}
	return user, nil
}

// Create creates a new user with the given username and starting balance
func (r *UserRepository) Create(ctx context.Context, username string, startingBalance int64) (*models.User, error) {
	query := `
		INSERT INTO users (username, balance)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, username, startingBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return user, nil
}

// AddBalance adds to a user's balance atomically
func (r *UserRepository) AddBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `UPDATE users SET balance = balance + $1 WHERE id = $2`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

// DeductBalance deducts from a user's balance, failing if insufficient
func (r *UserRepository) DeductBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("user %d not found", id)
		}
		return fmt.Errorf("insufficient balance: have %d, need %d", user.Balance, amount)
	}
	return nil
}

// UpdateProgress sets a user's xp and level
func (r *UserRepository) UpdateProgress(ctx context.Context, id int64, xp int, level int) error {
	query := `UPDATE users SET xp = $1, level = $2 WHERE id = $3`

	result, err := r.q.Exec(ctx, query, xp, level, id)
	if err != nil {
		return fmt.Errorf("failed to update progress for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

// TouchActive updates a user's last-active timestamp
func (r *UserRepository) TouchActive(ctx context.Context, id int64) error {
	query := `UPDATE users SET last_active_at = NOW() WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to touch last active for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

// SetLastDaily records when the user last claimed the daily allowance
func (r *UserRepository) SetLastDaily(ctx context.Context, id int64, claimedAt time.Time) error {
	query := `UPDATE users SET last_daily_at = $1 WHERE id = $2`

	result, err := r.q.Exec(ctx, query, claimedAt, id)
	if err != nil {
		return fmt.Errorf("failed to set last daily for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

// Delete removes a user; accounts, badges and ledger entries cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM users WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

// TopByLevel returns the highest-level users, level descending with xp as
// the tie breaker
func (r *UserRepository) TopByLevel(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY level DESC, xp DESC, created_at ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Balance,
			&user.XP,
			&user.Level,
			&user.Role,
			&user.LastActiveAt,
			&user.LastDailyAt,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
