package repository

import (
	"context"
	"fmt"

	"steward/database"
	"steward/models"

	"github.com/jackc/pgx/v5"
)

// BadgeRepository provides badge data access backed by postgres
type BadgeRepository struct {
	q queryable
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *database.DB) *BadgeRepository {
	return &BadgeRepository{q: db.Pool}
}

// newBadgeRepositoryWithTx creates a new badge repository with a transaction
func newBadgeRepositoryWithTx(tx queryable) *BadgeRepository {
	return &BadgeRepository{q: tx}
}

// Create creates a new badge
func (r *BadgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	query := `
		INSERT INTO badges (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, badge.Name, badge.Description).Scan(&badge.ID, &badge.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create badge %q: %w", badge.Name, err)
	}
	return nil
}

// GetByName retrieves a badge by name
func (r *BadgeRepository) GetByName(ctx context.Context, name string) (*models.Badge, error) {
	query := `SELECT id, name, description, created_at FROM badges WHERE name = $1`

	var badge models.Badge
	err := r.q.QueryRow(ctx, query, name).Scan(&badge.ID, &badge.Name, &badge.Description, &badge.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get badge %q: %w", name, err)
	}
	return &badge, nil
}

// Update updates a badge's name and description
func (r *BadgeRepository) Update(ctx context.Context, badge *models.Badge) error {
	query := `UPDATE badges SET name = $1, description = $2 WHERE id = $3`

	result, err := r.q.Exec(ctx, query, badge.Name, badge.Description, badge.ID)
	if err != nil {
		return fmt.Errorf("failed to update badge %d: %w", badge.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("badge %d not found", badge.ID)
	}
	return nil
}

// Delete removes a badge; held associations cascade
func (r *BadgeRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM badges WHERE id = $1`

	result, err := r.q.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete badge %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("badge %d not found", id)
	}
	return nil
}

// Award grants a badge to a user; returns false if already held
func (r *BadgeRepository) Award(ctx context.Context, userID, badgeID int64) (bool, error) {
	query := `
		INSERT INTO user_badges (user_id, badge_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query, userID, badgeID)
	if err != nil {
		return false, fmt.Errorf("failed to award badge %d to user %d: %w", badgeID, userID, err)
	}
	return result.RowsAffected() > 0, nil
}

// Revoke removes a badge from a user; returns false if not held
func (r *BadgeRepository) Revoke(ctx context.Context, userID, badgeID int64) (bool, error) {
	query := `DELETE FROM user_badges WHERE user_id = $1 AND badge_id = $2`

	result, err := r.q.Exec(ctx, query, userID, badgeID)
	if err != nil {
		return false, fmt.Errorf("failed to revoke badge %d from user %d: %w", badgeID, userID, err)
	}
	return result.RowsAffected() > 0, nil
}

// RevokeAll removes a badge from every holder and returns the count
func (r *BadgeRepository) RevokeAll(ctx context.Context, badgeID int64) (int, error) {
	query := `DELETE FROM user_badges WHERE badge_id = $1`

	result, err := r.q.Exec(ctx, query, badgeID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke badge %d from all holders: %w", badgeID, err)
	}
	return int(result.RowsAffected()), nil
}

// ListByUser returns the badges held by a user
func (r *BadgeRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Badge, error) {
	query := `
		SELECT b.id, b.name, b.description, b.created_at
		FROM badges b
		JOIN user_badges ub ON ub.badge_id = b.id
		WHERE ub.user_id = $1
		ORDER BY ub.awarded_at ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges for user %d: %w", userID, err)
	}
	defer rows.Close()

	var badges []*models.Badge
	for rows.Next() {
		var badge models.Badge
		if err := rows.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, &badge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate badges: %w", err)
	}

	return badges, nil
}

// TransferHeld moves badge associations from one user to another, collapsing
// duplicates: badges the target already holds are simply dropped from the
// source.
func (r *BadgeRepository) TransferHeld(ctx context.Context, fromUserID, toUserID int64) (int, error) {
	insertQuery := `
		INSERT INTO user_badges (user_id, badge_id, awarded_at)
		SELECT $2, badge_id, awarded_at
		FROM user_badges
		WHERE user_id = $1
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`

	result, err := r.q.Exec(ctx, insertQuery, fromUserID, toUserID)
	if err != nil {
		return 0, fmt.Errorf("failed to transfer badges from user %d to %d: %w", fromUserID, toUserID, err)
	}

	deleteQuery := `DELETE FROM user_badges WHERE user_id = $1`
	if _, err := r.q.Exec(ctx, deleteQuery, fromUserID); err != nil {
		return 0, fmt.Errorf("failed to clear source badges for user %d: %w", fromUserID, err)
	}

	return int(result.RowsAffected()), nil
}
