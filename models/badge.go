package models

import (
	"time"
)

// Badge represents an awardable badge
type Badge struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

// UserBadge represents a badge held by a user
type UserBadge struct {
	UserID    int64     `db:"user_id"`
	BadgeID   int64     `db:"badge_id"`
	AwardedAt time.Time `db:"awarded_at"`
}
