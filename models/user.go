package models

import (
	"time"
)

// Role represents a user's permission level within the community
type Role string

const (
	RoleMember Role = "MEMBER"
	RoleAdmin  Role = "ADMIN"
)

// User represents the economy and leveling identity a set of platform
// accounts belongs to
type User struct {
	ID           int64      `db:"id"`
	Username     string     `db:"username"`
	Balance      int64      `db:"balance"`
	XP           int        `db:"xp"`
	Level        int        `db:"level"`
	Role         Role       `db:"role"`
	LastActiveAt time.Time  `db:"last_active_at"`
	LastDailyAt  *time.Time `db:"last_daily_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// XPForNextLevel returns the XP threshold to advance past the given level
func XPForNextLevel(level int) int {
	return 100 * level
}
