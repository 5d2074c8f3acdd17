package models

import (
	"time"
)

// Platform identifies the external platform an account lives on
type Platform string

const (
	PlatformDiscord Platform = "DISCORD"
	PlatformSteam   Platform = "STEAM"
)

// Account represents a single external platform identity attached to a User.
// The (platform, platform_id) pair is globally unique.
type Account struct {
	ID         int64     `db:"id"`
	Platform   Platform  `db:"platform"`
	PlatformID string    `db:"platform_id"`
	Username   string    `db:"username"`
	UserID     int64     `db:"user_id"`
	CreatedAt  time.Time `db:"created_at"`
}
