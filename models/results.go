package models

import (
	"time"
)

// XPGrant summarizes the outcome of a single XP grant
type XPGrant struct {
	UserID       int64
	BaseXP       int
	AppliedXP    int
	Multiplier   float64
	LevelsGained int
	NewLevel     int
	NewXP        int
	BonusPaid    int64
	Username     string
}

// LeveledUp reports whether the grant crossed at least one level threshold
func (g *XPGrant) LeveledUp() bool {
	return g.LevelsGained > 0
}

// MergeResult summarizes a completed user merge
type MergeResult struct {
	SourceUserID      int64
	TargetUserID      int64
	MergedBalance     int64
	MergedLevel       int
	AccountsMoved     int
	BadgesTransferred int
}

// TransferResult summarizes a completed currency transfer
type TransferResult struct {
	Amount           int64
	RecipientName    string
	SenderBalance    int64
	RecipientBalance int64
}

// DailyReward summarizes a claimed daily allowance
type DailyReward struct {
	Money      int64
	XP         int
	NewBalance int64
	TotalXP    int
	Grant      *XPGrant
}

// Profile bundles a user with their held badges for display
type Profile struct {
	User   *User
	Badges []*Badge
}

// LinkTicket is a pending link code issued to a user for display
type LinkTicket struct {
	Code      string
	ExpiresAt time.Time
}
