package models

import (
	"time"
)

// LedgerReason represents the cause of a balance change
type LedgerReason string

const (
	LedgerReasonInitial      LedgerReason = "initial"
	LedgerReasonDaily        LedgerReason = "daily"
	LedgerReasonTransferIn   LedgerReason = "transfer_in"
	LedgerReasonTransferOut  LedgerReason = "transfer_out"
	LedgerReasonLevelUpBonus LedgerReason = "level_up_bonus"
	LedgerReasonMergeCredit  LedgerReason = "merge_credit"
)

// LedgerEntry represents a recorded balance change for a user
type LedgerEntry struct {
	ID           int64          `db:"id"`
	UserID       int64          `db:"user_id"`
	Amount       int64          `db:"amount"`
	BalanceAfter int64          `db:"balance_after"`
	Reason       LedgerReason   `db:"reason"`
	Metadata     map[string]any `db:"metadata"`
	CreatedAt    time.Time      `db:"created_at"`
}
